package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/albionthreads/checkout-service/internal/domain"
)

// DefaultTTL bounds how long a claimed fingerprint blocks resubmission. It
// comfortably covers one checkout round trip; an abandoned claim expires on
// its own.
const DefaultTTL = 30 * time.Second

const keyPrefix = "checkout:submit:"

// Guard rejects concurrent duplicate checkout submissions. It claims a Redis
// key derived from the submission's fingerprint with SET NX; a second claim
// while the first is in flight is a duplicate. The guard degrades open: an
// unreachable Redis admits the request rather than blocking checkout.
type Guard struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewGuard creates a double-submit guard. A nil client disables the guard.
func NewGuard(client *redis.Client, logger *slog.Logger) *Guard {
	return &Guard{
		client: client,
		ttl:    DefaultTTL,
		logger: logger,
	}
}

// Fingerprint derives a stable digest of the submission identity: the
// shopper's email plus the sorted variant/quantity pairs. Reordering cart
// lines does not change the fingerprint.
func Fingerprint(email string, lines []domain.CartLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprintf("%s:%d", l.VariantID, l.Quantity)
	}
	sort.Strings(parts)

	h := sha256.Sum256([]byte(strings.ToLower(email) + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(h[:])
}

// Claim attempts to claim the fingerprint. It returns false when another
// submission with the same fingerprint is already in flight.
func (g *Guard) Claim(ctx context.Context, fingerprint string) bool {
	if g.client == nil {
		return true
	}

	ok, err := g.client.SetNX(ctx, keyPrefix+fingerprint, 1, g.ttl).Result()
	if err != nil {
		g.logger.WarnContext(ctx, "double-submit guard unavailable, admitting request",
			slog.String("error", err.Error()),
		)
		return true
	}

	return ok
}

// Release frees a claimed fingerprint so the shopper can resubmit after a
// failed checkout. Successful checkouts keep the claim until TTL expiry.
func (g *Guard) Release(ctx context.Context, fingerprint string) {
	if g.client == nil {
		return
	}

	if err := g.client.Del(ctx, keyPrefix+fingerprint).Err(); err != nil {
		g.logger.WarnContext(ctx, "double-submit guard release failed",
			slog.String("error", err.Error()),
		)
	}
}
