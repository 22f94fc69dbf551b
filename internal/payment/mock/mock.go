package mock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/albionthreads/checkout-service/internal/payment"
)

// Provider is a mock payment provider that always creates a session.
// It is intended for development and testing purposes.
type Provider struct {
	// SuccessURL is returned as the redirect target. Defaults to a local
	// placeholder when empty.
	SuccessURL string
}

// NewProvider creates a new mock payment provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "mock"
}

// CreateSession returns a synthetic session without calling any gateway.
func (p *Provider) CreateSession(_ context.Context, input *payment.SessionInput) (*payment.Session, error) {
	id := "mock_cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	redirect := p.SuccessURL
	if redirect == "" {
		redirect = "http://localhost:3000/checkout/success?session_id=" + id
	}

	return &payment.Session{
		ID:               id,
		RedirectURL:      redirect,
		PaymentReference: "mock_pi_" + input.OrderNumber,
		ExpiresAt:        time.Now().Add(payment.SessionExpiry).UTC(),
	}, nil
}
