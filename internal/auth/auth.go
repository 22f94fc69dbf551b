package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Identity is a verified shopper identity. The tagged shape, rather than a
// nullable user id, keeps the guest path explicit at every call site.
type Identity struct {
	UserID string
	Email  string
}

// ErrInvalidToken is returned when a bearer token fails verification.
// Checkout treats it as a signal to fall back to guest, never as a hard
// failure.
var ErrInvalidToken = errors.New("invalid token")

// Verifier resolves a bearer token to an identity.
type Verifier interface {
	// Verify validates the token and returns the identity it carries.
	// A token that fails verification yields ErrInvalidToken.
	Verify(ctx context.Context, token string) (*Identity, error)
}

// httpDoer is the subset of pkg/httpclient clients the HTTP verifier needs.
type httpDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// HTTPVerifier verifies tokens against the identity provider's introspection
// endpoint.
type HTTPVerifier struct {
	baseURL string
	client  httpDoer
}

// NewHTTPVerifier creates a verifier backed by the identity provider at baseURL.
func NewHTTPVerifier(baseURL string, client httpDoer) *HTTPVerifier {
	return &HTTPVerifier{baseURL: baseURL, client: client}
}

type introspectionResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Verify calls GET /v1/auth/verify with the token as a bearer credential.
func (v *HTTPVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/v1/auth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("create verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	var intro introspectionResponse
	if err := json.Unmarshal(body, &intro); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}

	if !intro.Active || intro.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: intro.UserID, Email: intro.Email}, nil
}

// StaticVerifier resolves tokens from a fixed map. It is intended for
// development and testing purposes.
type StaticVerifier struct {
	tokens map[string]Identity
}

// NewStaticVerifier creates a verifier over a fixed token table.
func NewStaticVerifier(tokens map[string]Identity) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

// Verify looks the token up in the static table.
func (v *StaticVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	id, ok := v.tokens[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &id, nil
}
