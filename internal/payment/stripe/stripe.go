package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/albionthreads/checkout-service/internal/payment"
)

// httpDoer is the subset of pkg/httpclient clients the provider needs. In
// production this is a CircuitBreakerClient; tests supply a plain Client
// pointed at an httptest server.
type httpDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds Stripe provider configuration.
type Config struct {
	// SecretKey is the Stripe API secret key (sk_...).
	SecretKey string

	// BaseURL is the Stripe API base URL. Overridable for tests.
	BaseURL string

	// SuccessURL is the redirect target after payment. The literal
	// placeholder {CHECKOUT_SESSION_ID} is substituted by Stripe.
	SuccessURL string

	// CancelURL is the redirect target when the shopper abandons payment.
	CancelURL string
}

// Provider creates hosted Stripe Checkout Sessions.
type Provider struct {
	cfg    Config
	client httpDoer
	now    func() time.Time
}

// NewProvider creates a Stripe-backed payment provider.
func NewProvider(cfg Config, client httpDoer) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stripe.com"
	}
	return &Provider{cfg: cfg, client: client, now: time.Now}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stripe"
}

type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentIntent string `json:"payment_intent"`
	ExpiresAt     int64  `json:"expires_at"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession creates a hosted Checkout Session via Stripe's form-encoded
// REST API. Each call sends a fresh Idempotency-Key, so gateway-side retries
// from the HTTP client never double-create sessions.
func (p *Provider) CreateSession(ctx context.Context, input *payment.SessionInput) (*payment.Session, error) {
	form := p.buildForm(input)

	endpoint := p.cfg.BaseURL + "/v1/checkout/sessions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("stripe error (%d %s): %s", resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("stripe error: status %d", resp.StatusCode)
	}

	var sess sessionResponse
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	expiresAt := time.Unix(sess.ExpiresAt, 0).UTC()
	if sess.ExpiresAt == 0 {
		expiresAt = p.now().Add(payment.SessionExpiry).UTC()
	}

	return &payment.Session{
		ID:               sess.ID,
		RedirectURL:      sess.URL,
		PaymentReference: sess.PaymentIntent,
		ExpiresAt:        expiresAt,
	}, nil
}

func (p *Provider) buildForm(input *payment.SessionInput) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", input.CustomerEmail)
	form.Set("success_url", p.cfg.SuccessURL)
	form.Set("cancel_url", p.cfg.CancelURL)
	form.Set("expires_at", strconv.FormatInt(p.now().Add(payment.SessionExpiry).Unix(), 10))

	for i, line := range input.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(line.Quantity))
		form.Set(prefix+"[price_data][currency]", "gbp")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.UnitAmountPence, 10))
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
		if line.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", line.Description)
		}
		if line.ImageURL != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", line.ImageURL)
		}
	}

	// Shipping as a synthetic line so the hosted page total matches what the
	// shopper was quoted. Tax is intentionally absent from the line items;
	// the metadata carries the full breakdown for reconciliation.
	if input.ShippingPence > 0 {
		prefix := fmt.Sprintf("line_items[%d]", len(input.Lines))
		form.Set(prefix+"[quantity]", "1")
		form.Set(prefix+"[price_data][currency]", "gbp")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(input.ShippingPence, 10))
		form.Set(prefix+"[price_data][product_data][name]", "Shipping")
	}

	form.Set("metadata[order_number]", input.OrderNumber)
	form.Set("metadata[customer_id]", input.CustomerID)
	form.Set("metadata[user_id]", input.UserID)
	form.Set("metadata[subtotal_pence]", strconv.FormatInt(input.SubtotalPence, 10))
	form.Set("metadata[shipping_pence]", strconv.FormatInt(input.ShippingPence, 10))
	form.Set("metadata[tax_pence]", strconv.FormatInt(input.TaxPence, 10))
	form.Set("metadata[total_pence]", strconv.FormatInt(input.TotalPence, 10))
	if input.Notes != "" {
		form.Set("metadata[customer_notes]", input.Notes)
	}

	return form
}
