package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albionthreads/checkout-service/internal/payment"
	"github.com/albionthreads/checkout-service/pkg/httpclient"
)

func sampleInput() *payment.SessionInput {
	return &payment.SessionInput{
		OrderNumber:   "ALB-20260828-7KQ2MX",
		CustomerID:    "cust-001",
		UserID:        "guest",
		CustomerEmail: "amelia@example.com",
		Lines: []payment.LineItem{
			{
				Name:            "Heritage Oxford Shirt",
				Description:     "Size: M, Colour: White",
				ImageURL:        "https://cdn.example.com/oxford.jpg",
				UnitAmountPence: 2499,
				Quantity:        1,
			},
			{
				Name:            "Merino Crew Jumper",
				Description:     "Size: L, Colour: Navy",
				UnitAmountPence: 1699,
				Quantity:        1,
			},
		},
		SubtotalPence: 4198,
		ShippingPence: 499,
		TaxPence:      939,
		TotalPence:    5636,
		Notes:         "Leave with neighbour",
	}
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		SecretKey:  "sk_test_abc",
		BaseURL:    srv.URL,
		SuccessURL: "https://shop.example.com/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.example.com/checkout/cancel",
	}
	return NewProvider(cfg, httpclient.New(httpclient.DefaultConfig()))
}

func TestProvider_CreateSession_Success(t *testing.T) {
	var gotForm url.Values
	var gotAuth, gotIdempotencyKey string

	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "cs_test_123",
			"url": "https://checkout.stripe.com/c/pay/cs_test_123",
			"payment_intent": "pi_test_456",
			"expires_at": 1787000000
		}`))
	})

	sess, err := provider.CreateSession(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", sess.RedirectURL)
	assert.Equal(t, "pi_test_456", sess.PaymentReference)
	assert.Equal(t, time.Unix(1787000000, 0).UTC(), sess.ExpiresAt)

	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.NotEmpty(t, gotIdempotencyKey)

	assert.Equal(t, "payment", gotForm.Get("mode"))
	assert.Equal(t, "amelia@example.com", gotForm.Get("customer_email"))

	// Product lines.
	assert.Equal(t, "Heritage Oxford Shirt", gotForm.Get("line_items[0][price_data][product_data][name]"))
	assert.Equal(t, "Size: M, Colour: White", gotForm.Get("line_items[0][price_data][product_data][description]"))
	assert.Equal(t, "https://cdn.example.com/oxford.jpg", gotForm.Get("line_items[0][price_data][product_data][images][0]"))
	assert.Equal(t, "2499", gotForm.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "gbp", gotForm.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "1699", gotForm.Get("line_items[1][price_data][unit_amount]"))

	// Shipping rides as a synthetic third line.
	assert.Equal(t, "Shipping", gotForm.Get("line_items[2][price_data][product_data][name]"))
	assert.Equal(t, "499", gotForm.Get("line_items[2][price_data][unit_amount]"))
	assert.Equal(t, "1", gotForm.Get("line_items[2][quantity]"))

	// Reconciliation metadata.
	assert.Equal(t, "ALB-20260828-7KQ2MX", gotForm.Get("metadata[order_number]"))
	assert.Equal(t, "cust-001", gotForm.Get("metadata[customer_id]"))
	assert.Equal(t, "guest", gotForm.Get("metadata[user_id]"))
	assert.Equal(t, "4198", gotForm.Get("metadata[subtotal_pence]"))
	assert.Equal(t, "939", gotForm.Get("metadata[tax_pence]"))
	assert.Equal(t, "5636", gotForm.Get("metadata[total_pence]"))
	assert.Equal(t, "Leave with neighbour", gotForm.Get("metadata[customer_notes]"))
}

func TestProvider_CreateSession_ThirtyMinuteExpiry(t *testing.T) {
	var gotExpiresAt string

	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotExpiresAt = r.PostForm.Get("expires_at")
		w.Write([]byte(`{"id":"cs_1","url":"https://stripe.test/cs_1"}`))
	})

	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	provider.now = func() time.Time { return fixed }

	sess, err := provider.CreateSession(context.Background(), sampleInput())
	require.NoError(t, err)

	wantExpiry := fixed.Add(30 * time.Minute)
	assert.Equal(t, strconv.FormatInt(wantExpiry.Unix(), 10), gotExpiresAt)

	// Response carried no expires_at, so the provider falls back to its own clock.
	assert.Equal(t, wantExpiry, sess.ExpiresAt)
}

func TestProvider_CreateSession_FreeShippingOmitsShippingLine(t *testing.T) {
	var gotForm url.Values

	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Write([]byte(`{"id":"cs_2","url":"https://stripe.test/cs_2"}`))
	})

	input := sampleInput()
	input.ShippingPence = 0

	_, err := provider.CreateSession(context.Background(), input)
	require.NoError(t, err)

	assert.Empty(t, gotForm.Get("line_items[2][price_data][product_data][name]"))
	assert.Equal(t, "0", gotForm.Get("metadata[shipping_pence]"))
}

func TestProvider_CreateSession_GatewayError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"parameter_invalid","message":"Invalid currency"}}`))
	})

	sess, err := provider.CreateSession(context.Background(), sampleInput())
	assert.Nil(t, sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency")
	assert.Contains(t, err.Error(), "402")
}

func TestProvider_CreateSession_MalformedResponse(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	sess, err := provider.CreateSession(context.Background(), sampleInput())
	assert.Nil(t, sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode stripe response")
}
