package http

import (
	"log/slog"
	"net/http"

	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/internal/service"
	"github.com/albionthreads/checkout-service/pkg/httputil"
	"github.com/albionthreads/checkout-service/pkg/validator"
)

// maxCheckoutBody bounds the request body; a cart never legitimately
// approaches this.
const maxCheckoutBody = 1 << 20

// CheckoutItemRequest is a single cart line. Prices are never accepted from
// the client.
type CheckoutItemRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Quantity  int    `json:"quantity"  validate:"required,gt=0"`
}

// AddressRequest carries the shipping address, including the contact details
// used for guest checkout.
type AddressRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Phone     string `json:"phone"     validate:"omitempty,max=30"`
	Address1  string `json:"address1"  validate:"required,max=200"`
	Address2  string `json:"address2"  validate:"omitempty,max=200"`
	City      string `json:"city"      validate:"required,max=100"`
	Postcode  string `json:"postcode"  validate:"required,max=20"`
	Country   string `json:"country"   validate:"required,max=2"`
}

// BillingAddressRequest is an optional separate billing address. When
// SameAsShipping is set the remaining fields are ignored; otherwise the
// address fields are mandatory so an empty billing snapshot is never stored.
type BillingAddressRequest struct {
	SameAsShipping bool   `json:"sameAsShipping"`
	FirstName      string `json:"firstName" validate:"required_if=SameAsShipping false,max=100"`
	LastName       string `json:"lastName"  validate:"required_if=SameAsShipping false,max=100"`
	Phone          string `json:"phone"     validate:"omitempty,max=30"`
	Address1       string `json:"address1"  validate:"required_if=SameAsShipping false,max=200"`
	Address2       string `json:"address2"  validate:"omitempty,max=200"`
	City           string `json:"city"      validate:"required_if=SameAsShipping false,max=100"`
	Postcode       string `json:"postcode"  validate:"required_if=SameAsShipping false,max=20"`
	Country        string `json:"country"   validate:"required_if=SameAsShipping false,max=2"`
}

// CheckoutRequest is the POST /api/v1/checkout body.
type CheckoutRequest struct {
	Items           []CheckoutItemRequest  `json:"items" validate:"required,min=1,max=100,dive"`
	ShippingAddress AddressRequest         `json:"shippingAddress" validate:"required"`
	BillingAddress  *BillingAddressRequest `json:"billingAddress"`
	CustomerNotes   string                 `json:"customerNotes" validate:"omitempty,max=1000"`
	ShippingMethod  string                 `json:"shippingMethod" validate:"omitempty,oneof=standard"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"omitempty,oneof=card"`
	CustomerConsent bool                   `json:"customerConsent"`
}

// CheckoutHandler serves the checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a checkout handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// PlaceOrder handles POST /api/v1/checkout.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBody)

	var req CheckoutRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := toCheckoutInput(&req)
	identity := IdentityFromContext(r.Context())

	result, err := h.service.PlaceOrder(r.Context(), identity, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func toCheckoutInput(req *CheckoutRequest) *service.CheckoutInput {
	items := make([]domain.CartLine, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.CartLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}

	shipping := domain.Address{
		FirstName: req.ShippingAddress.FirstName,
		LastName:  req.ShippingAddress.LastName,
		Email:     req.ShippingAddress.Email,
		Phone:     req.ShippingAddress.Phone,
		Address1:  req.ShippingAddress.Address1,
		Address2:  req.ShippingAddress.Address2,
		City:      req.ShippingAddress.City,
		Postcode:  req.ShippingAddress.Postcode,
		Country:   req.ShippingAddress.Country,
	}

	var billing *domain.Address
	if b := req.BillingAddress; b != nil && !b.SameAsShipping {
		billing = &domain.Address{
			FirstName: b.FirstName,
			LastName:  b.LastName,
			Phone:     b.Phone,
			Address1:  b.Address1,
			Address2:  b.Address2,
			City:      b.City,
			Postcode:  b.Postcode,
			Country:   b.Country,
		}
	}

	return &service.CheckoutInput{
		Items:            items,
		ShippingAddress:  shipping,
		BillingAddress:   billing,
		CustomerNotes:    req.CustomerNotes,
		ShippingMethod:   req.ShippingMethod,
		PaymentMethod:    req.PaymentMethod,
		MarketingConsent: req.CustomerConsent,
	}
}
