package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albionthreads/checkout-service/internal/domain"
	apperrors "github.com/albionthreads/checkout-service/pkg/errors"
	"github.com/albionthreads/checkout-service/pkg/httputil"
)

// OrderItemResponse is a line on the order confirmation page.
type OrderItemResponse struct {
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Size            string `json:"size,omitempty"`
	Color           string `json:"color,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Quantity        int    `json:"quantity"`
	UnitPricePence  int64  `json:"unitPricePence"`
	TotalPricePence int64  `json:"totalPricePence"`
}

// OrderResponse is the GET /api/v1/orders/{orderNumber} body.
type OrderResponse struct {
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	SubtotalPence   int64               `json:"subtotalPence"`
	ShippingPence   int64               `json:"shippingPence"`
	TaxPence        int64               `json:"taxPence"`
	DiscountPence   int64               `json:"discountPence"`
	TotalPence      int64               `json:"totalPence"`
	ShippingAddress domain.Address      `json:"shippingAddress"`
	BillingAddress  domain.Address      `json:"billingAddress"`
	CustomerNotes   string              `json:"customerNotes,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// GetOrder handles GET /api/v1/orders/{orderNumber}.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	if orderNumber == "" {
		httputil.WriteError(w, r, apperrors.InvalidRequest("order number is required"), h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderNumber)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			Name:            item.Name,
			SKU:             item.SKU,
			Size:            item.Size,
			Color:           item.Color,
			ImageURL:        item.ImageURL,
			Quantity:        item.Quantity,
			UnitPricePence:  item.UnitPricePence,
			TotalPricePence: item.TotalPricePence,
		}
	}

	return &OrderResponse{
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		SubtotalPence:   order.SubtotalPence,
		ShippingPence:   order.ShippingPence,
		TaxPence:        order.TaxPence,
		DiscountPence:   order.DiscountPence,
		TotalPence:      order.TotalPence,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		CustomerNotes:   order.CustomerNotes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}
