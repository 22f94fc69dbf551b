package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/albionthreads/checkout-service/internal/auth"
	"github.com/albionthreads/checkout-service/pkg/health"
	"github.com/albionthreads/checkout-service/pkg/middleware"
)

// NewRouter builds the HTTP router for the checkout service.
func NewRouter(
	handler *CheckoutHandler,
	verifier auth.Verifier,
	healthHandler *health.Handler,
	corsCfg middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("checkout"))
	r.Use(middleware.Tracing("checkout"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(OptionalAuth(verifier, logger))

		r.With(ContentTypeJSON).Post("/checkout", handler.PlaceOrder)
		r.Get("/orders/{orderNumber}", handler.GetOrder)
	})

	return r
}
