package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/albionthreads/checkout-service/internal/auth"
	"github.com/albionthreads/checkout-service/internal/config"
	"github.com/albionthreads/checkout-service/internal/domain"
	"github.com/albionthreads/checkout-service/internal/event"
	handler "github.com/albionthreads/checkout-service/internal/handler/http"
	"github.com/albionthreads/checkout-service/internal/idempotency"
	"github.com/albionthreads/checkout-service/internal/notification"
	"github.com/albionthreads/checkout-service/internal/payment"
	paymentmock "github.com/albionthreads/checkout-service/internal/payment/mock"
	"github.com/albionthreads/checkout-service/internal/payment/stripe"
	"github.com/albionthreads/checkout-service/internal/repository/postgres"
	"github.com/albionthreads/checkout-service/internal/service"
	"github.com/albionthreads/checkout-service/migrations"
	"github.com/albionthreads/checkout-service/pkg/database"
	"github.com/albionthreads/checkout-service/pkg/health"
	"github.com/albionthreads/checkout-service/pkg/httpclient"
	pkgkafka "github.com/albionthreads/checkout-service/pkg/kafka"
	"github.com/albionthreads/checkout-service/pkg/middleware"
	"github.com/albionthreads/checkout-service/pkg/tracing"
)

// App wires together all dependencies and runs the checkout service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	dispatcher     *notification.Dispatcher
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "checkout",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "checkout")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Connect to Redis for the double-submit guard. Redis being down must
	// never take checkout down with it, so a failed connection only logs.
	var redisClient *redis.Client
	if cfg.RedisHost != "" {
		redisCfg := database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		redisClient, err = database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			logger.Warn("redis unavailable, duplicate submission guard disabled",
				slog.String("addr", redisCfg.Addr()),
				slog.String("error", err.Error()),
			)
			redisClient = nil
		} else {
			logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
		}
	}

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Outbound HTTP client with circuit breaker, shared by the payment
	// gateway and the identity provider.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, httpclient.CircuitBreakerConfig{
		Name:         "checkout-outbound",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     time.Duration(cfg.CBInterval) * time.Second,
		Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}, logger)

	// Payment provider: Stripe when credentials are configured, otherwise
	// the mock provider so development checkouts complete locally.
	var provider payment.Provider
	if cfg.StripeSecretKey != "" {
		provider = stripe.NewProvider(stripe.Config{
			SecretKey:  cfg.StripeSecretKey,
			BaseURL:    cfg.StripeBaseURL,
			SuccessURL: cfg.StripeSuccessURL,
			CancelURL:  cfg.StripeCancelURL,
		}, cbClient)
	} else {
		provider = paymentmock.NewProvider()
		logger.Warn("no Stripe secret key configured, using mock payment provider")
	}
	logger.Info("payment provider initialized", slog.String("provider", provider.Name()))

	// Token verification is optional; without an identity provider every
	// shopper checks out as a guest.
	var verifier auth.Verifier = auth.NewStaticVerifier(nil)
	if cfg.IdentityProviderURL != "" {
		verifier = auth.NewHTTPVerifier(cfg.IdentityProviderURL, cbClient)
	}

	// Build the dependency graph.
	catalogRepo := postgres.NewCatalogRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	eventProducer := event.NewProducer(producer, logger)
	guard := idempotency.NewGuard(redisClient, logger)

	sender := notification.NewKafkaSender(producer, event.SourceCheckoutService)
	dispatcher := notification.NewDispatcher(sender, cfg.AdminAlertEmail, logger)

	pricing := domain.PricingConfig{
		FreeShippingThresholdPence: cfg.FreeShippingThresholdPence,
		FlatShippingRatePence:      cfg.FlatShippingRatePence,
		TaxRateBasisPoints:         cfg.TaxRateBasisPoints,
	}

	checkoutService := service.NewCheckoutService(
		service.NewInventoryValidator(catalogRepo, logger),
		service.NewCustomerResolver(customerRepo, logger),
		orderRepo,
		provider,
		guard,
		dispatcher,
		eventProducer,
		pricing,
		logger,
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.AllowedOrigins

	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	router := handler.NewRouter(checkoutHandler, verifier, healthHandler, corsCfg, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		dispatcher:     dispatcher,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Notification dispatcher (let queued sends finish)
// 3. Tracer (flush pending spans from drained requests)
// 4. Kafka producer
// 5. Redis client
// 6. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Notifications dispatched by drained requests are still in flight.
	a.dispatcher.Wait()

	// 3. Flush pending spans after HTTP drain so in-flight request spans are captured.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 5. Close Redis client.
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 6. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
