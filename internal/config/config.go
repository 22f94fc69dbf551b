package config

import (
	"fmt"

	pkgconfig "github.com/albionthreads/checkout-service/pkg/config"
)

// Config holds all configuration for the checkout service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"CHECKOUT_HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"CHECKOUT_DB_NAME" envDefault:"storefront_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database connection pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis, used for the double-submit guard. Optional: when the host is
	// empty the guard degrades to admitting every submission.
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Payment gateway. An empty secret key selects the mock provider so the
	// service can run in development without Stripe credentials.
	StripeSecretKey  string `env:"STRIPE_SECRET_KEY" envDefault:""`
	StripeBaseURL    string `env:"STRIPE_BASE_URL" envDefault:"https://api.stripe.com"`
	StripeSuccessURL string `env:"STRIPE_SUCCESS_URL" envDefault:"https://www.albionthreads.co.uk/checkout/success"`
	StripeCancelURL  string `env:"STRIPE_CANCEL_URL" envDefault:"https://www.albionthreads.co.uk/checkout/cancel"`

	// Identity provider used to resolve bearer tokens. Empty disables token
	// verification; every shopper checks out as a guest.
	IdentityProviderURL string `env:"IDENTITY_PROVIDER_URL" envDefault:""`

	// Circuit breaker for outbound HTTP (payment gateway, identity provider)
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Observability
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Pricing. Basis points: 2000 = 20% VAT.
	FreeShippingThresholdPence int64 `env:"FREE_SHIPPING_THRESHOLD_PENCE" envDefault:"5000"`
	FlatShippingRatePence      int64 `env:"FLAT_SHIPPING_RATE_PENCE" envDefault:"499"`
	TaxRateBasisPoints         int64 `env:"TAX_RATE_BASIS_POINTS" envDefault:"2000"`

	// Notifications
	AdminAlertEmail string `env:"ADMIN_ALERT_EMAIL" envDefault:""`

	// CORS
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load checkout config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.FreeShippingThresholdPence < 0 {
		return fmt.Errorf("invalid free shipping threshold: %d", c.FreeShippingThresholdPence)
	}
	if c.FlatShippingRatePence < 0 {
		return fmt.Errorf("invalid flat shipping rate: %d", c.FlatShippingRatePence)
	}
	if c.TaxRateBasisPoints < 0 || c.TaxRateBasisPoints > 10000 {
		return fmt.Errorf("invalid tax rate basis points: %d", c.TaxRateBasisPoints)
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
