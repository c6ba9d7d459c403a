package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ListenAddr  string
	DatabaseURL string
	JWTSecret   string

	MetricsUser     string
	MetricsPassword string

	// Payment provider selection: "stripe" or "flutterwave".
	PaymentProvider string

	StripeAPIKey        string
	StripeWebhookSecret string

	FlutterwaveSecretKey  string
	FlutterwaveWebhookKey string

	// Where the hosted payment page sends the browser back to.
	PaymentRedirectURL string
	Currency           string

	GeneratorBaseURL string
	GeneratorAPIKey  string

	// Optional per-plan price overrides in minor units (0 = catalog default).
	PremiumPriceOverride    int64
	EnterprisePriceOverride int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment")
	}

	cfg := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		MetricsUser:     os.Getenv("METRICS_USER"),
		MetricsPassword: os.Getenv("METRICS_PASSWORD"),

		PaymentProvider: getEnv("PAYMENT_PROVIDER", "flutterwave"),

		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		FlutterwaveSecretKey:  os.Getenv("FLW_SECRET_KEY"),
		FlutterwaveWebhookKey: os.Getenv("FLW_WEBHOOK_HASH"),

		PaymentRedirectURL: getEnv("PAYMENT_REDIRECT_URL", "https://app.atelierhub.io/billing/return"),
		Currency:           getEnv("PAYMENT_CURRENCY", "USD"),

		GeneratorBaseURL: getEnv("GENERATOR_BASE_URL", "https://patterns.atelierhub.io"),
		GeneratorAPIKey:  os.Getenv("GENERATOR_API_KEY"),

		PremiumPriceOverride:    getEnvInt64("PREMIUM_PRICE_OVERRIDE", 0),
		EnterprisePriceOverride: getEnvInt64("ENTERPRISE_PRICE_OVERRIDE", 0),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer env var, using fallback")
		return fallback
	}
	return n
}
