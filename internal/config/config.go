package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// PricePolicy names how line item unit prices behave between add-to-cart and
// checkout when the catalog price changes in the meantime.
type PricePolicy string

const (
	// PricePolicyFrozen honours the unit price captured when the item was added.
	PricePolicyFrozen PricePolicy = "frozen"
	// PricePolicyReprice refreshes unit prices from the catalog during checkout
	// assembly, before totals are computed.
	PricePolicyReprice PricePolicy = "reprice"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	CatalogBaseURL  string
	CatalogCacheTTL time.Duration

	ShippingBaseURL   string
	ShippingAPIKey    string
	ShippingOrigin    string
	AutoSelectRate    bool
	OrderAPIBaseURL   string
	VoucherAPIBaseURL string

	CartTTL        time.Duration
	PricePolicy    PricePolicy
	IdempotencyTTL time.Duration

	RateLimitPerMinute int
	BodyLimitBytes     int64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CatalogBaseURL:  strings.TrimSpace(k.String("CATALOG_BASE_URL")),
		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),

		ShippingBaseURL:   strings.TrimSpace(k.String("SHIPPING_BASE_URL")),
		ShippingAPIKey:    k.String("RAJAONGKIR_API_KEY"),
		ShippingOrigin:    valueOrDefault(k.String("SHIPPING_ORIGIN_CODE"), "153"),
		AutoSelectRate:    parseBool(valueOrDefault(k.String("AUTO_SELECT_RATE"), "true")),
		OrderAPIBaseURL:   strings.TrimSpace(k.String("ORDER_API_BASE_URL")),
		VoucherAPIBaseURL: strings.TrimSpace(k.String("VOUCHER_API_BASE_URL")),

		CartTTL:        parseDuration(k.String("CART_TTL"), "168h"),
		PricePolicy:    parsePricePolicy(k.String("PRICE_POLICY")),
		IdempotencyTTL: parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		RateLimitPerMinute: intOrDefault(k.Int("RATE_LIMIT_PER_MINUTE"), 120),
		BodyLimitBytes:     int64(intOrDefault(k.Int("BODY_LIMIT_BYTES"), 1<<20)),
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.CatalogBaseURL == "" {
		return nil, errors.New("CATALOG_BASE_URL is required")
	}
	if cfg.OrderAPIBaseURL == "" {
		return nil, errors.New("ORDER_API_BASE_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func intOrDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parsePricePolicy(value string) PricePolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(PricePolicyReprice):
		return PricePolicyReprice
	default:
		return PricePolicyFrozen
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
