package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limitermw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/order"
	"github.com/noah-isme/toko-storefront/internal/security"
	"github.com/noah-isme/toko-storefront/internal/shipping"
	"github.com/noah-isme/toko-storefront/internal/voucher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "storefront")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		sampling := envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0)
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "storefront-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: sampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				ctx := context.Background()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metricsEnabled {
		if err := redisotel.InstrumentMetrics(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	transport := otelhttp.NewTransport(http.DefaultTransport)

	catalogClient := catalog.NewHTTPClient(
		cfg.CatalogBaseURL,
		transport,
		catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	)

	var voucherResolver voucher.Resolver
	if cfg.VoucherAPIBaseURL != "" {
		voucherResolver = voucher.NewHTTPResolver(cfg.VoucherAPIBaseURL, transport)
	}

	var shippingClient shipping.Client = shipping.MockClient{}
	if cfg.ShippingBaseURL != "" {
		shippingClient = shipping.NewHTTPClient(cfg.ShippingBaseURL, cfg.ShippingAPIKey, transport)
	}

	orderClient := order.NewClient(cfg.OrderAPIBaseURL, transport)

	sessions := &cart.Sessions{R: redisClient, TTL: cfg.CartTTL}
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	bus := &events.Bus{
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}, events.MetricsNotifier{}},
		Now:       time.Now,
	}

	cartHandler := &cart.Handler{
		Sessions: sessions,
		Catalog:  catalogClient,
		Vouchers: voucherResolver,
	}
	shippingHandler := &shipping.Handler{Client: shippingClient, Origin: cfg.ShippingOrigin}
	checkoutHandler := &checkout.Handler{
		Sessions:   sessions,
		Catalog:    catalogClient,
		Vouchers:   voucherResolver,
		Shipping:   shippingClient,
		Origin:     cfg.ShippingOrigin,
		AutoSelect: cfg.AutoSelectRate,
		Submitter: &checkout.Submitter{
			Assembler: &checkout.Assembler{
				Validator:   checkout.NewValidator(),
				PricePolicy: cfg.PricePolicy,
			},
			Orders:      orderClient,
			Events:      bus,
			Generations: &checkout.Generations{},
		},
		Events: bus,
		Log:    logger,
	}

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	rateStore, err := limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "ratelimit", MaxRetry: 3})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit store")
	}
	rateLimiter := limitermw.NewMiddleware(limiter.New(rateStore, limiter.Rate{
		Period: time.Minute,
		Limit:  int64(cfg.RateLimitPerMinute),
	}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
	r.Use(rateLimiter.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	pprofEnabled := envBool("OBS_ENABLE_PPROF", true)
	if pprofEnabled {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{redis: redisClient},
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	orderHandler := &order.Handler{Client: orderClient}

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/shipping/rates", shippingHandler.Rates)
		v.Get("/orders/{orderId}", orderHandler.Track)

		v.Route("/carts", func(c chi.Router) {
			c.Get("/{id}", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Post("/{id}/items", cartHandler.AddItem)
				g.Patch("/{id}/items/{key}", cartHandler.UpdateItem)
				g.Delete("/{id}/items/{key}", cartHandler.RemoveItem)
				g.Delete("/{id}/items", cartHandler.Clear)
				g.Post("/{id}/apply-voucher", cartHandler.ApplyVoucher)
				g.Delete("/{id}/voucher", cartHandler.RemoveVoucher)
			})
		})

		v.Route("/checkout", func(c chi.Router) {
			c.With(idem.Middleware).Post("/{id}", checkoutHandler.Submit)
			c.Delete("/{id}", checkoutHandler.Cancel)
		})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	redis *redis.Client
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
