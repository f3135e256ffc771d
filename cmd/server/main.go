package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mapa-imoveis/listings"
	"mapa-imoveis/listings/application"
	"mapa-imoveis/listings/domain"
	"mapa-imoveis/listings/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	cache := infra.NewMemStore()
	durable := infra.NewFileStore(cfg.cacheDir)
	throttle := infra.NewThrottle(cfg.minRequestInterval, cfg.backoffBase,
		infra.WithBackoffMax(cfg.backoffMax))
	provider := infra.NewProviderClient(cfg.providerBaseURL, cfg.providerAPIKey, cfg.providerHost, cfg.providerTimeout)

	var geocoder domain.Geocoder
	if cfg.geocodeBaseURL != "" {
		geocoder = infra.NewGeocodeClient(cfg.geocodeBaseURL, cfg.geocodeTimeout)
	}

	var stats domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
		)
	}

	orc := application.NewOrchestrator(application.Config{
		TTLListings: cfg.ttlListings,
		TTLQuery:    cfg.ttlQuery,
		TTLDetail:   cfg.ttlDetail,
	}, cache, durable, throttle, provider, stats)

	deb := application.NewDebouncer(cfg.debounceMinDelta, cfg.debounceMinInterval)

	handler := &listings.Handler{
		Orchestrator:    orc,
		Debouncer:       deb,
		Geocoder:        geocoder,
		DefaultLocation: cfg.defaultLocation,
	}

	h := handler.Routes()
	h = listings.ConcurrencyMiddleware(listings.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(h)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("server listening on %s (provider=%s)", cfg.listenAddr, cfg.providerHost)
	log.Printf("cache: ttlListings=%s ttlQuery=%s ttlDetail=%s dir=%q warmDetails=%d",
		cfg.ttlListings, cfg.ttlQuery, cfg.ttlDetail, cfg.cacheDir, cache.Len(domain.BucketDetail))
	log.Printf("throttle: minInterval=%s backoffBase=%s backoffMax=%s",
		cfg.minRequestInterval, cfg.backoffBase, cfg.backoffMax)
	log.Printf("debounce: minDelta=%.4f minInterval=%s defaultLocation=%q",
		cfg.debounceMinDelta, cfg.debounceMinInterval, cfg.defaultLocation)
	log.Printf("stats: enabled=%v redisAddr=%q prefix=%q ttl=%s",
		cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsPrefix, cfg.statsTTL)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr string

	providerBaseURL string
	providerAPIKey  string
	providerHost    string
	providerTimeout time.Duration

	geocodeBaseURL string
	geocodeTimeout time.Duration

	minRequestInterval time.Duration
	backoffBase        time.Duration
	backoffMax         time.Duration

	ttlListings time.Duration
	ttlQuery    time.Duration
	ttlDetail   time.Duration
	cacheDir    string

	debounceMinDelta    float64
	debounceMinInterval time.Duration
	defaultLocation     string

	concurrencyMax     int
	concurrencyTimeout time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")

	cfg.providerBaseURL = getenvDefault("PROVIDER_BASE_URL", "https://zillow-com1.p.rapidapi.com")
	cfg.providerAPIKey = os.Getenv("PROVIDER_API_KEY")
	cfg.providerHost = getenvDefault("PROVIDER_HOST", "zillow-com1.p.rapidapi.com")
	cfg.providerTimeout = getenvDurationDefault("PROVIDER_TIMEOUT", 15*time.Second)

	cfg.geocodeBaseURL = getenvDefault("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.geocodeTimeout = getenvDurationDefault("GEOCODE_TIMEOUT", 5*time.Second)

	cfg.minRequestInterval = getenvDurationDefault("MIN_REQUEST_INTERVAL", 1100*time.Millisecond)
	cfg.backoffBase = getenvDurationDefault("BACKOFF_BASE", 30*time.Second)
	cfg.backoffMax = getenvDurationDefault("BACKOFF_MAX", 5*time.Minute)

	cfg.ttlListings = getenvDurationDefault("TTL_LISTINGS", 10*time.Minute)
	cfg.ttlQuery = getenvDurationDefault("TTL_QUERY", 1*time.Hour)
	cfg.ttlDetail = getenvDurationDefault("TTL_DETAIL", 30*24*time.Hour)
	cfg.cacheDir = getenvDefault("CACHE_DIR", "property_cache")

	cfg.debounceMinDelta = getenvFloatDefault("DEBOUNCE_MIN_DELTA", 0.005)
	cfg.debounceMinInterval = getenvDurationDefault("DEBOUNCE_MIN_INTERVAL", 10*time.Second)
	cfg.defaultLocation = getenvDefault("DEFAULT_LOCATION", "tampa, fl")

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "listings:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)

	if cfg.providerAPIKey == "" {
		return config{}, errors.New("PROVIDER_API_KEY is required")
	}
	if cfg.minRequestInterval <= 0 {
		return config{}, errors.New("MIN_REQUEST_INTERVAL must be > 0")
	}
	if cfg.backoffBase <= 0 {
		return config{}, errors.New("BACKOFF_BASE must be > 0")
	}
	if cfg.backoffMax < cfg.backoffBase {
		return config{}, errors.New("BACKOFF_MAX must be >= BACKOFF_BASE")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
