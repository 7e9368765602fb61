package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"fitplan-gateway/internal/config"
	"fitplan-gateway/internal/logging"
	"fitplan-gateway/middleware/ratelimit"
	"fitplan-gateway/middleware/ratelimit/domain"
	"fitplan-gateway/middleware/ratelimit/infra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("logger error: %v", err)
	}

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.WithError(err).WithField("path", r.URL.Path).Error("proxy error")
		http.Error(w, `{"error":"bad gateway"}`, http.StatusBadGateway)
	}

	guard, err := ratelimit.NewGuard(ratelimit.GuardOptions{
		Limits:               cfg.Limits,
		CleanupEvery:         cfg.CleanupInterval,
		FingerprintCacheSize: cfg.FingerprintCacheSize,
		Logger:               log,
	})
	if err != nil {
		log.Fatalf("guard error: %v", err)
	}
	defer guard.Close()

	counters := infra.NewMemoryStatsStore()
	var (
		stats  domain.StatsStore       = counters
		source ratelimit.CounterSource = counters
	)
	if cfg.StatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.StatsRedisAddr,
			Password: cfg.StatsRedisPassword,
			DB:       cfg.StatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		redisStats := infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.StatsPrefix),
			infra.WithStatsTTL(cfg.StatsTTL),
			infra.WithStatsTrackKeys(cfg.StatsTrackKeys),
		)
		stats = multiStats{counters, redisStats}
		// com Redis, /internal/stats mostra a soma de todas as instâncias
		source = redisStats
	}

	throttle := ratelimit.ThrottleMiddleware(ratelimit.ThrottleOptions{
		Limiter: infra.NewThrottle(cfg.ThrottleRPS, cfg.ThrottleBurst),
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/internal/stats", ratelimit.StatsHandler(guard, source))

	r.With(
		ratelimit.Middleware(ratelimit.Options{
			Guard:               guard,
			Stats:               stats,
			Category:            domain.CategoryGeneral,
			AddRateLimitHeaders: cfg.AddHeaders,
			Logger:              log,
		}),
		throttle,
	).Post(cfg.ChatPath, proxy.ServeHTTP)

	r.With(
		ratelimit.Middleware(ratelimit.Options{
			Guard:               guard,
			Stats:               stats,
			Category:            domain.CategoryPDF,
			AddRateLimitHeaders: cfg.AddHeaders,
			Logger:              log,
		}),
		ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
			Max:            cfg.PDFConcurrencyMax,
			AcquireTimeout: cfg.PDFConcurrencyTimeout,
		}),
		throttle,
	).Post(cfg.PDFPath, proxy.ServeHTTP)

	r.NotFound(proxy.ServeHTTP)
	r.MethodNotAllowed(proxy.ServeHTTP)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// agentes LLM e geração de PDF podem demorar
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithFields(logrus.Fields{
		"listen":   cfg.ListenAddr,
		"upstream": target.String(),
		"chat":     cfg.ChatPath,
		"pdf":      cfg.PDFPath,
	}).Info("gateway listening")
	for c, lim := range guard.Limits() {
		log.WithFields(logrus.Fields{"category": c, "requests": lim.Requests, "window": lim.Window}).Info("rate limit")
	}
	log.WithFields(logrus.Fields{
		"pdf_concurrency": cfg.PDFConcurrencyMax,
		"throttle_rps":    cfg.ThrottleRPS,
		"throttle_burst":  cfg.ThrottleBurst,
		"redis_stats":     cfg.StatsEnabled,
	}).Info("upstream protection")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

// multiStats grava o mesmo evento em mais de um StatsStore; retorna o primeiro erro.
type multiStats []domain.StatsStore

func (m multiStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
