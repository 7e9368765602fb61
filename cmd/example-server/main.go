package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fitplan-gateway/middleware/ratelimit"
	"fitplan-gateway/middleware/ratelimit/domain"
	"fitplan-gateway/middleware/ratelimit/infra"
)

func main() {
	// Exemplo: middlewares direto no webserver (sem proxy), com handlers falsos
	// no lugar do agente e do gerador de PDF.
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	guard, err := ratelimit.NewGuard(ratelimit.GuardOptions{Logger: log})
	if err != nil {
		log.Fatalf("guard error: %v", err)
	}
	defer guard.Close()

	counters := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", ratelimit.Middleware(ratelimit.Options{
		Guard:               guard,
		Stats:               counters,
		AddRateLimitHeaders: true,
		Logger:              log,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"plano gerado"}` + "\n"))
	})))

	pdf := ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{Max: 2})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"url":"https://example.invalid/dietas/plano.pdf"}` + "\n"))
		}))
	mux.Handle("POST /api/pdf", ratelimit.Middleware(ratelimit.Options{
		Guard:               guard,
		Stats:               counters,
		Category:            domain.CategoryPDF,
		AddRateLimitHeaders: true,
		Logger:              log,
	})(pdf))

	mux.HandleFunc("GET /internal/stats", ratelimit.StatsHandler(guard, counters))

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}
