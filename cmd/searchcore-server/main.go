// Command searchcore-server serves the federated station/podcast search
// API: it loads provider configuration from the environment, builds the
// provider registry and rate limiter, and exposes the search, status, and
// feed-parse operations over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediadirectory/searchcore/internal/cache"
	"github.com/mediadirectory/searchcore/internal/config"
	"github.com/mediadirectory/searchcore/internal/health"
	"github.com/mediadirectory/searchcore/internal/httpapi"
	"github.com/mediadirectory/searchcore/internal/orchestrator"
	"github.com/mediadirectory/searchcore/internal/provider"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	envFile := flag.String("env", ".env", "Optional .env file to load before reading the environment")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("load env file %s: %v", *envFile, err)
	}
	cfg := config.Load()

	limiter := ratelimiter.New(cfg.Providers)
	registry := provider.NewRegistry(cfg.Providers, limiter)
	resultCache := cache.NewMemory()
	defer resultCache.Close()

	orch := orchestrator.New(registry, limiter, resultCache, cfg)
	api := httpapi.NewAPI(orch, registry)
	checker := health.NewChecker(cfg.Providers, limiter)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/stations/search", api.SearchStations)
	mux.HandleFunc("/v1/podcasts/search", api.SearchPodcasts)
	mux.HandleFunc("/v1/providers/status", api.ProviderStatuses)
	mux.HandleFunc("/v1/feeds/parse", api.ParseFeed)
	mux.HandleFunc("/healthz", healthHandler(checker))
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("searchcore-server listening on %s", *addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown: %v", err)
	}
}

func healthHandler(checker *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := checker.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			log.Printf("health handler: encode: %v", err)
		}
	}
}
