package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dwsearch/dwsearch/internal/config"
	"github.com/dwsearch/dwsearch/internal/db/driver"
	logpkg "github.com/dwsearch/dwsearch/internal/logger"
	"github.com/dwsearch/dwsearch/internal/metrics"
	datasetrepo "github.com/dwsearch/dwsearch/internal/repository/dataset"
	searchrepo "github.com/dwsearch/dwsearch/internal/repository/search"
	chiTransport "github.com/dwsearch/dwsearch/internal/transport/chi"
	datasetuc "github.com/dwsearch/dwsearch/internal/usecase/dataset"
	healthuc "github.com/dwsearch/dwsearch/internal/usecase/health"
	searchuc "github.com/dwsearch/dwsearch/internal/usecase/search"
	"github.com/dwsearch/dwsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dwsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend_driver", cfg.Backend.Driver),
		zap.Strings("backend_addrs", cfg.Backend.Addrs),
	)

	base, err := driver.Open(driver.Config{
		Driver:   cfg.Backend.Driver,
		Addrs:    cfg.Backend.Addrs,
		Username: cfg.Backend.Username,
		Password: cfg.Backend.Password,
		DB:       cfg.Backend.DB,
		Sniff:    cfg.Backend.Sniff,
	})
	if err != nil {
		logger.Fatal("Failed to create backend store", zap.Error(err))
	}
	defer base.Close()

	ctx := context.Background()
	if err := base.WaitForReady(ctx, time.Duration(cfg.Backend.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Search backend not ready", zap.Error(err))
	}
	logger.Info("Connected to search backend")

	// Register backend metrics explicitly (no init())
	metrics.RegisterBackendMetrics()
	store := metrics.InstrumentStore(base, cfg.Backend.Driver)

	catalog := cfg.Catalog()
	types := cfg.FieldTypes()
	timeout := time.Duration(cfg.Backend.TimeoutSec) * time.Second

	// Repositories
	searchRepo := searchrepo.New(store)
	datasetRepo := datasetrepo.New(store, cfg.Index.Datasets, cfg.Index.DatasetListSize)

	// Use cases
	searchSvc := searchuc.New(searchRepo, datasetRepo, catalog, searchuc.Config{
		Index: cfg.Index.Resolver,
		Fields: searchuc.Fields{
			Dataset:  cfg.Fields.Dataset,
			Core:     cfg.Fields.Core,
			Location: cfg.Fields.Location,
			ID:       cfg.Fields.ID,
		},
		Types:   types,
		Timeout: timeout,
	})
	datasetSvc := datasetuc.New(datasetRepo, searchSvc, catalog)
	healthSvc := healthuc.New(store, cfg.Backend.Driver, timeout)

	languages := make([]chiTransport.Language, len(cfg.Languages))
	for i, l := range cfg.Languages {
		languages[i] = chiTransport.Language{Code: l.Code, Name: l.Name}
	}
	server := chiTransport.NewServer(searchSvc, datasetSvc, healthSvc, chiTransport.Options{
		Catalog:   catalog,
		Types:     types,
		Languages: languages,
		Version:   version.String(),
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternal,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
