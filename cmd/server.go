package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/callback"
	"github.com/juancollazo-ch/monoparts-service/internal/config"
	"github.com/juancollazo-ch/monoparts-service/internal/events"
	"github.com/juancollazo-ch/monoparts-service/internal/handlers"
	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/metrics"
	"github.com/juancollazo-ch/monoparts-service/internal/signer"
	"github.com/juancollazo-ch/monoparts-service/internal/webhook"
	"github.com/juancollazo-ch/monoparts-service/internal/worker"
)

// MAIN: inicializa servidor, workers y dependencias
func main() {
	cfg, err := config.Load(os.Getenv("MONOPARTS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Reemplazar logger global
	zap.ReplaceGlobals(logger)

	sig, err := signer.New(cfg)
	if err != nil {
		zap.L().Error("Failed to build signer", zap.Error(err))
		os.Exit(1)
	}

	m := metrics.New(true)
	sinks := []events.Sink{events.NewLogSink(logger), m.Sink()}

	// Sinks lentos (redis, webhook) van por el worker pool
	var slow []events.Sink
	if cfg.Redis.URL != "" {
		pub, err := events.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel, logger)
		if err != nil {
			zap.L().Error("Failed to configure redis publisher", zap.Error(err))
			os.Exit(1)
		}
		defer pub.Close()
		slow = append(slow, pub)
	}
	if cfg.Forward.URL != "" {
		sender, err := webhook.NewSender(cfg.Forward.URL, cfg.Forward.Secret, logger)
		if err != nil {
			zap.L().Error("Failed to configure webhook forwarder", zap.Error(err))
			os.Exit(1)
		}
		slow = append(slow, sender)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var pool *worker.WorkerPool
	if len(slow) > 0 {
		pool = worker.NewWorkerPool(events.Combine(slow...), 5, 1000, logger)
		pool.Start(workerCtx)
		sinks = append(sinks, pool)
	}

	processor := callback.NewProcessor(sig,
		callback.WithSink(events.Combine(sinks...)),
		callback.WithLogger(logger),
	)

	// HTTP ROUTES
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Get("/health", handlers.Health(cfg))
	r.Handle("/metrics", m.Handler())
	if cfg.Callbacks.Enabled {
		r.With(handlers.WithLogging).
			Post(cfg.Callbacks.Path, handlers.NewCallbackHandler(processor, cfg.Signature.Header).ServeHTTP)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// GRACEFUL SHUTDOWN
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		<-sigChan

		zap.L().Info("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("Server started",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", string(cfg.Environment)),
		zap.Bool("callbacks_enabled", cfg.Callbacks.Enabled),
		zap.String("callback_path", cfg.Callbacks.Path),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.L().Error("Server stopped unexpectedly", zap.Error(err))
		stopWorkers()
		return
	}
	<-done

	// Esperar a que los workers terminen lo que quedó en cola
	stopWorkers()
	if pool != nil {
		pool.Wait()
	}
	zap.L().Info("Server exited")
}
