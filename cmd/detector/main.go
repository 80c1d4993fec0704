package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app_service "rugpull-detector/internal/application/service"
	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/blockchain"
	"rugpull-detector/internal/infrastructure/config"
	"rugpull-detector/internal/infrastructure/httpapi"
	"rugpull-detector/internal/infrastructure/logger"
	"rugpull-detector/internal/infrastructure/messaging"
	"rugpull-detector/internal/infrastructure/metrics"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(appOptions(cfg, log))

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// appOptions assembles the detector's dependency graph
func appOptions(cfg *config.Config, log *logger.Logger) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.NATS),
		fx.Supply(&cfg.Detector),

		// Infrastructure providers
		fx.Provide(
			metrics.NewCollector,
			blockchain.NewCallDecoderService,
			blockchain.NewSignatureTable,
			func(c *metrics.Collector) app_service.VerdictObserver { return c },
			func(c *metrics.Collector) httpapi.RejectionRecorder { return c },
			func(c *metrics.Collector) messaging.RejectionRecorder { return c },
		),

		// Application providers
		fx.Provide(
			app_service.NewDetectionService,
			func(
				detector service.RugpullDetector,
				registry service.SignatureRegistry,
				rejections httpapi.RejectionRecorder,
				log *logger.Logger,
				cfg *config.Config,
			) *httpapi.Server {
				return httpapi.NewServer(detector, registry, rejections, log, cfg.App.MaxBodyBytes)
			},
			messaging.NewNATSResponder,
		),

		// Lifecycle hooks
		fx.Invoke(startHTTPServer),
		fx.Invoke(startNATSResponder),
		fx.Invoke(startMetricsServer),

		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)
}

// startHTTPServer serves the plugin endpoint
func startHTTPServer(
	lifecycle fx.Lifecycle,
	api *httpapi.Server,
	cfg *config.Config,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:      api.Routes(),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting HTTP server...", zap.Int("port", cfg.App.HTTPPort))

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("HTTP server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// startNATSResponder answers detection requests arriving over NATS
func startNATSResponder(
	lifecycle fx.Lifecycle,
	responder *messaging.NATSResponder,
	cfg *config.Config,
	log *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("NATS Configuration",
				zap.String("url", cfg.NATS.URL),
				zap.String("subject", responder.Subject()),
				zap.Bool("enabled", cfg.NATS.Enabled),
			)

			if err := responder.Connect(ctx); err != nil {
				return fmt.Errorf("failed to start NATS responder: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping NATS responder...")
			return responder.Disconnect()
		},
	})
}

// startMetricsServer exposes Prometheus metrics on their own port
func startMetricsServer(
	lifecycle fx.Lifecycle,
	collector *metrics.Collector,
	cfg *config.Config,
	log *logger.Logger,
) {
	if !cfg.Metrics.Enabled {
		log.Info("Metrics are disabled")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting metrics server...", zap.Int("port", cfg.Metrics.Port))

			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("Metrics server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping metrics server...")
			return server.Shutdown(ctx)
		},
	})
}
