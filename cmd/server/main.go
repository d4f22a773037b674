// Command server runs the PixelFeed API.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pixelfeed/internal/config"
	"pixelfeed/internal/events"
	"pixelfeed/internal/middleware"
	"pixelfeed/internal/observability"
	"pixelfeed/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "pixelfeed-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	var sinks []events.Publisher
	var broker *events.NATSPublisher
	if cfg.NATSURL != "" {
		broker, err = events.ConnectNATS(events.NATSConfig{
			URL:           cfg.NATSURL,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			ClientName:    "pixelfeed-api",
		})
		if err != nil {
			// Events are best effort; the API keeps serving without the broker.
			middleware.Logger.Warn("NATS unavailable, domain events will not be mirrored", "error", err)
		} else {
			sinks = append(sinks, broker)
		}
	}

	srv, err := server.NewServer(cfg, sinks...)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", "error", err)
		}
		if broker != nil {
			broker.Close()
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracing shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
