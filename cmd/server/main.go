// Command main is the entry point for the Snippetly API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snippetly/internal/config"
	"snippetly/internal/observability"
	"snippetly/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize tracing if enabled
	var shutdownTracing func(context.Context) error
	if cfg.TracingEnabled {
		shutdownTracing, err = observability.InitTracing(observability.TracingConfig{
			ServiceName:  "snippetly-api",
			Enabled:      true,
			Exporter:     cfg.TraceExporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			Environment:  cfg.Env,
			SamplerRatio: 1.0,
		})
		if err != nil {
			log.Fatalf("Failed to initialize tracing: %v", err)
		}
	}

	// Create server with dependency injection
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "Snippetly API",
		BodyLimit: 1 * 1024 * 1024, // 1MB is plenty for code snippets
	})

	// Setup middleware and routes
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if shutdownTracing != nil {
			if err := shutdownTracing(ctx); err != nil {
				log.Printf("Tracing shutdown error: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
