package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"knowledgebase-be/internal/bootstrap"
	"knowledgebase-be/internal/config"
	"knowledgebase-be/internal/server"
	"knowledgebase-be/internal/tracer"
	"knowledgebase-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// Shutdown cancels background work; in-flight regeneration runs stop at
	// the next item boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(ctx); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()
	go container.RegenerationService.Run(ctx)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		_ = srv.GetApp().Shutdown()
	}()
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
