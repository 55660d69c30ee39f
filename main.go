package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	y "stockfeed/api/yahoo"
	"stockfeed/config"
	c "stockfeed/core"
	"stockfeed/progress"
	r "stockfeed/repos"
)

func main() {
	// initialize context and signal handler, listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load in environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	// get postgres connection and apply schema
	postgresConnection, err := r.GetPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer postgresConnection.Close()

	if err := postgresConnection.Migrate(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// task store backend for the progress tracker
	var store progress.TaskStore
	if cfg.TaskStore == config.TaskStorePostgres {
		store = r.NewTaskStateStore(ctx, &postgresConnection)
	} else {
		store = progress.NewFileTaskStore(cfg.TaskFile)
	}
	tracker := progress.NewTracker(store)

	// quote provider client
	yahooClient := y.GetClient(cfg.YahooHost, cfg.YahooTimeout)

	sc := c.GetServiceContext(ctx, cfg, &postgresConnection, yahooClient, tracker)

	// periodic cleanup of expired tasks
	cleanup, err := c.StartCleanupScheduler(sc)
	if err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}
	defer cleanup.Stop()

	// get http server, makes all of the endpoints and routes
	s := c.GetHttpServer(sc)

	// start http server in goroutine
	go func() {
		log.Printf("Starting stockfeed server on %s", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// golang channel, will wait here until the context is closed (ie, ctrl+C)
	<-ctx.Done()
	log.Println("Received shutdown signal, shutting down gracefully...")

	// this gives the server 10 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped successfully")
}
