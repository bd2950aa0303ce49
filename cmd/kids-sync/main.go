package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"missing-kids/internal/api"
	"missing-kids/internal/config"
	"missing-kids/internal/db"
	"missing-kids/internal/detail"
	"missing-kids/internal/event"
	"missing-kids/internal/ingest"
	"missing-kids/internal/kid"
)

func main() {
	// Root context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "[kids-sync] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	// Mongo
	mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("failed to connect to db: %v", err)
	}
	dbInstance := mongoClient.Database(cfg.MongoDBName)

	// Kid repository
	kidRepo, err := kid.NewMongoKidRepository(dbInstance, logger)
	if err != nil {
		logger.Fatalf("failed to init repository: %v", err)
	}
	logger.Println("kid repository initialised")

	// Feed + detail clients
	httpClient := &http.Client{Timeout: cfg.Timeout}
	feedClient := ingest.NewRSSClient(cfg.FeedURL, cfg.UserAgent, httpClient)

	var detailClient ingest.DetailClient
	if cfg.DetailLookup {
		detailClient = detail.NewClient(cfg.DetailURL, httpClient)
		logger.Printf("detail lookups enabled against %s", cfg.DetailURL)
	}

	// Ingest service (poller)
	ingestService := ingest.NewService(
		kidRepo,
		feedClient,
		detailClient,
		cfg.MaxPolls,
		logger,
	)

	// Event publisher (RabbitMQ)
	publisher, err := event.NewRabbitPublisher(
		cfg.RabbitURI,
		cfg.RabbitExchange,
		cfg.RabbitRoutingKey,
		logger,
	)
	if err != nil {
		logger.Fatalf("failed to init rabbit publisher: %v", err)
	}
	defer publisher.Close()

	eventsService := event.NewService(
		dbInstance.Collection(kid.CollectionName),
		publisher,
		logger,
	)

	// HTTP server
	srv := serveHTTP(cfg.HTTPAddr, api.NewRouter(kidRepo, logger), logger)

	// Start background workers
	go ingestService.StartPolling(ctx, cfg.PollInterval)
	go eventsService.Run(ctx)

	logger.Println("service started")

	// Block until we receive a signal / ctx cancelled
	<-ctx.Done()
	logger.Println("shutdown signal received, shutting down...")

	// Unified shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Graceful HTTP shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("HTTP server shutdown error: %v", err)
	}

	// Graceful Mongo shutdown
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Printf("mongo disconnect error: %v", err)
	}

	logger.Println("shutdown complete")
}

func serveHTTP(addr string, handler http.Handler, logger *log.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}()

	return srv
}
