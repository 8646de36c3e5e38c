package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"field-metrics-backend/config"
	"field-metrics-backend/internal/api"
	"field-metrics-backend/internal/db"
	"field-metrics-backend/internal/metrics"
	"field-metrics-backend/internal/notification"
	"field-metrics-backend/internal/pipeline"
	"field-metrics-backend/internal/schema"
	"field-metrics-backend/internal/sheet"
	"field-metrics-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "field-metrics ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	loc, err := time.LoadLocation(cfg.Pipeline.Timezone)
	if err != nil {
		logger.Fatalf("invalid pipeline timezone %q: %v", cfg.Pipeline.Timezone, err)
	}

	// The reference bundle is built once and shared read-only by every
	// pipeline run.
	reference := schema.DefaultReference()
	reference.MinConfidence = cfg.Pipeline.MinConfidence
	reference.SampleRows = cfg.Pipeline.SampleRows

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionStore := store.NewSessionStore(gormDB)
	logger.Println("session store initialized")

	var webpushOptions *webpush.Options
	var alertPool *notification.WorkerPool
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		alertPool = notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		alertPool.Start(ctx)
		logger.Printf("data-quality alert pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; data-quality alerts disabled")
	}

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	respCache := cache.New(cacheTTL, 2*cacheTTL)

	handler := api.NewHandler(sessionStore, cfg, reference, loc, webpushOptions, alertPool, respCache)

	if cfg.Demo.Enabled && cfg.Demo.LoadOnStart {
		if err := loadDemo(ctx, cfg, sessionStore, reference, loc); err != nil {
			logger.Printf("Warning: failed to load demo dataset: %v", err)
		} else {
			logger.Println("demo dataset analyzed and published")
		}
	}

	router := api.NewRouter(handler, cfg.Server.RateLimitPerSec, respCache, cacheTTL)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

// loadDemo runs the pipeline over the bundled dataset so the dashboard has
// data before the first upload.
func loadDemo(ctx context.Context, cfg *config.Config, s store.Store, ref *schema.Reference, loc *time.Location) error {
	gran, err := metrics.ParseGranularity(cfg.Pipeline.Granularity)
	if err != nil {
		return err
	}
	snap, err := pipeline.Run(sheet.Demo(), pipeline.Options{
		Granularity:  gran,
		Availability: metrics.AvailabilityPolicy{HoursPerDay: cfg.Pipeline.HoursPerDay},
		Reference:    ref,
		Location:     loc,
	})
	if err != nil {
		return err
	}
	_, err = s.Publish(ctx, snap)
	return err
}
