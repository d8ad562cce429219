package main

import (
	"fmt"
	"log"
	"os"

	"github.com/healthpal/backend/config"
	httpDelivery "github.com/healthpal/backend/internal/delivery/http"
	"github.com/healthpal/backend/internal/foodlog"
	"github.com/healthpal/backend/internal/infrastructure/cache"
	"github.com/healthpal/backend/internal/infrastructure/gemini"
	"github.com/healthpal/backend/internal/infrastructure/health"
	"github.com/healthpal/backend/internal/infrastructure/kvstore"
	"github.com/healthpal/backend/internal/keystore"
	"github.com/healthpal/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting HealthPal Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Storage path: %s", cfg.Storage.Path)

	// Initialize infrastructure dependencies
	blobs := kvstore.NewFileStore(cfg.Storage.Path)
	keys := keystore.NewStore(blobs)
	logs := foodlog.NewStore(blobs)

	snapshotCache := cache.NewSnapshotCache(cfg.Cache.TTL)
	log.Printf("Snapshot cache TTL: %s", cfg.Cache.TTL)

	healthClient := health.NewClient(cfg.Health.BaseURL)
	log.Printf("Health metrics source: %s", cfg.Health.BaseURL)

	geminiClient := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.Model)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		geminiClient.SetDebug(true)
		log.Printf("Gemini client debug mode enabled")
	}

	if keys.HasAnyConfigured() {
		log.Printf("Gemini API configured: %s (model: %s)", cfg.Gemini.BaseURL, cfg.Gemini.Model)
	} else {
		log.Printf("WARNING: no AI credential configured yet - food scanning will be unavailable until one is saved")
	}

	// Initialize usecase layer
	summaryService := usecase.NewSummaryService(healthClient, snapshotCache, logs)
	scanService := usecase.NewScanService(keys, geminiClient, logs)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(summaryService, scanService, logs, keys, geminiClient)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
