package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ordonezjosue/wheeltracker/internal/api"
	"github.com/ordonezjosue/wheeltracker/internal/config"
	"github.com/ordonezjosue/wheeltracker/internal/database"
	"github.com/ordonezjosue/wheeltracker/internal/repository"
	"github.com/ordonezjosue/wheeltracker/internal/rowstore"
	"github.com/ordonezjosue/wheeltracker/internal/service"
	"github.com/ordonezjosue/wheeltracker/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create row store and repository
	store, err := rowstore.NewSQLiteStore(db, cfg.Database.Sheet, repository.Columns())
	if err != nil {
		log.Fatalf("Failed to open sheet %q: %v", cfg.Database.Sheet, err)
	}
	tradeRepo := repository.NewTradeRepository(store)

	// Create services
	prices := service.NewPriceCache(yahoo.NewFinanceClient(), cfg.Prices.CacheTTL)
	systemService := service.NewSystemService(db)
	journalService := service.NewJournalService(tradeRepo, prices)
	wheelService := service.NewWheelService(tradeRepo)
	importService := service.NewImportService(tradeRepo)

	// Refresh persisted prices for open positions on a schedule
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Prices.RefreshSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		count, err := journalService.RefreshOpenPrices(ctx)
		if err != nil {
			log.Printf("Price refresh failed: %v", err)
			return
		}
		log.Printf("Refreshed prices for %d open positions", count)
	})
	if err != nil {
		log.Fatalf("Invalid price refresh schedule %q: %v", cfg.Prices.RefreshSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(api.Services{
		System:  systemService,
		Journal: journalService,
		Wheel:   wheelService,
		Import:  importService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
