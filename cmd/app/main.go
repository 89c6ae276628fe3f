package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"papertrade/configs"
	"papertrade/internal/database"
	delivery "papertrade/internal/delivery/http"
	"papertrade/internal/infra"
	"papertrade/internal/repository"
	"papertrade/internal/service"
	"papertrade/internal/usecase"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration
	cfg := configs.Load()

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional Redis quote cache
	var cache *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		cache = redis.NewClient(opts)
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
		log.Println("[OK] Redis quote cache enabled")
	} else {
		log.Println("Redis not configured, quote caching disabled")
	}

	// Initialize repositories
	ledger := repository.NewLedgerRepository(db)
	priceHistory := repository.NewPriceHistoryRepository(db)

	// Initialize services
	quoteService := service.NewQuoteService(cfg.Quotes.BaseURL, cfg.Quotes.APIToken, cache, cfg.Quotes.CacheTTL)
	authService := service.NewAuthService(ledger, cfg.Trading.SeedCash)
	tradeService := usecase.NewTradeService(ledger, quoteService)

	// Price snapshot scheduler
	scheduler := infra.NewScheduler(cfg.Trading.SnapshotSpec, ledger, quoteService, priceHistory)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start price snapshot scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Initialize HTTP server
	e := echo.New()
	e.HideBanner = true

	delivery.SetupRoutes(e, &delivery.RouterConfig{
		AuthHandler:  delivery.NewAuthHandler(authService),
		TradeHandler: delivery.NewTradeHandler(tradeService),
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("PaperTrade starting on %s (env: %s)", addr, cfg.Server.Env)
	log.Printf("Seed cash for new accounts: %s", cfg.Trading.SeedCash.StringFixed(2))

	// Run server in goroutine
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}
