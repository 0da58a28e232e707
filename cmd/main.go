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

	"github.com/joho/godotenv"
	"github.com/mstgnz/funnelpay/checkout"
	"github.com/mstgnz/funnelpay/handler"
	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/mstgnz/funnelpay/infra/conn"
	"github.com/mstgnz/funnelpay/infra/logger"
	"github.com/mstgnz/funnelpay/infra/middle"
	"github.com/mstgnz/funnelpay/infra/opensearch"
	"github.com/mstgnz/funnelpay/infra/tracing"
	"github.com/mstgnz/funnelpay/provider"
	"github.com/mstgnz/funnelpay/router"
	"github.com/mstgnz/funnelpay/routing"
	"github.com/mstgnz/funnelpay/store"
	"github.com/redis/go-redis/v9"

	// Import for side-effect registration
	_ "github.com/mstgnz/funnelpay/provider/cashfree"
	_ "github.com/mstgnz/funnelpay/provider/razorpay"
)

const version = "1.0.0"

func main() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.OTLPEndpoint, "funnelpay")
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	// Initialize OpenSearch client and logger
	var openSearchLogger *opensearch.Logger
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}

	logger.InitGlobalLogger(openSearchLogger, cfg.LoggingLevel)
	defer logger.Sync()

	st, rdb, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open store", err)
	}

	dispatcher, err := provider.NewDispatcher(provider.DefaultRegistry, config.NewProviderConfig(cfg))
	if err != nil {
		logger.Fatal("Failed to initialize payment providers", err)
	}

	service := checkout.NewService(routing.NewResolver(st), st, dispatcher)

	// a typed nil would defeat the middleware's nil check
	var checkoutLog middle.CheckoutLogger
	if openSearchLogger != nil {
		checkoutLog = openSearchLogger
	}

	handlers := router.Handlers{
		Order:  handler.NewOrderHandler(service),
		Health: handler.NewHealthHandler(st, dispatcher, cfg.Environment, version),
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(handlers, router.Options{
			CheckoutLog:    checkoutLog,
			RequestTimeout: cfg.GatewayTimeout + 15*time.Second,
		}),
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.GatewayTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	logger.Info("API is running on " + cfg.Port)

	// Block until a signal is received
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", err)
	}
	if err := st.Close(); err != nil {
		logger.Error("Store close failed", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("Redis close failed", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Tracing shutdown failed", err)
	}
}

// openStore opens the configured store and puts the Redis cache in front of it when
// REDIS_ADDR is set. The Redis client is returned so it can be closed on shutdown.
func openStore(ctx context.Context, cfg *config.AppConfig) (store.Store, *redis.Client, error) {
	var st store.Store

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := conn.ConnectPostgres(ctx, cfg, conn.DefaultRetry)
		if err != nil {
			return nil, nil, err
		}
		st = store.NewGormStore(db)
	case config.DriverSQLite, "":
		sqlite, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		st = sqlite
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	rdb, err := conn.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, serving without cache: " + err.Error())
		return st, nil, nil
	}
	if rdb == nil {
		return st, nil, nil
	}

	logger.Info("Redis cache enabled")
	return store.NewCachedStore(st, rdb, cfg.CacheTTL), rdb, nil
}
