package conn

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Retry controls how often a connection is attempted before giving up
type Retry struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry is used at process start
var DefaultRetry = Retry{Attempts: 5, Delay: 2 * time.Second}

// PostgresDSN builds the connection string from the DB_* settings
func PostgresDSN(cfg *config.AppConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode, cfg.DBZone)
}

// ConnectPostgres opens a gorm connection to Postgres, retrying until it answers a ping
func ConnectPostgres(ctx context.Context, cfg *config.AppConfig, retry Retry) (*gorm.DB, error) {
	dsn := PostgresDSN(cfg)

	logLevel := gormlogger.Warn
	if !cfg.IsProduction() {
		logLevel = gormlogger.Info
	}

	var lastErr error
	for attempt := 1; attempt <= retry.Attempts; attempt++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(logLevel),
		})
		if err == nil {
			err = configurePool(ctx, db)
			if err == nil {
				log.Printf("Postgres connected (%s:%s/%s)", cfg.DBHost, cfg.DBPort, cfg.DBName)
				return db, nil
			}
			closeGorm(db)
		}

		lastErr = err
		log.Printf("Attempt %d: failed to connect to Postgres: %v", attempt, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Delay):
		}
	}

	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", retry.Attempts, lastErr)
}

func configurePool(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}

func closeGorm(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// CloseDatabase closes the connection pool behind db
func CloseDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Println("Failed to get database handle:", err.Error())
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Println("Failed to close connection from the database:", err.Error())
		return
	}
	log.Println("DB Connection Closed")
}

// ConnectRedis returns a client for REDIS_ADDR, or nil when the cache is disabled
func ConnectRedis(ctx context.Context, cfg *config.AppConfig) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
