// Command seed loads clients, prices and funnel routes from a JSON file into the
// configured store. It is meant for local and staging databases.
//
//	go run ./cmd/seed -file seed.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mstgnz/funnelpay/infra/config"
	"github.com/mstgnz/funnelpay/infra/conn"
	"github.com/mstgnz/funnelpay/store"
)

type seedStore interface {
	store.Writer
	Close() error
}

func main() {
	file := flag.String("file", "seed.json", "path to the seed file")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file loaded, using process environment: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fh, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open seed file: %v", err)
	}
	fixture, err := LoadFixture(fh)
	_ = fh.Close()
	if err != nil {
		log.Fatal(err)
	}

	st, err := openWriter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	sum, err := Apply(ctx, st, fixture)
	if err != nil {
		log.Fatalf("Seeding stopped: %v", err)
	}
	log.Printf("Seeded %d clients, %d prices, %d funnel routes into %s store",
		sum.Clients, sum.Prices, sum.Routes, cfg.StoreDriver)
}

// openWriter opens the store named by STORE_DRIVER. Postgres tables are created
// when missing.
func openWriter(ctx context.Context, cfg *config.AppConfig) (seedStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := conn.ConnectPostgres(ctx, cfg, conn.DefaultRetry)
		if err != nil {
			return nil, err
		}
		st := store.NewGormStore(db)
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	case config.DriverSQLite, "":
		st, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
