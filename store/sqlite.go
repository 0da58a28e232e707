package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mstgnz/funnelpay/domain"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clients (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	razorpay_key_id TEXT,
	razorpay_key_secret TEXT,
	cashfree_app_id TEXT,
	cashfree_secret_key TEXT,
	cashfree_env TEXT
);

CREATE TABLE IF NOT EXISTS prices (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL REFERENCES clients(id),
	product_name TEXT NOT NULL,
	amount_paise INTEGER NOT NULL CHECK (amount_paise > 0),
	currency TEXT NOT NULL DEFAULT 'INR',
	thank_you_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS funnel_routes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hostname TEXT NOT NULL,
	path_prefix TEXT NOT NULL,
	client_id TEXT NOT NULL REFERENCES clients(id),
	price_id TEXT NOT NULL REFERENCES prices(id),
	gateway TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_funnel_routes_lookup ON funnel_routes(hostname, path_prefix, is_active);
`

// SQLiteStore keeps the tables in a local SQLite file
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, path: dbPath}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA temp_store = memory;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	log.Printf("SQLite store initialized at: %s", dbPath)
	return s, nil
}

// retryOperation retries op while SQLite reports the database as busy
func (s *SQLiteStore) retryOperation(op func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "SQLITE_BUSY") && !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		if attempt < maxRetries {
			backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
			log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

func (s *SQLiteStore) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := s.retryOperation(func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, name,
				COALESCE(razorpay_key_id, ''), COALESCE(razorpay_key_secret, ''),
				COALESCE(cashfree_app_id, ''), COALESCE(cashfree_secret_key, ''),
				COALESCE(cashfree_env, '')
			FROM clients WHERE id = ?`, id).
			Scan(&t.ID, &t.Name, &t.RazorpayKeyID, &t.RazorpayKeySecret,
				&t.CashfreeAppID, &t.CashfreeSecretKey, &t.CashfreeEnv)
	}, 3)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("client", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load client %s: %w", id, err)
	}
	return &t, nil
}

func (s *SQLiteStore) GetPrice(ctx context.Context, id string) (*domain.Price, error) {
	var p domain.Price
	err := s.retryOperation(func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, client_id, product_name, amount_paise, currency, thank_you_url
			FROM prices WHERE id = ?`, id).
			Scan(&p.ID, &p.TenantID, &p.ProductName, &p.AmountPaise, &p.Currency, &p.ThankYouURL)
	}, 3)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("price", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load price %s: %w", id, err)
	}
	return &p, nil
}

func (s *SQLiteStore) FindActiveRoute(ctx context.Context, hostname, pathPrefix string) (*domain.Route, error) {
	var (
		r       domain.Route
		gateway string
	)
	err := s.retryOperation(func() error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, hostname, path_prefix, client_id, price_id, COALESCE(gateway, ''), is_active, created_at
			FROM funnel_routes
			WHERE hostname = ? AND path_prefix = ? AND is_active = 1
			ORDER BY id LIMIT 1`, hostname, pathPrefix).
			Scan(&r.ID, &r.Hostname, &r.PathPrefix, &r.TenantID, &r.PriceID, &gateway, &r.IsActive, &r.CreatedAt)
	}, 3)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("route", hostname+pathPrefix)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find route %s%s: %w", hostname, pathPrefix, err)
	}
	r.Gateway = domain.Gateway(gateway)
	return &r, nil
}

func (s *SQLiteStore) SaveTenant(ctx context.Context, t *domain.Tenant) error {
	return s.retryOperation(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO clients (id, name, razorpay_key_id, razorpay_key_secret, cashfree_app_id, cashfree_secret_key, cashfree_env)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				razorpay_key_id = excluded.razorpay_key_id,
				razorpay_key_secret = excluded.razorpay_key_secret,
				cashfree_app_id = excluded.cashfree_app_id,
				cashfree_secret_key = excluded.cashfree_secret_key,
				cashfree_env = excluded.cashfree_env`,
			t.ID, t.Name, t.RazorpayKeyID, t.RazorpayKeySecret, t.CashfreeAppID, t.CashfreeSecretKey, t.CashfreeEnv)
		return err
	}, 3)
}

func (s *SQLiteStore) SavePrice(ctx context.Context, p *domain.Price) error {
	return s.retryOperation(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO prices (id, client_id, product_name, amount_paise, currency, thank_you_url)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				client_id = excluded.client_id,
				product_name = excluded.product_name,
				amount_paise = excluded.amount_paise,
				currency = excluded.currency,
				thank_you_url = excluded.thank_you_url`,
			p.ID, p.TenantID, p.ProductName, p.AmountPaise, p.Currency, p.ThankYouURL)
		return err
	}, 3)
}

// SaveRoute inserts r, or updates it when r.ID is set. A new id is written back to r.
func (s *SQLiteStore) SaveRoute(ctx context.Context, r *domain.Route) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return s.retryOperation(func() error {
		if r.ID != 0 {
			_, err := s.db.ExecContext(ctx, `
				INSERT INTO funnel_routes (id, hostname, path_prefix, client_id, price_id, gateway, is_active, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					hostname = excluded.hostname,
					path_prefix = excluded.path_prefix,
					client_id = excluded.client_id,
					price_id = excluded.price_id,
					gateway = excluded.gateway,
					is_active = excluded.is_active`,
				r.ID, r.Hostname, r.PathPrefix, r.TenantID, r.PriceID, string(r.Gateway), r.IsActive, r.CreatedAt)
			return err
		}

		res, err := s.db.ExecContext(ctx, `
			INSERT INTO funnel_routes (hostname, path_prefix, client_id, price_id, gateway, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Hostname, r.PathPrefix, r.TenantID, r.PriceID, string(r.Gateway), r.IsActive, r.CreatedAt)
		if err != nil {
			return err
		}
		r.ID, err = res.LastInsertId()
		return err
	}, 3)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
