package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the application database settings.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		Driver:           c.Driver,
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// DB is an ent SQL driver plus what is needed to close it.
type DB struct {
	drv    *entsql.Driver
	pool   *pgxpool.Pool // postgres only
	logger *slog.Logger
}

// Open connects to the configured database and wraps it for ent.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case DriverSQLite, "":
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("%w: database driver %q", common.ErrInvalidInput, cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "driver", DriverPostgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database url", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprintf("%d", cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}

	// Wrap pool as *sql.DB for ent
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database", "driver", DriverPostgres)
	return &DB{drv: entsql.OpenDB(dialect.Postgres, db), pool: pool, logger: logger}, nil
}

func openSQLite(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file:invoices.db"
	}
	logger.Info("opening database", "driver", DriverSQLite, "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	if IsMemoryDSN(dsn) {
		// every connection to :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %w", common.ErrDatabase, err)
	}
	return &DB{drv: entsql.OpenDB(dialect.SQLite, db), logger: logger}, nil
}

// IsMemoryDSN reports whether dsn names an in-memory SQLite database.
func IsMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// Driver exposes the ent driver for the repositories.
func (d *DB) Driver() *entsql.Driver {
	return d.drv
}

// Dialect returns dialect.SQLite or dialect.Postgres.
func (d *DB) Dialect() string {
	return d.drv.Dialect()
}

// Close closes the database connections gracefully
func (d *DB) Close() {
	if d == nil {
		return
	}
	d.logger.Info("closing database connections")
	if d.drv != nil {
		if err := d.drv.Close(); err != nil {
			d.logger.Error("failed to close database driver", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings the database.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	d.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.drv.DB().PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", common.ErrDatabase, err)
	}
	d.logger.Debug("database ping successful")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS invoice_file (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_ext TEXT NOT NULL,
		content_hash TEXT NOT NULL UNIQUE,
		pages INTEGER NOT NULL DEFAULT 0,
		method TEXT NOT NULL DEFAULT '',
		ingested_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_page (
		id TEXT PRIMARY KEY,
		file_id TEXT NOT NULL REFERENCES invoice_file(id) ON DELETE CASCADE,
		page INTEGER NOT NULL,
		status TEXT NOT NULL,
		needs_review INTEGER NOT NULL DEFAULT 0,
		issues TEXT NOT NULL DEFAULT '[]',
		error_message TEXT NOT NULL DEFAULT '',
		sku TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		qty INTEGER NOT NULL DEFAULT 0,
		color TEXT NOT NULL DEFAULT '',
		order_no TEXT NOT NULL DEFAULT '',
		ship_to TEXT NOT NULL DEFAULT '',
		seller_name TEXT NOT NULL DEFAULT '',
		seller_gstin TEXT NOT NULL DEFAULT '',
		purchase_order_no TEXT NOT NULL DEFAULT '',
		invoice_no TEXT NOT NULL DEFAULT '',
		order_date TEXT NOT NULL DEFAULT '',
		invoice_date TEXT NOT NULL DEFAULT '',
		total_tax TEXT NOT NULL DEFAULT '0',
		grand_total TEXT NOT NULL DEFAULT '0',
		extracted_at TEXT NOT NULL,
		UNIQUE (file_id, page)
	)`,
	`CREATE TABLE IF NOT EXISTS line_item (
		page_id TEXT NOT NULL REFERENCES invoice_page(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		hsn TEXT NOT NULL DEFAULT '',
		qty TEXT NOT NULL DEFAULT '',
		gross_amount TEXT NOT NULL DEFAULT '0',
		discount TEXT NOT NULL DEFAULT '0',
		taxable_value TEXT NOT NULL DEFAULT '0',
		tax_clause TEXT NOT NULL DEFAULT '',
		total TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (page_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS invoice_page_invoice_no ON invoice_page (invoice_no)`,
}

// Migrate creates the tables when they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := d.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			d.logger.Error("migration failed", "error", err)
			return fmt.Errorf("%w: migrate: %w", common.ErrDatabase, err)
		}
	}
	d.logger.Debug("schema ready", "tables", 3)
	return nil
}
