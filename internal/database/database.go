// Package database owns the process-wide pgx pool, the schema migrations and the
// translation of driver errors into apperr kinds.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/pos-backoffice/internal/config"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so a query helper can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ DBTX = (*pgxpool.Pool)(nil)
	_ DBTX = (pgx.Tx)(nil)
)

func New(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = int32(cfg.DBMaxConns)
	}
	if cfg.DBMinConns > 0 {
		pcfg.MinConns = int32(cfg.DBMinConns)
	}
	pcfg.MaxConnLifetime = time.Hour
	pcfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS category (
		category_id   BIGSERIAL PRIMARY KEY,
		category_name TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS supplier (
		supplier_id      BIGSERIAL PRIMARY KEY,
		supplier_name    TEXT NOT NULL,
		supplier_contact TEXT NOT NULL DEFAULT '',
		supplier_email   TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS item (
		item_id           BIGSERIAL PRIMARY KEY,
		unit              TEXT NOT NULL,
		description       TEXT NOT NULL,
		price             NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		quantity          INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		reorder_threshold INTEGER NOT NULL DEFAULT 0 CHECK (reorder_threshold >= 0),
		category_id       BIGINT REFERENCES category(category_id) ON DELETE RESTRICT,
		supplier_id       BIGINT REFERENCES supplier(supplier_id) ON DELETE RESTRICT,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS customer (
		customer_id      BIGSERIAL PRIMARY KEY,
		customer_name    TEXT NOT NULL,
		customer_address TEXT NOT NULL,
		customer_email   TEXT NOT NULL,
		customer_number  TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admin (
		admin_id         BIGSERIAL PRIMARY KEY,
		admin_first_name TEXT NOT NULL,
		admin_last_name  TEXT NOT NULL,
		admin_email      TEXT NOT NULL UNIQUE,
		admin_password   TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS "order" (
		order_id          BIGSERIAL PRIMARY KEY,
		customer_id       BIGINT NOT NULL REFERENCES customer(customer_id) ON DELETE RESTRICT,
		customer_name     TEXT NOT NULL,
		admin_name        TEXT NOT NULL,
		order_date        DATE NOT NULL,
		order_status      TEXT NOT NULL CHECK (order_status IN ('pending','processing','shipped','delivered','cancelled')),
		order_total_price NUMERIC(12,2) NOT NULL CHECK (order_total_price >= 0),
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_order_date ON "order"(order_date)`,
	`CREATE TABLE IF NOT EXISTS order_item (
		order_item_id BIGSERIAL PRIMARY KEY,
		order_id      BIGINT NOT NULL REFERENCES "order"(order_id) ON DELETE CASCADE,
		item_id       BIGINT NOT NULL REFERENCES item(item_id) ON DELETE RESTRICT,
		quantity      INTEGER NOT NULL CHECK (quantity > 0),
		unit_price    NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
		subtotal      NUMERIC(14,2) NOT NULL CHECK (subtotal >= 0),
		description   TEXT NOT NULL DEFAULT '',
		unit          TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_item_order_id ON order_item(order_id)`,
	`CREATE TABLE IF NOT EXISTS system_log (
		log_id          BIGSERIAL PRIMARY KEY,
		log_description TEXT NOT NULL,
		log_created_by  TEXT NOT NULL,
		log_datetime    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_system_log_datetime ON system_log(log_datetime)`,
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	for _, m := range migrations {
		if _, err := db.Exec(ctx, m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
