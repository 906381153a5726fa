package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sales-inventory/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewPostgres(cfg config.DbConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DbName,
		cfg.SSLMode,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return db, nil
}

const productSchema = `CREATE TABLE IF NOT EXISTS products (
	id          UUID PRIMARY KEY,
	name        VARCHAR(200) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price       NUMERIC(12, 2) NOT NULL DEFAULT 0,
	stock       INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const orderSchema = `CREATE TABLE IF NOT EXISTS orders (
	id         UUID PRIMARY KEY,
	product_id UUID NOT NULL,
	quantity   INTEGER NOT NULL CHECK (quantity > 0),
	status     VARCHAR(32) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// MigrateInventory creates the inventory tables when missing.
func MigrateInventory(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, productSchema)
}

// MigrateSales creates the sales tables when missing. Orders reference
// products by id only; the products table lives in the inventory database.
func MigrateSales(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, orderSchema)
}

func migrate(ctx context.Context, db *sql.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
