// Package dbtest opens throwaway sqlite databases for service-level tests.
// The schema mirrors the Postgres migrations closely enough for the gorm
// models; production schema changes still go through pkg/migrate.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vastralane/storefront-backend/pkg/config"
	"github.com/vastralane/storefront-backend/pkg/db"
)

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'customer',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		price NUMERIC NOT NULL,
		sku TEXT NOT NULL UNIQUE,
		stock INTEGER NOT NULL DEFAULT 0,
		sold INTEGER NOT NULL DEFAULT 0,
		rating NUMERIC NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		sizes TEXT,
		images TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE reviews (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		author_id TEXT NOT NULL,
		rating INTEGER NOT NULL,
		comment TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (product_id, author_id)
	)`,
	`CREATE TABLE addresses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		full_name TEXT NOT NULL,
		phone TEXT NOT NULL,
		address_line1 TEXT NOT NULL,
		address_line2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		pin_code TEXT NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE cart_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		size TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (user_id, product_id, size)
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Processing',
		payment_method TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		subtotal NUMERIC NOT NULL,
		shipping_fee NUMERIC NOT NULL DEFAULT 0,
		discount NUMERIC NOT NULL DEFAULT 0,
		total NUMERIC NOT NULL,
		shipping_address TEXT NOT NULL,
		payment_details TEXT,
		gateway_order_id TEXT,
		delivered_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		name TEXT NOT NULL,
		image_url TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL,
		unit_price NUMERIC NOT NULL,
		line_total NUMERIC NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE wishlist_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, product_id)
	)`,
}

// Open boots a fresh sqlite-backed client in a per-test temp directory and
// creates the storefront tables. The connection is closed on test cleanup.
func Open(t *testing.T) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "storefront.db"),
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	for _, ddl := range schema {
		if err := client.DB().Exec(ddl).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return client
}
