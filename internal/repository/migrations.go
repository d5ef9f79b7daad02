package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is an ordered list of idempotent DDL statements. Ids are 32-bit
// columns because the graphs expose them as GraphQL Int.
type Schema []string

var productsTable = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		name VARCHAR(500) NOT NULL,
		price NUMERIC NOT NULL DEFAULT 0,
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		CONSTRAINT products_name_key UNIQUE (name),
		CONSTRAINT products_name_length CHECK (char_length(name) BETWEEN 3 AND 500),
		CONSTRAINT products_price_positive CHECK (price >= 0),
		CONSTRAINT products_status_valid CHECK (status IN ('active', 'inactive'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_name_fulltext ON products USING GIN (to_tsvector('english', name))`,
	`CREATE INDEX IF NOT EXISTS idx_products_status_id ON products (status, id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_status_price ON products (status, price)`,
}

var imagesIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_images_priority ON images (priority)`,
	`CREATE INDEX IF NOT EXISTS idx_images_product_id ON images (product_id)`,
}

// ProductsSchema is owned by product-service.
var ProductsSchema = Schema(productsTable)

// ImagesSchema is owned by image-service. product_id is a plain column here,
// the products table lives in another database.
var ImagesSchema = Schema(append([]string{
	`CREATE TABLE IF NOT EXISTS images (
		id SERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 100,
		product_id INTEGER NOT NULL,
		CONSTRAINT images_priority_range CHECK (priority BETWEEN 0 AND 100),
		CONSTRAINT images_product_id_url_key UNIQUE (product_id, url)
	)`,
}, imagesIndexes...))

// CatalogSchema backs the monolith: images reference products and are
// removed with them.
var CatalogSchema = Schema(append(append([]string{}, productsTable...), append([]string{
	`CREATE TABLE IF NOT EXISTS images (
		id SERIAL PRIMARY KEY,
		url TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 100,
		product_id INTEGER NOT NULL REFERENCES products (id) ON DELETE CASCADE,
		CONSTRAINT images_priority_range CHECK (priority BETWEEN 0 AND 100)
	)`,
}, imagesIndexes...)...))

func Migrate(ctx context.Context, db *sqlx.DB, schema Schema) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}
