package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the Postgres migrations for the local SQLite mode.
// SQLite has no uuid or numeric(12,2) types; ids are stored as text and
// prices keep NUMERIC affinity so range filters and ordering still work.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'regular' CHECK (role IN ('regular', 'admin')),
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  category TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT carts_user_id_key UNIQUE (user_id)
)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity > 0),
  unit_price NUMERIC NOT NULL CHECK (unit_price >= 0),
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT cart_items_cart_product_key UNIQUE (cart_id, product_id)
)`,
}

// ApplySQLite creates the schema on a SQLite connection.
func ApplySQLite(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if name := conn.Dialector.Name(); name != "sqlite" {
		return fmt.Errorf("sqlite schema cannot be applied to %s", name)
	}
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
