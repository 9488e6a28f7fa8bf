package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate creates the schema required by the dairy stores.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS rates (
            id INTEGER PRIMARY KEY CHECK (id = 0),
            buying_fat_rate REAL NOT NULL DEFAULT 0,
            selling_fat_rate REAL NOT NULL DEFAULT 0,
            milk_resale_rate REAL NOT NULL DEFAULT 0,
            updated_at INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS members (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            join_date INTEGER NOT NULL,
            history TEXT NOT NULL DEFAULT '[]'
        );`,
		`CREATE INDEX IF NOT EXISTS idx_members_name ON members(name);`,
		`CREATE TABLE IF NOT EXISTS entries (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            fat REAL NOT NULL,
            milk_qty REAL NOT NULL,
            amount_to_pay REAL NOT NULL,
            timestamp INTEGER NOT NULL,
            is_night INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS entry_sessions (
            id TEXT PRIMARY KEY,
            records TEXT NOT NULL DEFAULT '[]',
            factory_entry TEXT,
            timestamp INTEGER NOT NULL,
            is_night INTEGER NOT NULL DEFAULT 0
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
