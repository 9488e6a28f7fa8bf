// Package sqlite stores dairy data in an embedded SQLite file through sqlx.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mamadbah2/dairy/internal/repository"
)

// Connect opens a SQLite database using the provided DSN and applies migrations.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewStores opens dsn and returns the sqlite backed stores.
func NewStores(ctx context.Context, dsn string) (*repository.Stores, error) {
	db, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return repository.NewStores(
		&RateStore{db: db},
		&MemberStore{db: db},
		&RecordStore{db: db},
		&SessionStore{db: db},
		func(context.Context) error { return db.Close() },
	), nil
}
