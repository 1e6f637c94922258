package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/evently-client/internal/client/migrations"
	"github.com/dmitrijs2005/evently-client/internal/dbx"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// SQLiteStore is a TieredStore that owns its database handle.
type SQLiteStore struct {
	*TieredStore
	db *sql.DB
}

// Open opens (or creates) the durable session database at path, migrates it
// and returns a store ready for use. Close releases the database.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := dbx.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}

	return &SQLiteStore{TieredStore: NewSQLiteStore(db), db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
