// Package repomanager vends repository implementations bound to a database
// handle and owns schema migrations (via goose) for the dev backend.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/evently-client/internal/dbx"
	"github.com/dmitrijs2005/evently-client/internal/server/migrations"
	"github.com/dmitrijs2005/evently-client/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/evently-client/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RepositoryManager hands out repositories bound to either the pool or a
// transaction, so services can compose them inside dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

// Dialect names the goose dialect of a database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// DialectFor picks the dialect from the DSN: postgres URLs go to pgx,
// everything else is a SQLite path.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// SQLRepositoryManager serves both dialects; the repositories stick to SQL
// that PostgreSQL and SQLite share.
type SQLRepositoryManager struct {
	dialect Dialect
}

func NewSQLRepositoryManager(dialect Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}

func (m *SQLRepositoryManager) Dialect() Dialect {
	return m.dialect
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(m.dialect)); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Open connects to dsn, migrates the schema and returns the pool with a
// manager of the matching dialect.
func Open(ctx context.Context, dsn string) (*sql.DB, *SQLRepositoryManager, error) {
	m := NewSQLRepositoryManager(DialectFor(dsn))

	var (
		db  *sql.DB
		err error
	)
	switch m.dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			err = db.PingContext(ctx)
		}
	default:
		db, err = dbx.OpenSQLite(ctx, dsn)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, nil, fmt.Errorf("open %s database: %w", m.dialect, err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return db, m, nil
}
