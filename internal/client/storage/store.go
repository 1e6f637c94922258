package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/evently-client/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evently-client/internal/dbx"
)

// Scope names one of the two storage tiers.
type Scope int

const (
	Durable Scope = iota
	Volatile
)

func (s Scope) String() string {
	switch s {
	case Durable:
		return "durable"
	case Volatile:
		return "volatile"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Op is a single write in a batch: a set, or a delete when Delete is true.
type Op struct {
	Scope  Scope
	Key    string
	Value  []byte
	Delete bool
}

// Set returns an Op storing value under key in scope.
func Set(scope Scope, key string, value []byte) Op {
	return Op{Scope: scope, Key: key, Value: value}
}

// Delete returns an Op removing key from scope.
func Delete(scope Scope, key string) Op {
	return Op{Scope: scope, Key: key, Delete: true}
}

// Store is the key/value abstraction the token store is written against.
type Store interface {
	// Get returns (nil, nil) when key is absent from scope.
	Get(ctx context.Context, scope Scope, key string) ([]byte, error)
	// Apply runs ops as one unit: readers never observe a partially applied batch.
	Apply(ctx context.Context, ops ...Op) error
}

// TieredStore implements Store over two metadata repositories. When db is
// set, durable ops of a batch run inside one SQL transaction before any
// volatile op is touched, so a failed batch leaves both scopes unchanged.
type TieredStore struct {
	mu       sync.RWMutex
	durable  metadata.Repository
	volatile metadata.Repository
	db       *sql.DB
}

// NewMemoryStore keeps both scopes in memory.
func NewMemoryStore() *TieredStore {
	return &TieredStore{
		durable:  metadata.NewMemoryRepository(),
		volatile: metadata.NewMemoryRepository(),
	}
}

// NewSQLiteStore keeps the durable scope in the metadata table of db and the
// volatile scope in memory. The schema must already be migrated.
func NewSQLiteStore(db *sql.DB) *TieredStore {
	return &TieredStore{
		durable:  metadata.NewSQLiteRepository(db),
		volatile: metadata.NewMemoryRepository(),
		db:       db,
	}
}

func (s *TieredStore) Get(ctx context.Context, scope Scope, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repo, err := s.repo(scope)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, key)
}

func (s *TieredStore) Apply(ctx context.Context, ops ...Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var durable, volatile []Op
	for _, op := range ops {
		switch op.Scope {
		case Durable:
			durable = append(durable, op)
		case Volatile:
			volatile = append(volatile, op)
		default:
			return fmt.Errorf("apply %q: unknown %s", op.Key, op.Scope)
		}
	}

	if len(durable) > 0 {
		if s.db != nil {
			err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
				return applyOps(ctx, metadata.NewSQLiteRepository(tx), durable)
			})
			if err != nil {
				return fmt.Errorf("durable batch: %w", err)
			}
		} else if err := applyOps(ctx, s.durable, durable); err != nil {
			return fmt.Errorf("durable batch: %w", err)
		}
	}

	if err := applyOps(ctx, s.volatile, volatile); err != nil {
		return fmt.Errorf("volatile batch: %w", err)
	}
	return nil
}

func (s *TieredStore) repo(scope Scope) (metadata.Repository, error) {
	switch scope {
	case Durable:
		return s.durable, nil
	case Volatile:
		return s.volatile, nil
	default:
		return nil, fmt.Errorf("unknown %s", scope)
	}
}

func applyOps(ctx context.Context, repo metadata.Repository, ops []Op) error {
	for _, op := range ops {
		if op.Delete {
			if err := repo.Delete(ctx, op.Key); err != nil {
				return err
			}
			continue
		}
		if err := repo.Set(ctx, op.Key, op.Value); err != nil {
			return err
		}
	}
	return nil
}
