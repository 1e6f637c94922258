package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/dbx"
	"github.com/dmitrijs2005/evently-client/internal/server/models"
	"github.com/dmitrijs2005/evently-client/internal/shared"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	query :=
		`INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
         VALUES ($1, $2, $3, $4, $5)`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, token, now.Add(validity), now)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

// Consume reads the token and then deletes it. Only the caller whose DELETE
// removes the row wins; a concurrent caller that read the same row sees
// zero rows affected and gets shared.ErrorNotFound.
func (r *SQLRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	query :=
		`SELECT id, user_id, expires_at FROM refresh_tokens
		 WHERE token = $1`

	rt := &models.RefreshToken{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.ID, &rt.UserID, &rt.Expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, rt.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return nil, shared.ErrorNotFound
	}

	return rt, nil
}

func (r *SQLRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`

	res, err := r.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
