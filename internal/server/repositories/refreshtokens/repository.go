// Package refreshtokens declares and implements the refresh token store
// of the dev backend.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Consume deletes the token and returns what it held. Of two concurrent
	// callers only the one whose delete removes the row succeeds; the other,
	// like a caller with an absent token, gets shared.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token should not be considered an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired purges tokens that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
