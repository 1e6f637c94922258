// Package users declares and implements the user repository of the dev backend.
package users

import (
	"context"

	"github.com/dmitrijs2005/evently-client/internal/server/models"
)

type Repository interface {
	// Create inserts user, filling in ID and CreatedAt. A taken email yields
	// shared.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
