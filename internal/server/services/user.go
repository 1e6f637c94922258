// Package services contains the business logic of the dev backend. This file
// implements UserService, which handles registration, login, and
// issuing/rotating JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/common"
	"github.com/dmitrijs2005/evently-client/internal/dbx"
	"github.com/dmitrijs2005/evently-client/internal/server/auth"
	"github.com/dmitrijs2005/evently-client/internal/server/config"
	"github.com/dmitrijs2005/evently-client/internal/server/models"
	"github.com/dmitrijs2005/evently-client/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/evently-client/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
//   - Register: create users with bcrypt password hashes
//   - Login: verify credentials and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
//   - Logout: revoke a refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   bcrypt.DefaultCost,
	}
}

// RefreshToken consumes a refresh token and returns a fresh TokenPair.
// Consuming, loading the user and storing the successor happen in one
// transaction, so a token is honoured at most once even under concurrent
// use. Expired tokens are still consumed and yield
// shared.ErrorRefreshTokenExpired; unknown ones shared.ErrorUnauthorized.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var (
		pair    *TokenPair
		expired bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		token, err := s.repomanager.RefreshTokens(tx).Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, shared.ErrorNotFound) {
				return shared.ErrorUnauthorized
			}
			return fmt.Errorf("error consuming refresh token: %w", err)
		}
		if token.Expires.Before(time.Now()) {
			expired = true
			return nil
		}

		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		pair, err = s.generateTokenPair(ctx, user, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, shared.ErrorRefreshTokenExpired
	}
	return pair, nil
}

// Register creates a new user. The display name defaults to the local part
// of the email.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if name == "" {
		name = common.DisplayName(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: email, Name: name, PasswordHash: string(hash)}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Seed registers every email/password pair that does not exist yet.
func (s *UserService) Seed(ctx context.Context, seeds [][2]string) error {
	for _, pair := range seeds {
		if _, err := s.Register(ctx, pair[0], "", pair[1]); err != nil && !errors.Is(err, shared.ErrorAlreadyExists) {
			return err
		}
	}
	return nil
}

// Login verifies the password against the stored bcrypt hash and, on
// success, returns a new TokenPair.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorUnauthorized
		}
		return nil, shared.ErrorInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, shared.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user, s.db)
}

// Logout revokes refreshToken. Unknown tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Me returns the user behind a validated access token.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return nil, shared.ErrorUnauthorized
		}
		return nil, shared.ErrorInternal
	}
	return user, nil
}

// PurgeExpired drops refresh tokens that can no longer be used.
func (s *UserService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, time.Now())
}

// --- helpers below ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, shared.ErrorInternal
	}
	refresh, err := shared.MakeRandHexString(32)
	if err != nil {
		return nil, shared.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, shared.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
