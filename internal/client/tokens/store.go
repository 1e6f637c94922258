// Package tokens owns where the access token, its expiry, the "remember me"
// flag and the cached user summary live, presenting one logical session
// record regardless of which storage scope holds it.
package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/client/models"
	"github.com/dmitrijs2005/evently-client/internal/client/storage"
	"github.com/dmitrijs2005/evently-client/internal/common"
)

var ownedKeys = []string{
	common.AccessTokenKey,
	common.TokenExpiryKey,
	common.RememberMeKey,
	common.UserDataKey,
}

const rememberMeValue = "true"

// ErrNoSession means there is no stored session to update.
var ErrNoSession = errors.New("no stored session")

// Record is the logical session as seen through the active scope.
type Record struct {
	AccessToken string
	ExpiresAt   time.Time
	Mode        Mode
	User        *models.UserSummary
}

// Store is the token store. All methods are safe for concurrent use; every
// write is a single storage batch, serialized with every other call.
type Store struct {
	mu    sync.Mutex
	store storage.Store
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(store storage.Store, opts ...Option) *Store {
	s := &Store{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetAccessToken stores token in the scope implied by mode and removes any
// token from the other scope.
func (s *Store) SetAccessToken(ctx context.Context, token string, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Apply(ctx, s.tokenOps(token, mode)...); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	return nil
}

// ReplaceAccessToken rewrites token and expiry in place, keeping the
// persistence mode of the current session. With no token stored in either
// scope, e.g. after a logout that raced a refresh, nothing is written and
// ErrNoSession is returned.
func (s *Store) ReplaceAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, scope := range []storage.Scope{storage.Durable, storage.Volatile} {
		v, err := s.store.Get(ctx, scope, common.AccessTokenKey)
		if err != nil {
			return fmt.Errorf("read access token: %w", err)
		}
		if len(v) > 0 {
			return s.replace(ctx, token)
		}
	}
	return ErrNoSession
}

func (s *Store) replace(ctx context.Context, token string) error {
	mode, err := s.mode(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Apply(ctx, s.tokenOps(token, mode)...); err != nil {
		return fmt.Errorf("replace access token: %w", err)
	}
	return nil
}

// SetUserData caches user in the scope implied by mode.
func (s *Store) SetUserData(ctx context.Context, user models.UserSummary, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := userOps(user, mode)
	if err != nil {
		return err
	}
	if err := s.store.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("store user data: %w", err)
	}
	return nil
}

// SaveSession writes token, expiry, mode flag and user in one batch, so a
// login either lands completely or not at all.
func (s *Store) SaveSession(ctx context.Context, token string, user models.UserSummary, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := userOps(user, mode)
	if err != nil {
		return err
	}
	ops = append(s.tokenOps(token, mode), ops...)

	if err := s.store.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// AccessToken returns the token of the active scope, or "" when none is stored.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, err := s.mode(ctx)
	if err != nil {
		return "", err
	}
	v, err := s.store.Get(ctx, mode.scope(), common.AccessTokenKey)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	return string(v), nil
}

// IsRememberMe reports whether the durable "remember me" flag is set.
func (s *Store) IsRememberMe(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, err := s.mode(ctx)
	return mode == ModeRemembered, err
}

// IsTokenExpired is true when no expiry is recorded or the expiry is less
// than common.ExpiryBuffer away.
func (s *Store) IsTokenExpired(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok, err := s.expiresAt(ctx)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return !s.now().Before(expiresAt.Add(-common.ExpiryBuffer)), nil
}

// TimeUntilExpiry returns max(0, expiresAt-now), or 0 with no expiry recorded.
func (s *Store) TimeUntilExpiry(ctx context.Context) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok, err := s.expiresAt(ctx)
	if err != nil || !ok {
		return 0, err
	}
	if d := expiresAt.Sub(s.now()); d > 0 {
		return d, nil
	}
	return 0, nil
}

// UserData returns the cached user, or nil when none is stored. A payload
// that does not decode wipes the whole session and yields
// common.ErrMalformedStoredData.
func (s *Store) UserData(ctx context.Context) (*models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.userData(ctx)
}

// Load reads the whole session record. Record.AccessToken is empty when no
// session is stored.
func (s *Store) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mode, err := s.mode(ctx)
	if err != nil {
		return Record{}, err
	}
	token, err := s.store.Get(ctx, mode.scope(), common.AccessTokenKey)
	if err != nil {
		return Record{}, fmt.Errorf("read access token: %w", err)
	}
	expiresAt, _, err := s.expiresAt(ctx)
	if err != nil {
		return Record{}, err
	}
	user, err := s.userData(ctx)
	if err != nil {
		return Record{}, err
	}

	return Record{AccessToken: string(token), ExpiresAt: expiresAt, Mode: mode, User: user}, nil
}

// ClearAll removes every key this store owns from both scopes.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearAll(ctx)
}

func (s *Store) clearAll(ctx context.Context) error {
	ops := make([]storage.Op, 0, len(ownedKeys)*2)
	for _, key := range ownedKeys {
		ops = append(ops, storage.Delete(storage.Durable, key), storage.Delete(storage.Volatile, key))
	}
	if err := s.store.Apply(ctx, ops...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) mode(ctx context.Context) (Mode, error) {
	v, err := s.store.Get(ctx, storage.Durable, common.RememberMeKey)
	if err != nil {
		return ModeSession, fmt.Errorf("read remember-me flag: %w", err)
	}
	return ModeFor(string(v) == rememberMeValue), nil
}

func (s *Store) expiresAt(ctx context.Context) (time.Time, bool, error) {
	mode, err := s.mode(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	v, err := s.store.Get(ctx, mode.scope(), common.TokenExpiryKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read token expiry: %w", err)
	}
	if len(v) == 0 {
		return time.Time{}, false, nil
	}
	ms, err := strconv.ParseInt(string(v), 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *Store) userData(ctx context.Context) (*models.UserSummary, error) {
	mode, err := s.mode(ctx)
	if err != nil {
		return nil, err
	}
	v, err := s.store.Get(ctx, mode.scope(), common.UserDataKey)
	if err != nil {
		return nil, fmt.Errorf("read user data: %w", err)
	}
	if len(v) == 0 {
		return nil, nil
	}

	var user *models.UserSummary
	if err := json.Unmarshal(v, &user); err != nil {
		if clearErr := s.clearAll(ctx); clearErr != nil {
			return nil, clearErr
		}
		return nil, fmt.Errorf("%w: user data: %v", common.ErrMalformedStoredData, err)
	}
	return user, nil
}

func (s *Store) tokenOps(token string, mode Mode) []storage.Op {
	expiresAt := s.now().Add(common.FallbackTokenLifetime)
	if claims, ok := Decode(token); ok && !claims.ExpiresAt.IsZero() {
		expiresAt = claims.ExpiresAt
	}
	expiry := []byte(strconv.FormatInt(expiresAt.UnixMilli(), 10))

	ops := []storage.Op{
		storage.Set(mode.scope(), common.AccessTokenKey, []byte(token)),
		storage.Set(mode.scope(), common.TokenExpiryKey, expiry),
		storage.Delete(mode.otherScope(), common.AccessTokenKey),
		storage.Delete(mode.otherScope(), common.TokenExpiryKey),
	}
	if mode == ModeRemembered {
		return append(ops, storage.Set(storage.Durable, common.RememberMeKey, []byte(rememberMeValue)))
	}
	return append(ops, storage.Delete(storage.Durable, common.RememberMeKey))
}

func userOps(user models.UserSummary, mode Mode) ([]storage.Op, error) {
	b, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("encode user data: %w", err)
	}
	return []storage.Op{
		storage.Set(mode.scope(), common.UserDataKey, b),
		storage.Delete(mode.otherScope(), common.UserDataKey),
	}, nil
}
