// Package services contains application services for the Evently client.
// This file defines the authentication service: login, logout and the
// session bootstrap run once at start-up.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/evently-client/internal/client/client"
	"github.com/dmitrijs2005/evently-client/internal/client/models"
	"github.com/dmitrijs2005/evently-client/internal/client/session"
	"github.com/dmitrijs2005/evently-client/internal/client/tokens"
	"github.com/dmitrijs2005/evently-client/internal/common"
	"github.com/dmitrijs2005/evently-client/internal/logging"
	"github.com/google/uuid"
)

// Result is what every auth operation hands back to the front end. No
// operation returns a Go error; Err carries the sentinel from package common
// when there is one.
type Result struct {
	Success bool
	Message string
	Err     error
}

func failure(msg string, err error) Result {
	return Result{Message: msg, Err: err}
}

// AuthService coordinates the backend client, the token store and the
// observable session.
//
// Contract:
//   - Login: authenticate and persist the session in the chosen mode.
//   - Logout: end the session, but only when the server can confirm it.
//   - Bootstrap: decide at start-up whether a stored session survives.
type AuthService struct {
	client  client.Client
	tokens  *tokens.Store
	session *session.Session
	log     logging.Logger
	newID   func() string
}

// NewAuthService constructs an AuthService over the given collaborators.
func NewAuthService(c client.Client, store *tokens.Store, sess *session.Session, log logging.Logger) *AuthService {
	return &AuthService{
		client:  c,
		tokens:  store,
		session: sess,
		log:     log.With("component", "auth"),
		newID:   uuid.NewString,
	}
}

// Session returns the observable session this service updates.
func (a *AuthService) Session() *session.Session {
	return a.session
}

// Login authenticates against the backend. On success the token and a user
// summary derived from the email are stored together in the scope implied
// by rememberMe. A rejected login wipes any stored session.
func (a *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) Result {
	a.session.SetLoading(true)
	defer a.session.SetLoading(false)

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrBackendRejected) {
			a.clear(ctx)
			msg := client.MessageOf(err)
			if msg == "" {
				msg = MsgLoginFailed
			}
			a.log.Info(ctx, "login rejected", "email", email)
			return failure(msg, err)
		}
		msg, kind := a.client.Describe(ctx, err)
		a.log.Warn(ctx, "login failed", "error", err)
		return failure(msg, kind)
	}

	user := a.userFor(token, email)
	mode := tokens.ModeFor(rememberMe)
	if err := a.tokens.SaveSession(ctx, token, user, mode); err != nil {
		a.log.Error(ctx, "store session", "error", err)
		a.clear(ctx)
		return failure(MsgLoginFailed, err)
	}

	a.session.SetUser(&user)
	a.log.Info(ctx, "logged in", "user_id", user.ID, "mode", mode)
	return Result{Success: true}
}

// Logout ends the session. With a stored token the server must answer the
// reachability probe first; an unreachable server leaves the local session
// untouched. The backend logout call itself is best effort.
func (a *AuthService) Logout(ctx context.Context) Result {
	token, err := a.tokens.AccessToken(ctx)
	if err != nil {
		a.log.Error(ctx, "read access token", "error", err)
		return failure(MsgLogoutFailed, err)
	}

	if token != "" {
		if err := a.client.Ping(ctx); err != nil {
			a.log.Warn(ctx, "logout refused, server unreachable", "error", err)
			return failure(MsgLogoutUnreachable, common.ErrUnavailable)
		}
		if err := a.client.Logout(ctx, token); err != nil {
			a.log.Warn(ctx, "backend logout failed", "error", err)
		}
	}

	a.clear(ctx)
	a.log.Info(ctx, "logged out")
	return Result{Success: true}
}

// Bootstrap restores or discards the stored session at start-up. Success
// reports whether the process ends up authenticated; Err is set when state
// had to be discarded because of a failure (refresh rejected, corrupt data).
//
// Session-only logins never survive a start while the server is reachable.
// If it is not, the session is kept, since an expired session cannot be
// told apart from a network outage. Remembered sessions are restored,
// refreshing the token once if it has expired.
func (a *AuthService) Bootstrap(ctx context.Context) Result {
	a.session.SetLoading(true)
	defer a.session.SetLoading(false)

	user, err := a.bootstrap(ctx)
	if err != nil {
		a.log.Warn(ctx, "stored session discarded", "error", err)
		a.clear(ctx)
		if errors.Is(err, common.ErrSessionExpired) {
			return failure(client.MsgSessionExpired, err)
		}
		return failure(MsgSessionDiscarded, err)
	}
	if user == nil {
		a.clear(ctx)
		return Result{}
	}

	a.session.SetUser(user)
	a.log.Info(ctx, "session restored", "user_id", user.ID)
	return Result{Success: true}
}

// bootstrap returns the user to restore, or nil to end unauthenticated.
func (a *AuthService) bootstrap(ctx context.Context) (*models.UserSummary, error) {
	rec, err := a.tokens.Load(ctx)
	if err != nil {
		return nil, err
	}

	if rec.Mode == tokens.ModeSession {
		if rec.AccessToken == "" {
			// The access token went with the last process, but its refresh
			// cookie may still be on disk.
			if a.client.HasRefreshCookie() {
				a.revokeRefreshCookie(ctx)
			}
			return nil, nil
		}
		if err := a.client.Ping(ctx); err != nil {
			a.log.Info(ctx, "server unreachable, keeping session-only login", "error", err)
			return rec.User, nil
		}
		if err := a.client.Logout(ctx, rec.AccessToken); err != nil {
			a.log.Warn(ctx, "backend logout failed", "error", err)
		}
		return nil, nil
	}

	if rec.AccessToken == "" || rec.User == nil {
		return nil, nil
	}

	expired, err := a.tokens.IsTokenExpired(ctx)
	if err != nil {
		return nil, err
	}
	if expired && !a.client.Refresh(ctx) {
		return nil, common.ErrSessionExpired
	}
	return rec.User, nil
}

// userFor synthesizes the user summary, since the login answer carries none.
func (a *AuthService) userFor(token, email string) models.UserSummary {
	id := ""
	if claims, ok := tokens.Decode(token); ok {
		id = claims.UserID
		if id == "" {
			id = claims.Subject
		}
	}
	if id == "" {
		id = a.newID()
	}
	return models.UserSummary{ID: id, Name: common.DisplayName(email), Email: email}
}

// clear wipes the stored session and marks the session unauthenticated.
// revokeRefreshCookie asks the backend to drop the refresh token behind a
// leftover cookie. The caller clears the jar either way.
func (a *AuthService) revokeRefreshCookie(ctx context.Context) {
	if err := a.client.Ping(ctx); err != nil {
		a.log.Info(ctx, "server unreachable, dropping refresh cookie unrevoked", "error", err)
		return
	}
	if err := a.client.Logout(ctx, ""); err != nil {
		a.log.Warn(ctx, "backend logout failed", "error", err)
	}
}

func (a *AuthService) clear(ctx context.Context) {
	if err := a.tokens.ClearAll(ctx); err != nil {
		a.log.Error(ctx, "clear session", "error", err)
	}
	if err := a.client.ForgetCookies(); err != nil {
		a.log.Error(ctx, "clear cookies", "error", err)
	}
	a.session.SetUser(nil)
}
