// Package server wires the Evently dev backend together: storage, the user
// service, the HTTP API, a refresh token janitor and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/logging"
	"github.com/dmitrijs2005/evently-client/internal/server/config"
	"github.com/dmitrijs2005/evently-client/internal/server/httpserver"
	"github.com/dmitrijs2005/evently-client/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/evently-client/internal/server/services"
)

const purgeInterval = time.Hour

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, "json")

	db, m, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	logger.Info(ctx, "database ready", "dialect", m.Dialect())

	us := services.NewUserService(db, m, c)
	if err := us.Seed(ctx, c.Seeds()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed users: %w", err)
	}

	return &App{config: c, logger: logger, db: db, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpserver.NewHTTPServer(httpserver.Options{
		Address:         app.config.Address,
		SecretKey:       app.config.SecretKey,
		RefreshValidity: app.config.RefreshTokenValidityDuration,
		AllowedOrigins:  app.config.Origins(),
		SecureCookies:   app.config.SecureCookies,
	}, app.logger, app.userService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeExpiredTokens deletes dead refresh tokens every interval until ctx ends.
func (app *App) purgeExpiredTokens(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "purge expired refresh tokens", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Debug(ctx, "purged expired refresh tokens", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeExpiredTokens(ctx, purgeInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
