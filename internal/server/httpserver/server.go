// Package httpserver exposes the dev backend over HTTP: the auth endpoints
// the Evently client talks to, a health probe, and the middleware that
// authenticates bearer tokens.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/logging"
	"github.com/dmitrijs2005/evently-client/internal/server/models"
	"github.com/dmitrijs2005/evently-client/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	APIBasePath       = "/api/v1"
	HealthPath        = "/health"
	RefreshCookieName = "refresh_token"
	refreshCookiePath = APIBasePath + "/auth"
	shutdownTimeout   = 5 * time.Second
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Options carry the settings that shape the HTTP surface.
type Options struct {
	Address         string
	SecretKey       string
	RefreshValidity time.Duration
	AllowedOrigins  []string
	SecureCookies   bool
}

type HTTPServer struct {
	address         string
	users           UserService
	logger          logging.Logger
	jwtSecret       []byte
	refreshValidity time.Duration
	allowedOrigins  []string
	secureCookies   bool
	validate        *validator.Validate
}

func NewHTTPServer(opts Options, l logging.Logger, us UserService) *HTTPServer {
	return &HTTPServer{
		address:         opts.Address,
		users:           us,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(opts.SecretKey),
		refreshValidity: opts.RefreshValidity,
		allowedOrigins:  opts.AllowedOrigins,
		secureCookies:   opts.SecureCookies,
		validate:        validator.New(),
	}
}

// Engine builds the gin router with every route and middleware attached.
func (s *HTTPServer) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(s.requestLogger(), gin.Recovery())

	if len(s.allowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     s.allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	engine.GET(HealthPath, s.Health)
	engine.HEAD(HealthPath, s.Health)

	api := engine.Group(APIBasePath)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.Register)
		authGroup.POST("/login", s.Login)
		authGroup.POST("/refresh-token", s.RefreshToken)
		authGroup.POST("/logout", s.Logout)

		protected := authGroup.Group("")
		protected.Use(s.accessTokenRequired())
		protected.GET("/me", s.Me)
	}

	return engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "forced shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
