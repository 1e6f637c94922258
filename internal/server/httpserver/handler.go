package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/evently-client/internal/shared"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) Health(c *gin.Context) {
	respondJSON(c, statusSuccess, http.StatusOK, "OK", nil, nil)
}

func (s *HTTPServer) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrorAlreadyExists) {
			respondError(c, http.StatusConflict, "User with this email already exists", nil)
			return
		}
		s.logger.Error(c.Request.Context(), "register", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to register user", nil)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "user_id", user.ID)
	respondJSON(c, statusSuccess, http.StatusCreated, "User registered successfully",
		userData{ID: user.ID, Email: user.Email, Name: user.Name}, nil)
}

func (s *HTTPServer) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	pair, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrorUnauthorized) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		s.logger.Error(c.Request.Context(), "login", "error", err)
		respondError(c, http.StatusInternalServerError, "Failed to login", nil)
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	respondJSON(c, statusSuccess, http.StatusOK, "Login successful", tokenData{AccessToken: pair.AccessToken}, nil)
}

// RefreshToken rotates the refresh cookie and mints a new access token.
func (s *HTTPServer) RefreshToken(c *gin.Context) {
	refresh, err := c.Cookie(RefreshCookieName)
	if err != nil || refresh == "" {
		respondError(c, http.StatusUnauthorized, "Missing refresh token", nil)
		return
	}

	pair, err := s.users.RefreshToken(c.Request.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrorUnauthorized), errors.Is(err, shared.ErrorRefreshTokenExpired),
			errors.Is(err, shared.ErrorNotFound):
			s.clearRefreshCookie(c)
			respondError(c, http.StatusUnauthorized, "Invalid or expired refresh token", nil)
		default:
			s.logger.Error(c.Request.Context(), "refresh", "error", err)
			respondError(c, http.StatusInternalServerError, "Failed to refresh token", nil)
		}
		return
	}

	s.setRefreshCookie(c, pair.RefreshToken)
	respondJSON(c, statusSuccess, http.StatusOK, "Token refreshed successfully", tokenData{AccessToken: pair.AccessToken}, nil)
}

// Logout revokes the refresh cookie. It needs no valid access token, since
// clients log out with whatever token they still hold.
func (s *HTTPServer) Logout(c *gin.Context) {
	if refresh, err := c.Cookie(RefreshCookieName); err == nil && refresh != "" {
		if err := s.users.Logout(c.Request.Context(), refresh); err != nil {
			s.logger.Error(c.Request.Context(), "logout", "error", err)
			respondError(c, http.StatusInternalServerError, "Failed to logout", nil)
			return
		}
	}

	s.clearRefreshCookie(c)
	respondJSON(c, statusSuccess, http.StatusOK, "Logged out successfully", nil, nil)
}

func (s *HTTPServer) Me(c *gin.Context) {
	userID, ok := userIDFrom(c.Request.Context())
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	user, err := s.users.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrorUnauthorized) {
			respondError(c, http.StatusUnauthorized, "User not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to load user", nil)
		return
	}

	respondJSON(c, statusSuccess, http.StatusOK, "User data retrieved successfully",
		userData{ID: user.ID, Email: user.Email, Name: user.Name}, nil)
}

func (s *HTTPServer) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, token, int(s.refreshValidity.Seconds()), refreshCookiePath, "", s.secureCookies, true)
}

func (s *HTTPServer) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, "", -1, refreshCookiePath, "", s.secureCookies, true)
}
