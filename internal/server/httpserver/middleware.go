package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/common"
	"github.com/dmitrijs2005/evently-client/internal/server/auth"
	"github.com/dmitrijs2005/evently-client/internal/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey string

const (
	userIDKey    ctxKey = "userID"
	requestIDKey ctxKey = "requestID"
)

// requestLogger echoes or assigns X-Request-ID and logs every request once
// it has been served.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(common.RequestIDHeaderName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey, requestID))

		c.Next()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", requestID,
		)
	}
}

// accessTokenRequired rejects requests without a valid bearer token and puts
// the user id into the request context.
func (s *HTTPServer) accessTokenRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			respondError(c, http.StatusUnauthorized, "missing token", nil)
			c.Abort()
			return
		}

		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			respondError(c, http.StatusUnauthorized, shared.ErrorInvalidAuthheaderFormat.Error(), nil)
			c.Abort()
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, shared.ErrorTokenExpired) {
				msg = "token expired"
			}
			respondError(c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userIDKey, userID))
		c.Next()
	}
}

func userIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
