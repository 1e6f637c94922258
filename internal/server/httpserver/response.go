package httpserver

import "github.com/gin-gonic/gin"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// StandardApiResponse is the envelope every endpoint answers with.
type StandardApiResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Errors     any    `json:"errors,omitempty"`
}

func respondJSON(c *gin.Context, status string, code int, message string, data any, errors any) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

func respondError(c *gin.Context, code int, message string, errors any) {
	respondJSON(c, statusError, code, message, nil, errors)
}

// tokenData is the payload of login and refresh answers.
type tokenData struct {
	AccessToken string `json:"accessToken"`
}

type userData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
