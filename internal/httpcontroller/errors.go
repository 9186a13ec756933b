package httpcontroller

import (
	"crypto/rand"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Keithclinton/Counter-Front/internal/errors"
)

// ErrorResponse is the JSON body returned for all failed requests.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates an error response with a fresh correlation ID.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short random identifier for tracking an
// error across logs and client reports.
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError logs the error and writes the JSON error response. The HTTP
// status is derived from the error category.
func (s *Server) HandleError(ctx echo.Context, err error, message string) error {
	code := statusForError(err)
	resp := NewErrorResponse(err, message, code)

	s.logger.Error("request failed",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", resp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP())

	return ctx.JSON(code, resp)
}

// statusForError maps error categories to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.HasCategory(err, errors.CategoryValidation),
		errors.HasCategory(err, errors.CategoryImageDecode):
		return http.StatusBadRequest
	case errors.HasCategory(err, errors.CategoryNotFound):
		return http.StatusNotFound
	case errors.HasCategory(err, errors.CategoryAuth):
		return http.StatusUnauthorized
	case errors.HasCategory(err, errors.CategoryTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
