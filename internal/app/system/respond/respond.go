// Package respond writes JSON API responses with a single envelope for
// errors, so every handler speaks the same shape on the wire.
package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// errorBody is the envelope for every non-2xx response.
type errorBody struct {
	Message string `json:"message"`
}

// JSON writes v as the response body with the given status code.
// Encoding failures are swallowed; the status line has already gone out.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error writes {"message": msg} with the given status code.
func Error(w http.ResponseWriter, code int, msg string) {
	JSON(w, code, errorBody{Message: msg})
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorLogger couples server-error responses with structured logging so
// handlers never return a 5xx without a log line carrying the cause.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger wraps logger for use by feature handlers. A nil logger
// is replaced with a no-op logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorLogger{log: logger}
}

// ServerError logs err at error level and writes a generic 500 response.
// The underlying error text never reaches the client.
func (e *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	e.log.Error(msg, fields...)
	Error(w, http.StatusInternalServerError, "internal server error")
}
