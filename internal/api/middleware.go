package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventportal/internal/crm"
	"eventportal/internal/schema"
	"eventportal/internal/service"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code int, errCode, message string, log *zap.Logger) {
	fields := []zap.Field{zap.Int("status", code), zap.String("code", errCode), zap.String("message", message)}
	if code >= http.StatusInternalServerError {
		log.Error("API error", fields...)
	} else {
		log.Info("API error", fields...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Code:    errCode,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// recordID reads and canonicalises the {id} path parameter. It writes a 400
// and reports false when the id is not a GUID.
func (d Dependencies) recordID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_id", "Identifier must be a GUID", d.Log)
		return "", false
	}
	return id.String(), true
}

// writeServiceError maps a service failure to its HTTP status.
func (d Dependencies) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr *crm.AuthError
		crmErr  *crm.Error
		urlErr  *url.Error
	)

	switch {
	case errors.Is(err, schema.ErrInvalid):
		WriteError(w, http.StatusBadRequest, "invalid_body", err.Error(), d.Log)
	case errors.Is(err, crm.ErrInvalidKey):
		WriteError(w, http.StatusBadRequest, "invalid_id", "Identifier must be a GUID", d.Log)
	case errors.Is(err, service.ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(int(d.retryAfter().Seconds())))
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "Please wait before asking another question", d.Log)
	case errors.Is(err, service.ErrEventUnresolvable):
		WriteError(w, http.StatusNotFound, "event_not_found", "No related event found", d.Log)
	case crm.IsNotFound(err):
		WriteError(w, http.StatusNotFound, "not_found", "Record not found", d.Log)
	case errors.As(err, &authErr):
		d.Log.Error("Upstream authentication failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		WriteError(w, http.StatusBadGateway, "upstream_auth_failed", "Upstream authentication failed", d.Log)
	case errors.As(err, &crmErr), errors.As(err, &urlErr):
		d.Log.Error("Upstream request failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		WriteError(w, http.StatusBadGateway, "upstream_error", "Upstream request failed", d.Log)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads the answer.
		d.Log.Debug("Request cancelled", zap.String("path", r.URL.Path))
	default:
		d.Log.Error("Request failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error", d.Log)
	}
}

func (d Dependencies) retryAfter() time.Duration {
	if d.Chats == nil || d.Chats.Window() <= 0 {
		return 5 * time.Minute
	}
	return d.Chats.Window()
}

// RequestLogger logs HTTP requests and responses
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip wrapping for WebSocket upgrades - they need direct access to ResponseWriter
			if r.Header.Get("Upgrade") == "websocket" {
				log.Info("WebSocket request", zap.String("path", r.URL.Path), zap.String("remote_addr", r.RemoteAddr))
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
