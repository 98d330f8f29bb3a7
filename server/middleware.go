package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"airbnb-dashboard/utils"
)

type ctxKey string

const requestIDKey ctxKey = "request-id"

// RequestID reuses the caller's X-Request-ID or assigns a new UUID, and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetReqID returns the request ID stored by RequestID.
func GetReqID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// AccessLog writes one line per request through the application logger and
// records the request in m.
func AccessLog(logger *utils.Logger, m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			m.observeRequest(r.Method, route, status, elapsed)

			line := "[server] %s %s %d %dB %v req=%s"
			args := []any{r.Method, r.URL.RequestURI(), status, ww.BytesWritten(), elapsed.Round(time.Microsecond), GetReqID(r.Context())}
			switch {
			case status >= 500:
				logger.Error(line, args...)
			case status >= 400:
				logger.Warn(line, args...)
			default:
				logger.Info(line, args...)
			}
		})
	}
}
