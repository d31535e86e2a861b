package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/CesarOsorioP/StateView-sub000/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const errorTypeCtxKey = ContextKey("error_type")

// SetErrorType records the error classification of a failed request for the metrics middleware.
func SetErrorType(ctx context.Context, errorType string) {
	if slot, ok := ctx.Value(errorTypeCtxKey).(*string); ok {
		*slot = errorType
	}
}

// Metrics observes latency per route pattern and counts error responses.
func Metrics(m *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			errorType := ""
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), errorTypeCtxKey, &errorType)))

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if errorType == "" && status >= http.StatusBadRequest {
				errorType = "http_" + http.StatusText(status)
			}
			m.ObserveRequest(r.Method, route, status, errorType, time.Since(start))
		})
	}
}
