package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	appErrors "github.com/frahmantamala/permit-service/internal"
)

// RecoveryMiddleware turns a panic into a generic 500 and keeps the process alive.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					"error", rec,
					"method", r.Method,
					"url", r.URL.String(),
					"trace_id", appErrors.TraceIDFromContext(r.Context()),
					"stack", string(debug.Stack()))

				_, body := appErrors.NewInternalError("Internal server error", nil).ToHTTPResponse()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
