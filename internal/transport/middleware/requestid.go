package middleware

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	appContext "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/pkg/logger"
)

const TraceHeader = "X-Trace-ID"

// RequestID attaches a trace id to the request context and its logger. A
// client supplied X-Trace-ID wins, then chi's request id, then a new uuid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = middleware.GetReqID(r.Context())
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := appContext.ContextWithTraceID(r.Context(), traceID)
		ctx = logger.With(ctx, "traceID", traceID)

		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
