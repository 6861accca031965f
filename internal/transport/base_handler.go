package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain error body. Used for failures that happen before
// a request reaches a service, such as health checks.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, map[string]string{"error": message})
}

// WriteAppError renders err as {"error": {...}}. Errors that are not an
// AppError become a generic 500 so internals never leak.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := appErrors.AsAppError(err)
	if !ok {
		appErr = appErrors.NewInternalError("Internal server error", err)
	}

	lg := logger.From(r.Context())
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("request failed", "code", appErr.Code, "error", err)
	} else {
		lg.Info("request rejected", "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}

	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}
