package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/permit-service/internal/transport"
)

const healthCheckTimeout = 2 * time.Second

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     string                `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	*transport.BaseHandler
	db Pinger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{BaseHandler: transport.NewBaseHandler(logger), db: db}
}

// Ping reports that the process is up without touching the database.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Check borrows a pooled connection and pings the database.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	if err != nil {
		h.Logger.ErrorContext(r.Context(), "database health check failed", "error", err)
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
		h.WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      "Failed to connect to database",
			"components": map[string]CheckEntry{"postgres": entry},
		})
		return
	}

	h.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:     "Connected to database successfully",
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"postgres": entry},
	})
}
