package permit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/transport"
)

type ServiceAPI interface {
	Create(ctx context.Context, payload Payload) (int64, error)
	ListAll(ctx context.Context) ([]*Permit, error)
	GetByID(ctx context.Context, id int64) (*Permit, error)
	UpdateByPermitNumber(ctx context.Context, permitNumber string, payload Payload) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// CreatePermit handles POST /permits
func (h *Handler) CreatePermit(w http.ResponseWriter, r *http.Request) {
	payload, err := DecodePayload(r.Body)
	if err != nil {
		h.WriteAppError(w, r, appErrors.NewValidationError("Invalid request body", appErrors.ErrCodeInvalidRequestBody).WithCause(err))
		return
	}

	id, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, CreatePermitResponse{
		Message:  "Permit created successfully",
		PermitID: id,
	})
}

// ListPermits handles GET /permits
func (h *Handler) ListPermits(w http.ResponseWriter, r *http.Request) {
	permits, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, permits)
}

// GetPermit handles GET /permits/{id}
func (h *Handler) GetPermit(w http.ResponseWriter, r *http.Request) {
	// no row can carry a non-numeric id
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteAppError(w, r, appErrors.NewNotFoundError("Permit not found", appErrors.ErrCodePermitNotFound))
		return
	}

	p, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// UpdatePermit handles PUT /permits/{permit_number}
func (h *Handler) UpdatePermit(w http.ResponseWriter, r *http.Request) {
	payload, err := DecodePayload(r.Body)
	if err != nil {
		h.WriteAppError(w, r, appErrors.NewValidationError("Invalid request body", appErrors.ErrCodeInvalidRequestBody).WithCause(err))
		return
	}

	if err := h.Service.UpdateByPermitNumber(r.Context(), chi.URLParam(r, "permit_number"), payload); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Permit updated successfully"})
}
