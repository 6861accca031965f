package user

import (
	"context"
	"encoding/json"
	"net/http"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/transport"
)

type ServiceAPI interface {
	FindByCredentials(ctx context.Context, query LookupQuery) ([]*User, error)
	Create(ctx context.Context, dto CreateUserDTO) (*User, string, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// ListUsers handles GET /users?email=&id_number=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := LookupQuery{
		Email:    r.URL.Query().Get("email"),
		IDNumber: r.URL.Query().Get("id_number"),
	}

	users, err := h.Service.FindByCredentials(r.Context(), query)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteAppError(w, r, appErrors.NewValidationError("Invalid request body", appErrors.ErrCodeInvalidRequestBody).WithCause(err))
		return
	}

	u, token, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, CreateUserResponse{User: u, Token: token})
}
