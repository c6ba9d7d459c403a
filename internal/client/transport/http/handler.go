package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"atelierhub/internal/api/dto"
	"atelierhub/internal/billing/service"
	"atelierhub/internal/client"
	clientservice "atelierhub/internal/client/service"
	"atelierhub/pkg/apierror"
	"atelierhub/pkg/middleware"
)

type Handler struct {
	ClientService *clientservice.Service
}

func NewClientHandler(cs *clientservice.Service) *Handler {
	return &Handler{ClientService: cs}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	c := &client.Client{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Notes:  req.Notes,
	}

	if err := h.ClientService.Create(r.Context(), c); err != nil {
		writeEntitlementError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	clients, err := h.ClientService.List(r.Context(), userID)
	if err != nil {
		apierror.Internal(w, "failed to list clients")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"clients": clients})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.BadRequest(w, "invalid client id")
		return
	}

	c, err := h.ClientService.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, clientservice.ErrClientNotFound) {
			apierror.NotFound(w, "client not found")
			return
		}
		apierror.Internal(w, "failed to load client")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.BadRequest(w, "invalid client id")
		return
	}

	if err := h.ClientService.Delete(r.Context(), userID, id); err != nil {
		apierror.Internal(w, "failed to delete client")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeEntitlementError maps entitlement-gate failures onto the uniform
// error envelope; shared by the gated CRUD handlers.
func writeEntitlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSubscriptionInactive):
		apierror.Forbidden(w, apierror.CodeSubscriptionInactive, "subscription is not active")
	case errors.Is(err, service.ErrFeatureNotAvailable):
		apierror.Forbidden(w, apierror.CodeFeatureNotAvailable, "feature not available on current plan")
	case errors.Is(err, service.ErrPlanLimitReached):
		apierror.Forbidden(w, apierror.CodePlanLimitReached, "plan limit reached, upgrade to add more")
	default:
		apierror.Internal(w, "internal error")
	}
}
