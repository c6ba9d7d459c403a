package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"atelierhub/internal/api/dto"
	billingservice "atelierhub/internal/billing/service"
	patternservice "atelierhub/internal/pattern/service"
	"atelierhub/pkg/apierror"
	"atelierhub/pkg/middleware"
)

type Handler struct {
	PatternService *patternservice.Service
}

func NewPatternHandler(ps *patternservice.Service) *Handler {
	return &Handler{PatternService: ps}
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.GeneratePatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	g, err := h.PatternService.Generate(r.Context(), userID, req.Prompt, req.Style)
	if err != nil {
		switch {
		case errors.Is(err, billingservice.ErrSubscriptionInactive):
			apierror.Forbidden(w, apierror.CodeSubscriptionInactive, "subscription is not active")
		case errors.Is(err, billingservice.ErrPlanLimitReached):
			apierror.Forbidden(w, apierror.CodePlanLimitReached, "monthly generation limit reached")
		case errors.Is(err, patternservice.ErrGeneratorUnavailable):
			apierror.Write(w, http.StatusBadGateway, apierror.CodeInternal, "generation service unavailable")
		default:
			apierror.Internal(w, "internal error")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(g)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	generations, err := h.PatternService.List(r.Context(), userID)
	if err != nil {
		apierror.Internal(w, "failed to list generations")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"generations": generations})
}
