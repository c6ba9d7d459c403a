package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"atelierhub/internal/api/dto"
	"atelierhub/internal/billing/service"
	"atelierhub/internal/payment"
	"atelierhub/pkg/apierror"
	"atelierhub/pkg/middleware"
)

type Handler struct {
	BillingService *service.Service
}

func NewBillingHandler(bs *service.Service) *Handler {
	return &Handler{BillingService: bs}
}

func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans := h.BillingService.Plans()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"plans": plans})
}

func (h *Handler) GetMySubscription(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	status, err := h.BillingService.GetForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"subscription": status})
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	result, err := h.BillingService.Subscribe(r.Context(), userID, req.PlanID, req.PaymentMethodRef)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	if err := h.BillingService.Cancel(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"canceled": true})
}

// VerifyCallback handles the browser returning from the hosted payment
// page. It is public; integrity comes from re-verifying with the provider,
// never from the query parameters.
func (h *Handler) VerifyCallback(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("tx_ref")
	if ref == "" {
		ref = r.URL.Query().Get("transaction_id")
	}
	if ref == "" {
		apierror.BadRequest(w, "tx_ref or transaction_id is required")
		return
	}

	result, err := h.BillingService.VerifyCallback(r.Context(), ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func writeServiceError(w http.ResponseWriter, err error) {
	var provErr *payment.ProviderError

	switch {
	case errors.Is(err, service.ErrInvalidPlan):
		apierror.Write(w, http.StatusBadRequest, apierror.CodeInvalidPlan, "unknown or unavailable plan")
	case errors.Is(err, service.ErrUserNotFound):
		apierror.NotFound(w, "user not found")
	case errors.Is(err, service.ErrNoPendingSubscription):
		apierror.NotFound(w, "no pending subscription for this transaction")
	case errors.Is(err, service.ErrNoActiveSubscription):
		apierror.BadRequest(w, "no active subscription to cancel")
	case errors.Is(err, service.ErrSubscriptionInactive):
		apierror.Forbidden(w, apierror.CodeSubscriptionInactive, "subscription is not active")
	case errors.Is(err, service.ErrFeatureNotAvailable):
		apierror.Forbidden(w, apierror.CodeFeatureNotAvailable, "feature not available on current plan")
	case errors.Is(err, service.ErrPlanLimitReached):
		apierror.Forbidden(w, apierror.CodePlanLimitReached, "plan limit reached")
	case errors.As(err, &provErr):
		// Retryable by the caller; the provider's raw error stays in logs.
		apierror.Write(w, http.StatusBadGateway, apierror.CodePaymentProvider, "payment provider request failed")
	default:
		apierror.Internal(w, "internal error")
	}
}
