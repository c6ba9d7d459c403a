package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"atelierhub/internal/api/dto"
	billingservice "atelierhub/internal/billing/service"
	invoiceservice "atelierhub/internal/invoice/service"
	"atelierhub/pkg/apierror"
	"atelierhub/pkg/middleware"
)

type Handler struct {
	InvoiceService *invoiceservice.Service
}

func NewInvoiceHandler(is *invoiceservice.Service) *Handler {
	return &Handler{InvoiceService: is}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	var req dto.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	lines := make([]invoiceservice.LineInput, 0, len(req.Lines))
	for _, in := range req.Lines {
		lines = append(lines, invoiceservice.LineInput{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitAmount:  in.UnitAmount,
		})
	}

	inv, err := h.InvoiceService.Create(r.Context(), userID, req.ProjectID, lines)
	if err != nil {
		writeInvoiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	invoices, err := h.InvoiceService.List(r.Context(), userID)
	if err != nil {
		apierror.Internal(w, "failed to list invoices")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"invoices": invoices})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.BadRequest(w, "invalid invoice id")
		return
	}

	inv, err := h.InvoiceService.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, invoiceservice.ErrInvoiceNotFound) {
			apierror.NotFound(w, "invoice not found")
			return
		}
		apierror.Internal(w, "failed to load invoice")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(inv)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserIDKey).(int64)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		apierror.BadRequest(w, "invalid invoice id")
		return
	}

	var req dto.UpdateInvoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.BadRequest(w, "invalid request body")
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	if err := h.InvoiceService.UpdateStatus(r.Context(), userID, id, req.Status); err != nil {
		switch {
		case errors.Is(err, invoiceservice.ErrInvoiceNotFound):
			apierror.NotFound(w, "invoice not found")
		case errors.Is(err, invoiceservice.ErrUnknownStatus):
			apierror.BadRequest(w, "unknown invoice status")
		default:
			apierror.Internal(w, "failed to update invoice")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeInvoiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billingservice.ErrSubscriptionInactive):
		apierror.Forbidden(w, apierror.CodeSubscriptionInactive, "subscription is not active")
	case errors.Is(err, billingservice.ErrFeatureNotAvailable):
		apierror.Forbidden(w, apierror.CodeFeatureNotAvailable, "feature not available on current plan")
	case errors.Is(err, invoiceservice.ErrNoLines):
		apierror.BadRequest(w, "invoice needs at least one line")
	default:
		apierror.Internal(w, "internal error")
	}
}
