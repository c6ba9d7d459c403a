package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"atelierhub/internal/billing"
	"atelierhub/internal/billing/service"
	"atelierhub/internal/metrics"
	"atelierhub/internal/payment"
	"atelierhub/pkg/apierror"
)

const webhookBodyLimit = 1 << 20 // 1 MiB

// WebhookHandler receives asynchronous payment-provider events at
// POST /webhook/{provider}.
type WebhookHandler struct {
	BillingService *service.Service
	Providers      map[string]payment.Provider
}

func NewWebhookHandler(bs *service.Service, providers map[string]payment.Provider) *WebhookHandler {
	return &WebhookHandler{
		BillingService: bs,
		Providers:      providers,
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	provider, ok := h.Providers[providerName]
	if !ok {
		apierror.NotFound(w, "unknown payment provider")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, webhookBodyLimit)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "unknown", "bad_body").Inc()
		apierror.BadRequest(w, "failed to read request body")
		return
	}

	event, err := provider.ParseWebhook(r, payload)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			metrics.WebhookEventsTotal.WithLabelValues(providerName, "unknown", "bad_signature").Inc()
			log.Warn().Str("provider", providerName).Msg("webhook rejected: invalid signature")
			apierror.Unauthorized(w, "invalid webhook signature")
			return
		}
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "unknown", "parse_error").Inc()
		log.Error().Err(err).Str("provider", providerName).Msg("webhook payload could not be parsed")
		apierror.BadRequest(w, "malformed webhook payload")
		return
	}

	if err := h.BillingService.HandleEvent(r.Context(), event); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, eventLabel(event), "error").Inc()
		log.Error().Err(err).Str("provider", providerName).Msg("webhook processing failed")
		apierror.Internal(w, "processing failed")
		return
	}

	metrics.WebhookEventsTotal.WithLabelValues(providerName, eventLabel(event), "ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

func eventLabel(ev billing.Event) string {
	switch ev.(type) {
	case billing.ChargeSucceeded:
		return "charge_succeeded"
	case billing.ChargeFailed:
		return "charge_failed"
	case billing.SubscriptionCanceled:
		return "subscription_canceled"
	default:
		return "unknown"
	}
}
