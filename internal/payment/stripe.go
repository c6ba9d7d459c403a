package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"atelierhub/internal/billing"
	"atelierhub/internal/metrics"
)

// StripeProvider implements Provider on the Stripe API using hosted
// Checkout Sessions.
type StripeProvider struct {
	webhookSecret string
}

func NewStripeProvider(apiKey, webhookSecret string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{webhookSecret: webhookSecret}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	start := time.Now()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL(req.RedirectURL)),
		CancelURL:         stripe.String(req.RedirectURL + "?status=cancelled"),
		ClientReferenceID: stripe.String(req.TxRef),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("AtelierHub %s plan", req.PlanID)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatInt(req.UserID, 10))
	params.AddMetadata("plan_id", req.PlanID)
	params.AddMetadata("tx_ref", req.TxRef)

	s, err := session.New(params)
	p.observe("create_checkout", start, err)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "create checkout session", Err: err}
	}

	return &Checkout{
		PaymentLink:         s.URL,
		TxRef:               req.TxRef,
		ProviderCustomerRef: sessionCustomerID(s),
	}, nil
}

// successURL builds the return URL for a completed checkout. Stripe expands
// the placeholder to the session id, which is the only handle a session can
// later be retrieved by; the internal tx_ref is recovered from the
// session's client_reference_id during verification.
func successURL(redirectURL string) string {
	return redirectURL + "?transaction_id={CHECKOUT_SESSION_ID}"
}

// VerifyTransaction re-fetches a Checkout Session by its id and reports the
// provider-side payment status.
func (p *StripeProvider) VerifyTransaction(ctx context.Context, ref string) (*Verification, error) {
	start := time.Now()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(ref, params)
	p.observe("verify_transaction", start, err)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Op: "retrieve checkout session", Err: err}
	}

	status := "pending"
	switch s.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid:
		status = VerificationSuccessful
	case stripe.CheckoutSessionPaymentStatusUnpaid:
		if s.Status == stripe.CheckoutSessionStatusExpired {
			status = "failed"
		}
	}

	userID, planID := metadataIdentity(s.Metadata)
	return &Verification{
		Status:   status,
		TxRef:    s.ClientReferenceID,
		Amount:   s.AmountTotal,
		Currency: strings.ToUpper(string(s.Currency)),
		UserID:   userID,
		PlanID:   planID,
	}, nil
}

func (p *StripeProvider) CancelSubscription(ctx context.Context, providerSubRef string) error {
	start := time.Now()

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	_, err := subscription.Cancel(providerSubRef, params)
	p.observe("cancel_subscription", start, err)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Op: "cancel subscription", Err: err}
	}
	return nil
}

// Minimal projections of the Stripe event payloads this service reads.
type stripeCheckoutSession struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	ClientReferenceID string            `json:"client_reference_id"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	Metadata          map[string]string `json:"metadata"`
}

type stripeSubscription struct {
	ID       string `json:"id"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

type stripeInvoice struct {
	ID           string `json:"id"`
	Subscription string `json:"subscription"`
}

func (p *StripeProvider) ParseWebhook(r *http.Request, payload []byte) (billing.Event, error) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		return nil, ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var s stripeCheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout.session: %w", err)
		}
		userID, planID := metadataIdentity(s.Metadata)
		return billing.ChargeSucceeded{
			TxRef:               s.ClientReferenceID,
			UserID:              userID,
			PlanID:              planID,
			Amount:              s.AmountTotal,
			Currency:            strings.ToUpper(s.Currency),
			ProviderCustomerRef: s.Customer,
			ProviderSubRef:      s.Subscription,
		}, nil

	case "invoice.payment_failed":
		var inv stripeInvoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		return billing.ChargeFailed{TxRef: inv.ID, Reason: "invoice payment failed"}, nil

	case "customer.subscription.deleted":
		var sub stripeSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		return billing.SubscriptionCanceled{ProviderSubRef: sub.ID}, nil

	default:
		return billing.UnknownEvent{Type: string(event.Type)}, nil
	}
}

func (p *StripeProvider) observe(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(p.Name(), op, status).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(p.Name(), op).Observe(time.Since(start).Seconds())
}

func sessionCustomerID(s *stripe.CheckoutSession) string {
	if s.Customer != nil {
		return s.Customer.ID
	}
	return ""
}

func metadataIdentity(meta map[string]string) (int64, string) {
	if meta == nil {
		return 0, ""
	}
	userID, _ := strconv.ParseInt(meta["user_id"], 10, 64)
	return userID, meta["plan_id"]
}
