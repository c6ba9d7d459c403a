package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"atelierhub/internal/billing"
)

// ErrInvalidSignature is returned by ParseWebhook when the payload cannot
// be authenticated against the configured shared secret.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// ProviderError wraps any failure talking to the payment provider. Callers
// may retry; this package never retries on its own.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CheckoutRequest describes a hosted-payment page to be created.
type CheckoutRequest struct {
	TxRef            string
	Amount           int64 // minor units
	Currency         string
	CustomerEmail    string
	CustomerName     string
	RedirectURL      string
	UserID           int64
	PlanID           string
	PaymentMethodRef string
}

// Checkout is the provider's answer: a link the browser is sent to.
type Checkout struct {
	PaymentLink         string
	TxRef               string
	ProviderCustomerRef string
}

// Verification is the provider's authoritative view of one transaction,
// fetched server-side. The redirect query string is never trusted instead
// of this.
type Verification struct {
	Status   string // "successful", "failed", "pending"
	TxRef    string
	Amount   int64
	Currency string
	UserID   int64
	PlanID   string
}

const VerificationSuccessful = "successful"

// Provider abstracts the hosted-checkout payment backend.
type Provider interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	VerifyTransaction(ctx context.Context, ref string) (*Verification, error)
	CancelSubscription(ctx context.Context, providerSubRef string) error
	// ParseWebhook authenticates and decodes an incoming provider event.
	// Returns ErrInvalidSignature when authentication fails.
	ParseWebhook(r *http.Request, payload []byte) (billing.Event, error)
}
