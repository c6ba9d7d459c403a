package payment

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"atelierhub/internal/billing"
)

// MockProvider is a test double that records calls and returns
// configurable results.
type MockProvider struct {
	mu sync.Mutex

	// CheckoutRequests collects every CreateCheckout call.
	CheckoutRequests []CheckoutRequest
	// Verifications maps transaction ref -> canned verification result.
	Verifications map[string]*Verification
	// CanceledRefs collects provider subscription refs passed to cancel.
	CanceledRefs []string

	CreateCheckoutErr     error
	VerifyTransactionErr  error
	CancelSubscriptionErr error

	nextSeq int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Verifications: make(map[string]*Verification),
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) CreateCheckout(_ context.Context, req CheckoutRequest) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateCheckoutErr != nil {
		return nil, m.CreateCheckoutErr
	}

	m.nextSeq++
	m.CheckoutRequests = append(m.CheckoutRequests, req)
	return &Checkout{
		PaymentLink:         fmt.Sprintf("https://pay.mock/checkout/%d", m.nextSeq),
		TxRef:               req.TxRef,
		ProviderCustomerRef: fmt.Sprintf("cus_mock_%d", req.UserID),
	}, nil
}

func (m *MockProvider) VerifyTransaction(_ context.Context, ref string) (*Verification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.VerifyTransactionErr != nil {
		return nil, m.VerifyTransactionErr
	}

	if v, ok := m.Verifications[ref]; ok {
		return v, nil
	}
	return &Verification{Status: "failed", TxRef: ref}, nil
}

func (m *MockProvider) CancelSubscription(_ context.Context, providerSubRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CancelSubscriptionErr != nil {
		return m.CancelSubscriptionErr
	}

	m.CanceledRefs = append(m.CanceledRefs, providerSubRef)
	return nil
}

// ParseWebhook is not used in tests; events are fed to the service directly.
func (m *MockProvider) ParseWebhook(_ *http.Request, _ []byte) (billing.Event, error) {
	return billing.UnknownEvent{Type: "mock"}, nil
}
