package payment

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessURLCarriesSessionIDPlaceholder(t *testing.T) {
	url := successURL("https://app.test/billing/return")

	// The session id is the only handle a Checkout Session can be
	// retrieved by, so the redirect must ask Stripe to fill it in.
	assert.Equal(t, "https://app.test/billing/return?transaction_id={CHECKOUT_SESSION_ID}", url)
	assert.Contains(t, url, "transaction_id=")
}

func TestStripeParseWebhookRejectsMissingSignature(t *testing.T) {
	p := NewStripeProvider("sk_test", "whsec_test")

	req := httptest.NewRequest(http.MethodPost, "/webhook/stripe", nil)
	_, err := p.ParseWebhook(req, []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestMetadataIdentity(t *testing.T) {
	tests := []struct {
		name   string
		meta   map[string]string
		userID int64
		planID string
	}{
		{"full", map[string]string{"user_id": "42", "plan_id": "premium"}, 42, "premium"},
		{"missing user", map[string]string{"plan_id": "premium"}, 0, "premium"},
		{"garbage user", map[string]string{"user_id": "abc"}, 0, ""},
		{"nil", nil, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, planID := metadataIdentity(tt.meta)
			assert.Equal(t, tt.userID, userID)
			assert.Equal(t, tt.planID, planID)
		})
	}
}
