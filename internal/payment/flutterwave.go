package payment

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"atelierhub/internal/billing"
	"atelierhub/internal/metrics"
)

const (
	flutterwaveBaseURL = "https://api.flutterwave.com/v3"
	flutterwaveTimeout = 10 * time.Second
)

// FlutterwaveProvider implements Provider over the Flutterwave v3 REST API.
// There is no maintained Go SDK, so this is a plain HTTP client with a
// circuit breaker in front of it.
type FlutterwaveProvider struct {
	secretKey  string
	webhookKey string
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

func NewFlutterwaveProvider(secretKey, webhookKey string) *FlutterwaveProvider {
	p := &FlutterwaveProvider{
		secretKey:  secretKey,
		webhookKey: webhookKey,
		baseURL:    flutterwaveBaseURL,
		httpClient: &http.Client{Timeout: flutterwaveTimeout},
	}

	p.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "flutterwave-api",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
		},
	})

	return p
}

func (p *FlutterwaveProvider) Name() string { return "flutterwave" }

type flwPaymentRequest struct {
	TxRef       string            `json:"tx_ref"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	RedirectURL string            `json:"redirect_url"`
	Customer    flwCustomer       `json:"customer"`
	Meta        map[string]string `json:"meta,omitempty"`
}

type flwCustomer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type flwPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

type flwVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       int64             `json:"id"`
		TxRef    string            `json:"tx_ref"`
		Status   string            `json:"status"`
		Amount   float64           `json:"amount"`
		Currency string            `json:"currency"`
		Meta     map[string]string `json:"meta"`
		Customer struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

type flwGenericResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (p *FlutterwaveProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	body := flwPaymentRequest{
		TxRef: req.TxRef,
		// Flutterwave expects amounts in major units.
		Amount:      formatMajorUnits(req.Amount),
		Currency:    req.Currency,
		RedirectURL: req.RedirectURL,
		Customer: flwCustomer{
			Email: req.CustomerEmail,
			Name:  req.CustomerName,
		},
		Meta: map[string]string{
			"user_id": strconv.FormatInt(req.UserID, 10),
			"plan_id": req.PlanID,
		},
	}
	if req.PaymentMethodRef != "" {
		body.Meta["payment_method_ref"] = req.PaymentMethodRef
	}

	var resp flwPaymentResponse
	if err := p.do(ctx, "create_checkout", http.MethodPost, "/payments", body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Data.Link == "" {
		return nil, &ProviderError{Provider: p.Name(), Op: "create payment", Err: fmt.Errorf("provider answered %q: %s", resp.Status, resp.Message)}
	}

	return &Checkout{
		PaymentLink: resp.Data.Link,
		TxRef:       req.TxRef,
	}, nil
}

func (p *FlutterwaveProvider) VerifyTransaction(ctx context.Context, ref string) (*Verification, error) {
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(ref)

	var resp flwVerifyResponse
	if err := p.do(ctx, "verify_transaction", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, &ProviderError{Provider: p.Name(), Op: "verify transaction", Err: fmt.Errorf("provider answered %q: %s", resp.Status, resp.Message)}
	}

	userID, planID := metadataIdentity(resp.Data.Meta)
	return &Verification{
		Status:   strings.ToLower(resp.Data.Status),
		TxRef:    resp.Data.TxRef,
		Amount:   int64(resp.Data.Amount * 100),
		Currency: resp.Data.Currency,
		UserID:   userID,
		PlanID:   planID,
	}, nil
}

func (p *FlutterwaveProvider) CancelSubscription(ctx context.Context, providerSubRef string) error {
	path := "/subscriptions/" + url.PathEscape(providerSubRef) + "/cancel"

	var resp flwGenericResponse
	if err := p.do(ctx, "cancel_subscription", http.MethodPut, path, nil, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return &ProviderError{Provider: p.Name(), Op: "cancel subscription", Err: fmt.Errorf("provider answered %q: %s", resp.Status, resp.Message)}
	}
	return nil
}

type flwWebhookEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		ID       int64             `json:"id"`
		TxRef    string            `json:"tx_ref"`
		Status   string            `json:"status"`
		Amount   float64           `json:"amount"`
		Currency string            `json:"currency"`
		Meta     map[string]string `json:"meta"`
		Customer struct {
			ID int64 `json:"id"`
		} `json:"customer"`
	} `json:"data"`
}

// ParseWebhook authenticates the event with the verif-hash shared secret
// and decodes it into the internal event taxonomy.
func (p *FlutterwaveProvider) ParseWebhook(r *http.Request, payload []byte) (billing.Event, error) {
	sig := r.Header.Get("verif-hash")
	if sig == "" || p.webhookKey == "" ||
		subtle.ConstantTimeCompare([]byte(sig), []byte(p.webhookKey)) != 1 {
		return nil, ErrInvalidSignature
	}

	var env flwWebhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	switch env.Event {
	case "charge.completed":
		if strings.EqualFold(env.Data.Status, "successful") {
			userID, planID := metadataIdentity(env.Data.Meta)
			return billing.ChargeSucceeded{
				TxRef:               env.Data.TxRef,
				UserID:              userID,
				PlanID:              planID,
				Amount:              int64(env.Data.Amount * 100),
				Currency:            env.Data.Currency,
				ProviderCustomerRef: strconv.FormatInt(env.Data.Customer.ID, 10),
			}, nil
		}
		return billing.ChargeFailed{TxRef: env.Data.TxRef, Reason: env.Data.Status}, nil

	case "subscription.cancelled":
		return billing.SubscriptionCanceled{ProviderSubRef: strconv.FormatInt(env.Data.ID, 10)}, nil

	default:
		return billing.UnknownEvent{Type: env.Event}, nil
	}
}

func (p *FlutterwaveProvider) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	start := time.Now()

	_, err := p.cb.Execute(func() (interface{}, error) {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+p.secretKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))
		}

		return nil, json.Unmarshal(raw, out)
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderRequestsTotal.WithLabelValues(p.Name(), op, status).Inc()
	metrics.ProviderRequestDuration.WithLabelValues(p.Name(), op).Observe(time.Since(start).Seconds())

	if err != nil {
		return &ProviderError{Provider: p.Name(), Op: op, Err: err}
	}
	return nil
}

func formatMajorUnits(minor int64) string {
	return strconv.FormatFloat(float64(minor)/100, 'f', 2, 64)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
