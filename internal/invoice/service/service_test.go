package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelierhub/internal/billing"
	billingservice "atelierhub/internal/billing/service"
	"atelierhub/internal/invoice"
)

type fakeInvoiceRepo struct {
	nextID   int64
	invoices map[int64]*invoice.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[int64]*invoice.Invoice)}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *invoice.Invoice) error {
	r.nextID++
	inv.ID = r.nextID
	r.invoices[inv.ID] = inv
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, userID, id int64) (*invoice.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, nil
	}
	return inv, nil
}

func (r *fakeInvoiceRepo) ListByUser(_ context.Context, userID int64) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(_ context.Context, userID, id int64, status string) error {
	inv, ok := r.invoices[id]
	if !ok || inv.UserID != userID {
		return fmt.Errorf("not found")
	}
	inv.Status = status
	return nil
}

func (r *fakeInvoiceRepo) NextNumber(_ context.Context, userID int64) (string, error) {
	return fmt.Sprintf("INV-%d-%04d", userID, len(r.invoices)+1), nil
}

type featureGate struct{ err error }

func (g featureGate) CheckFeature(context.Context, int64, string) error { return g.err }

func TestCreateComputesTotal(t *testing.T) {
	svc := NewService(newFakeInvoiceRepo(), featureGate{}, "USD")

	inv, err := svc.Create(context.Background(), 1, 10, []LineInput{
		{Description: "Bridal gown, silk", Quantity: 1, UnitAmount: 120000},
		{Description: "Fitting session", Quantity: 3, UnitAmount: 5000},
	})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusDraft, inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, int64(135000), inv.Total)
	assert.Equal(t, "INV-1-0001", inv.Number)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, int64(15000), inv.Lines[1].Amount())
}

func TestCreateRequiresInvoicingFeature(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := NewService(repo, featureGate{err: billingservice.ErrFeatureNotAvailable}, "USD")

	_, err := svc.Create(context.Background(), 1, 10, []LineInput{
		{Description: "Fitting session", Quantity: 1, UnitAmount: 5000},
	})
	assert.ErrorIs(t, err, billingservice.ErrFeatureNotAvailable)
	assert.Empty(t, repo.invoices)

	// Same shape for a user whose subscription lapsed.
	svc = NewService(repo, featureGate{err: billingservice.ErrSubscriptionInactive}, "USD")
	_, err = svc.Create(context.Background(), 1, 10, []LineInput{
		{Description: "Fitting session", Quantity: 1, UnitAmount: 5000},
	})
	assert.ErrorIs(t, err, billingservice.ErrSubscriptionInactive)
}

func TestCreateRejectsEmptyInvoice(t *testing.T) {
	svc := NewService(newFakeInvoiceRepo(), featureGate{}, "USD")

	_, err := svc.Create(context.Background(), 1, 10, nil)
	assert.ErrorIs(t, err, ErrNoLines)
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc := NewService(repo, featureGate{}, "USD")

	inv, err := svc.Create(context.Background(), 1, 10, []LineInput{
		{Description: "Fitting session", Quantity: 1, UnitAmount: 5000},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), 1, inv.ID, invoice.StatusIssued))
	got, err := svc.Get(context.Background(), 1, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusIssued, got.Status)

	assert.ErrorIs(t, svc.UpdateStatus(context.Background(), 1, inv.ID, "archived"), ErrUnknownStatus)
}

func TestFeatureGateOnBillingConstant(t *testing.T) {
	// The gate must be asked about the invoicing feature specifically.
	var gotFeature string
	gate := featureGateFunc(func(_ context.Context, _ int64, feature string) error {
		gotFeature = feature
		return nil
	})
	svc := NewService(newFakeInvoiceRepo(), gate, "USD")

	_, err := svc.Create(context.Background(), 1, 10, []LineInput{
		{Description: "Fitting session", Quantity: 1, UnitAmount: 5000},
	})
	require.NoError(t, err)
	assert.Equal(t, billing.FeatureInvoicing, gotFeature)
}

type featureGateFunc func(ctx context.Context, userID int64, feature string) error

func (f featureGateFunc) CheckFeature(ctx context.Context, userID int64, feature string) error {
	return f(ctx, userID, feature)
}
