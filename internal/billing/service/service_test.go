package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelierhub/internal/billing"
	"atelierhub/internal/payment"
	"atelierhub/internal/user"
)

// fakeSubRepo is an in-memory SubscriptionRepository with the same
// at-most-one-record-per-user and replay-guard semantics as the Postgres
// implementation.
type fakeSubRepo struct {
	nextID int64
	byUser map[int64]*billing.Subscription
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{byUser: make(map[int64]*billing.Subscription)}
}

func (r *fakeSubRepo) UpsertPending(_ context.Context, userID int64, planID, txRef, paymentMethodRef string) (*billing.Subscription, error) {
	sub, ok := r.byUser[userID]
	if !ok {
		r.nextID++
		sub = &billing.Subscription{ID: r.nextID, UserID: userID, CreatedAt: time.Now()}
		r.byUser[userID] = sub
	}
	sub.PlanID = planID
	sub.Status = billing.StatusPending
	sub.ProviderCustomerRef = ""
	sub.ProviderSubscriptionRef = ""
	sub.ProviderTxRef = txRef
	sub.PaymentMethodRef = paymentMethodRef
	sub.StartDate = nil
	sub.DueDate = nil
	sub.UpdatedAt = time.Now()
	cp := *sub
	return &cp, nil
}

func (r *fakeSubRepo) UpsertActive(_ context.Context, act billing.Activation) (*billing.Subscription, bool, error) {
	sub, ok := r.byUser[act.UserID]
	if ok && sub.Status != billing.StatusPending && sub.ProviderTxRef == act.TxRef {
		// Replay of an already-applied transaction: no-op, whatever state
		// the record has since moved to.
		cp := *sub
		return &cp, false, nil
	}
	if !ok {
		r.nextID++
		sub = &billing.Subscription{ID: r.nextID, UserID: act.UserID, CreatedAt: time.Now()}
		r.byUser[act.UserID] = sub
	}
	sub.PlanID = act.PlanID
	sub.Status = billing.StatusActive
	sub.ProviderTxRef = act.TxRef
	if act.ProviderCustomerRef != "" {
		sub.ProviderCustomerRef = act.ProviderCustomerRef
	}
	if act.ProviderSubRef != "" {
		sub.ProviderSubscriptionRef = act.ProviderSubRef
	}
	start, due := act.StartDate, act.DueDate
	sub.StartDate = &start
	sub.DueDate = &due
	sub.UpdatedAt = time.Now()
	cp := *sub
	return &cp, true, nil
}

func (r *fakeSubRepo) GetByUserID(_ context.Context, userID int64) (*billing.Subscription, error) {
	sub, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubRepo) GetByTxRef(_ context.Context, txRef string) (*billing.Subscription, error) {
	for _, sub := range r.byUser {
		if sub.ProviderTxRef == txRef {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSubRepo) CancelActiveByUserID(_ context.Context, userID int64) (*billing.Subscription, error) {
	sub, ok := r.byUser[userID]
	if !ok || (sub.Status != billing.StatusActive && sub.Status != billing.StatusOverdue) {
		return nil, nil
	}
	sub.Status = billing.StatusCanceled
	sub.UpdatedAt = time.Now()
	cp := *sub
	return &cp, nil
}

func (r *fakeSubRepo) MarkCanceledByProviderRef(_ context.Context, providerSubRef string) (*billing.Subscription, error) {
	for _, sub := range r.byUser {
		if sub.ProviderSubscriptionRef == providerSubRef && sub.Status != billing.StatusCanceled {
			sub.Status = billing.StatusCanceled
			sub.UpdatedAt = time.Now()
			cp := *sub
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSubRepo) DeleteByUserID(_ context.Context, userID int64) error {
	delete(r.byUser, userID)
	return nil
}

func (r *fakeSubRepo) MarkOverdueDue(_ context.Context, now time.Time) ([]*billing.Subscription, error) {
	var out []*billing.Subscription
	for _, sub := range r.byUser {
		if sub.Status == billing.StatusActive && sub.DueDate != nil && sub.DueDate.Before(now) {
			sub.Status = billing.StatusOverdue
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[int64]*user.User
}

func newFakeUserStore(users ...*user.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*user.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) SetPlan(_ context.Context, userID int64, plan string, isSubActive bool, subscriptionID *int64) error {
	u, ok := s.users[userID]
	if !ok {
		return errors.New("no rows")
	}
	u.Plan = plan
	u.IsSubActive = isSubActive
	u.SubscriptionID = subscriptionID
	return nil
}

func (s *fakeUserStore) DowngradeExpiredTrials(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Plan != billing.PlanFree && u.SubscriptionID == nil && u.TrialEndsAt != nil && !u.TrialEndsAt.After(now) {
			u.Plan = billing.PlanFree
			u.TrialEndsAt = nil
			n++
		}
	}
	return n, nil
}

type fixedCounter int

func (c fixedCounter) CountForUser(context.Context, int64) (int, error) { return int(c), nil }

func newTestService(t *testing.T, users *fakeUserStore) (*Service, *fakeSubRepo, *payment.MockProvider) {
	t.Helper()
	repo := newFakeSubRepo()
	provider := payment.NewMockProvider()
	svc := NewService(billing.NewCatalog(billing.CatalogOverrides{}), repo, users, provider, "https://app.test/billing/return")
	return svc, repo, provider
}

func testUser(id int64) *user.User {
	return &user.User{ID: id, Email: "maker@example.com", DisplayName: "Maker", Plan: billing.PlanFree, IsSubActive: true}
}

func TestSubscribePaidPlanIsPendingUntilConfirmed(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, provider := newTestService(t, users)

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, err)
	assert.Equal(t, billing.PlanPremium, res.Plan)
	assert.NotEmpty(t, res.PaymentLink)
	assert.NotEmpty(t, res.TxRef)

	require.Len(t, provider.CheckoutRequests, 1)
	assert.Equal(t, int64(2900), provider.CheckoutRequests[0].Amount)

	sub, err := repo.GetByUserID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, billing.StatusPending, sub.Status)
	assert.Nil(t, sub.StartDate)

	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanPremium, u.Plan)
	assert.False(t, u.IsSubActive, "access must be withheld while payment is pending")
}

func TestSubscribeProviderFailureLeavesNothingBehind(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, provider := newTestService(t, users)
	provider.CreateCheckoutErr = errors.New("gateway down")

	_, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.Error(t, err)

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Nil(t, sub, "no record may exist when the provider call failed")
	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanFree, u.Plan)
	assert.True(t, u.IsSubActive)
}

func TestSubscribeFreeDowngradeSkipsProvider(t *testing.T) {
	u := testUser(1)
	u.Plan = billing.PlanPremium
	users := newFakeUserStore(u)
	svc, repo, provider := newTestService(t, users)

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanFree, "")
	require.NoError(t, err)
	assert.Equal(t, billing.PlanFree, res.Plan)
	assert.Empty(t, res.PaymentLink)

	assert.Empty(t, provider.CheckoutRequests, "free downgrade must not touch the provider")
	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Nil(t, sub)
	got, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanFree, got.Plan)
	assert.True(t, got.IsSubActive)
}

func TestSubscribeInvalidPlan(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, _, _ := newTestService(t, users)

	_, err := svc.Subscribe(context.Background(), 1, "platinum", "")
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestChargeSucceededActivatesSubscription(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, err)

	err = svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
		TxRef:          res.TxRef,
		UserID:         1,
		PlanID:         billing.PlanPremium,
		ProviderSubRef: "psub_1",
	})
	require.NoError(t, err)

	sub, _ := repo.GetByUserID(context.Background(), 1)
	require.NotNil(t, sub)
	assert.Equal(t, billing.StatusActive, sub.Status)
	require.NotNil(t, sub.StartDate)
	require.NotNil(t, sub.DueDate)
	assert.Equal(t, now, *sub.StartDate)
	assert.Equal(t, now.AddDate(0, 0, 30), *sub.DueDate)

	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanPremium, u.Plan)
	assert.True(t, u.IsSubActive)
	require.NotNil(t, u.SubscriptionID)
	assert.Equal(t, sub.ID, *u.SubscriptionID)
}

func TestChargeSucceededRedeliveryIsIdempotent(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, err)

	ev := billing.ChargeSucceeded{TxRef: res.TxRef, UserID: 1, PlanID: billing.PlanPremium}
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	first, _ := repo.GetByUserID(context.Background(), 1)

	// Redeliver the same event later; dates must not move.
	svc.Now = func() time.Time { return now.AddDate(0, 0, 3) }
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	second, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, first.ID, second.ID, "replay must not create a second record")
	assert.Equal(t, *first.StartDate, *second.StartDate)
	assert.Equal(t, *first.DueDate, *second.DueDate)
}

func TestChargeSucceededWithoutMetadataIsDropped(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	err := svc.HandleEvent(context.Background(), billing.ChargeSucceeded{TxRef: "AH-1-unknown"})
	require.NoError(t, err, "uncorrelatable events are acknowledged, not retried")

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Nil(t, sub)
}

func TestChargeFailedKeepsRecordPending(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, err)

	require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeFailed{TxRef: res.TxRef, Reason: "card_declined"}))

	sub, _ := repo.GetByUserID(context.Background(), 1)
	require.NotNil(t, sub)
	assert.Equal(t, billing.StatusPending, sub.Status)
	u, _ := users.GetByID(context.Background(), 1)
	assert.False(t, u.IsSubActive)
}

func TestVerifyCallbackActivatesOnProviderConfirmation(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, provider := newTestService(t, users)

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, err)

	provider.Verifications[res.TxRef] = &payment.Verification{
		Status: payment.VerificationSuccessful,
		TxRef:  res.TxRef,
	}

	out, err := svc.VerifyCallback(context.Background(), res.TxRef)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, billing.PlanPremium, out.Plan)

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusActive, sub.Status)
}

func TestVerifyCallbackRejectsUnconfirmedTransaction(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	res, err := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, err)

	// The mock reports "failed" for any ref with no canned result, which is
	// exactly what a forged redirect with a guessed ref would hit.
	out, err := svc.VerifyCallback(context.Background(), res.TxRef)
	require.NoError(t, err)
	assert.False(t, out.Success)

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusPending, sub.Status, "nothing may activate without provider confirmation")
	u, _ := users.GetByID(context.Background(), 1)
	assert.False(t, u.IsSubActive)
}

func TestVerifyCallbackUnknownRefConfirmedByProvider(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, _, provider := newTestService(t, users)

	// Provider confirms a transaction we have no record of and supplies no
	// usable metadata either.
	provider.Verifications["AH-0-stray"] = &payment.Verification{
		Status: payment.VerificationSuccessful,
		TxRef:  "AH-0-stray",
	}

	_, err := svc.VerifyCallback(context.Background(), "AH-0-stray")
	assert.ErrorIs(t, err, ErrNoPendingSubscription)
}

func TestCancelTellsProviderFirst(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, provider := newTestService(t, users)

	res, _ := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
		TxRef: res.TxRef, UserID: 1, PlanID: billing.PlanPremium, ProviderSubRef: "psub_1",
	}))

	require.NoError(t, svc.Cancel(context.Background(), 1))

	assert.Equal(t, []string{"psub_1"}, provider.CanceledRefs)
	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanFree, u.Plan)
	assert.False(t, u.IsSubActive)
}

func TestCancelProviderFailureLeavesStateUntouched(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, provider := newTestService(t, users)

	res, _ := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
		TxRef: res.TxRef, UserID: 1, PlanID: billing.PlanPremium, ProviderSubRef: "psub_1",
	}))

	provider.CancelSubscriptionErr = errors.New("gateway down")
	err := svc.Cancel(context.Background(), 1)
	require.Error(t, err)

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusActive, sub.Status)
	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanPremium, u.Plan)
}

func TestCancelWithoutActiveSubscription(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, _, _ := newTestService(t, users)

	err := svc.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestCancellationIsTerminalForProviderRef(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	res, _ := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
		TxRef: res.TxRef, UserID: 1, PlanID: billing.PlanPremium, ProviderSubRef: "psub_1",
	}))
	require.NoError(t, svc.HandleEvent(context.Background(), billing.SubscriptionCanceled{ProviderSubRef: "psub_1"}))

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusCanceled, sub.Status)

	// A stale redelivery referencing the canceled subscription does nothing.
	require.NoError(t, svc.HandleEvent(context.Background(), billing.SubscriptionCanceled{ProviderSubRef: "psub_1"}))
	sub, _ = repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanFree, u.Plan)
}

func TestReplayedChargeDoesNotResurrectCanceledSubscription(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	res, _ := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	ev := billing.ChargeSucceeded{
		TxRef: res.TxRef, UserID: 1, PlanID: billing.PlanPremium, ProviderSubRef: "psub_1",
	}
	require.NoError(t, svc.HandleEvent(context.Background(), ev))
	require.NoError(t, svc.HandleEvent(context.Background(), billing.SubscriptionCanceled{ProviderSubRef: "psub_1"}))

	// The provider redelivers the original success event after the
	// cancellation. The record must stay canceled and the user free.
	require.NoError(t, svc.HandleEvent(context.Background(), ev))

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusCanceled, sub.Status)
	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanFree, u.Plan)
	assert.False(t, u.IsSubActive)
}

func TestStaleCancellationDoesNotTouchNewCheckout(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, repo, _ := newTestService(t, users)

	res, _ := svc.Subscribe(context.Background(), 1, billing.PlanPremium, "")
	require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
		TxRef: res.TxRef, UserID: 1, PlanID: billing.PlanPremium, ProviderSubRef: "psub_1",
	}))
	require.NoError(t, svc.Cancel(context.Background(), 1))

	// The user starts a new checkout; the old record is replaced by a
	// pending one with the previous provider references cleared.
	_, err := svc.Subscribe(context.Background(), 1, billing.PlanEnterprise, "")
	require.NoError(t, err)

	// A late redelivery of the cancellation for the old provider ref must
	// not cancel the new pending checkout.
	require.NoError(t, svc.HandleEvent(context.Background(), billing.SubscriptionCanceled{ProviderSubRef: "psub_1"}))

	sub, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusPending, sub.Status)
	assert.Equal(t, billing.PlanEnterprise, sub.PlanID)
}

func TestCheckFeature(t *testing.T) {
	free := testUser(1)
	premium := testUser(2)
	premium.Plan = billing.PlanPremium
	inactive := testUser(3)
	inactive.Plan = billing.PlanPremium
	inactive.IsSubActive = false

	users := newFakeUserStore(free, premium, inactive)
	svc, _, _ := newTestService(t, users)

	assert.ErrorIs(t, svc.CheckFeature(context.Background(), 1, billing.FeatureInvoicing), ErrFeatureNotAvailable)
	assert.NoError(t, svc.CheckFeature(context.Background(), 2, billing.FeatureInvoicing))
	assert.ErrorIs(t, svc.CheckFeature(context.Background(), 3, billing.FeatureInvoicing), ErrSubscriptionInactive)
}

func TestCheckUsageLimit(t *testing.T) {
	free := testUser(1)
	premium := testUser(2)
	premium.Plan = billing.PlanPremium

	users := newFakeUserStore(free, premium)
	svc, _, _ := newTestService(t, users)

	svc.RegisterUsageCounter(billing.ResourceClients, fixedCounter(5))
	assert.ErrorIs(t, svc.CheckUsageLimit(context.Background(), 1, billing.ResourceClients), ErrPlanLimitReached,
		"free tier caps at 5 clients")
	assert.NoError(t, svc.CheckUsageLimit(context.Background(), 2, billing.ResourceClients),
		"premium clients are unlimited")

	svc.RegisterUsageCounter(billing.ResourceClients, fixedCounter(4))
	assert.NoError(t, svc.CheckUsageLimit(context.Background(), 1, billing.ResourceClients))
}

func TestSweepMarksPastDueOverdue(t *testing.T) {
	users := newFakeUserStore(testUser(1), testUser(2))
	svc, repo, _ := newTestService(t, users)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return start }

	for _, id := range []int64{1, 2} {
		res, _ := svc.Subscribe(context.Background(), id, billing.PlanPremium, "")
		require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
			TxRef: res.TxRef, UserID: id, PlanID: billing.PlanPremium,
		}))
	}

	// User 2 renews a week later, so only user 1 is past due at sweep time.
	svc.Now = func() time.Time { return start.AddDate(0, 0, 7) }
	require.NoError(t, svc.HandleEvent(context.Background(), billing.ChargeSucceeded{
		TxRef: "AH-2-renewal", UserID: 2, PlanID: billing.PlanPremium,
	}))

	svc.Now = func() time.Time { return start.AddDate(0, 0, 31) }
	require.NoError(t, svc.Sweep(context.Background()))

	sub1, _ := repo.GetByUserID(context.Background(), 1)
	assert.Equal(t, billing.StatusOverdue, sub1.Status)
	u1, _ := users.GetByID(context.Background(), 1)
	assert.False(t, u1.IsSubActive)
	assert.Equal(t, billing.PlanPremium, u1.Plan, "plan is kept so the user can settle up")

	sub2, _ := repo.GetByUserID(context.Background(), 2)
	assert.Equal(t, billing.StatusActive, sub2.Status)
	u2, _ := users.GetByID(context.Background(), 2)
	assert.True(t, u2.IsSubActive)
}

func TestSweepDowngradesExpiredTrials(t *testing.T) {
	trial := testUser(1)
	trial.Plan = billing.PlanPremium
	ends := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	trial.TrialEndsAt = &ends

	users := newFakeUserStore(trial)
	svc, _, _ := newTestService(t, users)
	svc.Now = func() time.Time { return ends.AddDate(0, 0, 1) }

	require.NoError(t, svc.Sweep(context.Background()))

	u, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, billing.PlanFree, u.Plan)
	assert.Nil(t, u.TrialEndsAt)
}

func TestGetForUser(t *testing.T) {
	users := newFakeUserStore(testUser(1))
	svc, _, _ := newTestService(t, users)

	view, err := svc.GetForUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, billing.PlanFree, view.Plan)
	assert.True(t, view.IsSubActive)
	assert.Nil(t, view.Record, "free-tier users carry no subscription record")
}
