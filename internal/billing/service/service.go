package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"atelierhub/internal/billing"
	"atelierhub/internal/metrics"
	"atelierhub/internal/payment"
	"atelierhub/internal/user"
)

var (
	ErrInvalidPlan           = errors.New("invalid plan")
	ErrUserNotFound          = errors.New("user not found")
	ErrNoPendingSubscription = errors.New("no pending subscription to resolve")
	ErrNoActiveSubscription  = errors.New("no active subscription")
	ErrSubscriptionInactive  = errors.New("subscription is not active")
	ErrFeatureNotAvailable   = errors.New("feature not available on current plan")
	ErrPlanLimitReached      = errors.New("plan limit reached")
)

type SubscriptionRepository interface {
	UpsertPending(ctx context.Context, userID int64, planID, txRef, paymentMethodRef string) (*billing.Subscription, error)
	UpsertActive(ctx context.Context, act billing.Activation) (*billing.Subscription, bool, error)
	GetByUserID(ctx context.Context, userID int64) (*billing.Subscription, error)
	GetByTxRef(ctx context.Context, txRef string) (*billing.Subscription, error)
	CancelActiveByUserID(ctx context.Context, userID int64) (*billing.Subscription, error)
	MarkCanceledByProviderRef(ctx context.Context, providerSubRef string) (*billing.Subscription, error)
	DeleteByUserID(ctx context.Context, userID int64) error
	MarkOverdueDue(ctx context.Context, now time.Time) ([]*billing.Subscription, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	SetPlan(ctx context.Context, userID int64, plan string, isSubActive bool, subscriptionID *int64) error
	DowngradeExpiredTrials(ctx context.Context, now time.Time) (int64, error)
}

// UsageCounter reports how many of a resource a user currently holds.
type UsageCounter interface {
	CountForUser(ctx context.Context, userID int64) (int, error)
}

type Service struct {
	catalog     *billing.Catalog
	repo        SubscriptionRepository
	users       UserStore
	provider    payment.Provider
	counters    map[string]UsageCounter
	redirectURL string

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

func NewService(catalog *billing.Catalog, repo SubscriptionRepository, users UserStore, provider payment.Provider, redirectURL string) *Service {
	return &Service{
		catalog:     catalog,
		repo:        repo,
		users:       users,
		provider:    provider,
		counters:    make(map[string]UsageCounter),
		redirectURL: redirectURL,
		Now:         time.Now,
	}
}

// RegisterUsageCounter binds a resource kind to the repository that can
// count it.
func (s *Service) RegisterUsageCounter(resource string, counter UsageCounter) {
	s.counters[resource] = counter
}

func (s *Service) Plans() []billing.Plan {
	return s.catalog.All()
}

// StatusView is the caller-facing snapshot of a user's subscription.
type StatusView struct {
	Plan        string                `json:"plan"`
	IsSubActive bool                  `json:"is_sub_active"`
	Record      *billing.Subscription `json:"record,omitempty"`
}

func (s *Service) GetForUser(ctx context.Context, userID int64) (*StatusView, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatusView{
		Plan:        u.Plan,
		IsSubActive: u.IsSubActive,
		Record:      sub,
	}, nil
}

// CheckoutResult is returned by Subscribe. For the free plan the payment
// fields stay empty and the change is already effective.
type CheckoutResult struct {
	Plan        string `json:"plan"`
	PaymentLink string `json:"payment_link,omitempty"`
	TxRef       string `json:"tx_ref,omitempty"`
}

// Subscribe starts a plan change. The free plan is applied immediately;
// paid plans get a hosted checkout link and stay pending until the
// provider confirms payment. Local state is only written after the
// provider call succeeds, so a failed call leaves nothing half-updated.
func (s *Service) Subscribe(ctx context.Context, userID int64, planID, paymentMethodRef string) (*CheckoutResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	plan, ok := s.catalog.Get(planID)
	if !ok {
		return nil, ErrInvalidPlan
	}

	if plan.Price == 0 {
		// Free downgrade is synchronous and unconditional: no provider
		// call, no surviving record.
		if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
			return nil, err
		}
		if err := s.users.SetPlan(ctx, userID, billing.PlanFree, true, nil); err != nil {
			return nil, err
		}
		return &CheckoutResult{Plan: billing.PlanFree}, nil
	}

	txRef := newTxRef()
	checkout, err := s.provider.CreateCheckout(ctx, payment.CheckoutRequest{
		TxRef:            txRef,
		Amount:           plan.Price,
		Currency:         plan.Currency,
		CustomerEmail:    u.Email,
		CustomerName:     u.DisplayName,
		RedirectURL:      s.redirectURL,
		UserID:           userID,
		PlanID:           planID,
		PaymentMethodRef: paymentMethodRef,
	})
	if err != nil {
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	sub, err := s.repo.UpsertPending(ctx, userID, planID, txRef, paymentMethodRef)
	if err != nil {
		return nil, err
	}
	// Access is withheld until the payment confirms.
	if err := s.users.SetPlan(ctx, userID, planID, false, &sub.ID); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Plan:        planID,
		PaymentLink: checkout.PaymentLink,
		TxRef:       txRef,
	}, nil
}

// HandleEvent applies one provider event. Redeliveries are safe: the
// activation upsert is keyed by user id and guarded by transaction ref,
// and cancellation only touches non-canceled records.
func (s *Service) HandleEvent(ctx context.Context, ev billing.Event) error {
	switch e := ev.(type) {
	case billing.ChargeSucceeded:
		if e.UserID == 0 || e.PlanID == "" {
			log.Warn().Str("tx_ref", e.TxRef).Msg("charge succeeded without user/plan metadata, dropping")
			return nil
		}
		return s.activate(ctx, billing.Activation{
			UserID:              e.UserID,
			PlanID:              e.PlanID,
			TxRef:               e.TxRef,
			ProviderCustomerRef: e.ProviderCustomerRef,
			ProviderSubRef:      e.ProviderSubRef,
		})

	case billing.ChargeFailed:
		// A pending record stays pending; the user can retry checkout.
		log.Info().Str("tx_ref", e.TxRef).Str("reason", e.Reason).Msg("charge failed")
		return nil

	case billing.SubscriptionCanceled:
		sub, err := s.repo.MarkCanceledByProviderRef(ctx, e.ProviderSubRef)
		if err != nil {
			return fmt.Errorf("mark canceled: %w", err)
		}
		if sub == nil {
			log.Info().Str("provider_sub_ref", e.ProviderSubRef).Msg("cancellation for unknown or already-canceled subscription")
			return nil
		}
		return s.users.SetPlan(ctx, sub.UserID, billing.PlanFree, false, nil)

	case billing.UnknownEvent:
		log.Info().Str("type", e.Type).Msg("ignoring unhandled provider event")
		return nil

	default:
		log.Info().Str("kind", fmt.Sprintf("%T", ev)).Msg("ignoring unhandled provider event")
		return nil
	}
}

// VerifyResult reports the outcome of a callback verification. Success
// false means the payment is not (yet) confirmed; the client may poll.
type VerifyResult struct {
	Success bool   `json:"success"`
	Plan    string `json:"plan,omitempty"`
}

// VerifyCallback re-checks a transaction with the provider and, when the
// provider confirms it, applies the same activation the webhook path uses.
// The redirect's own status parameter is never consulted.
func (s *Service) VerifyCallback(ctx context.Context, ref string) (*VerifyResult, error) {
	v, err := s.provider.VerifyTransaction(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("verify transaction: %w", err)
	}

	if v.Status != payment.VerificationSuccessful {
		return &VerifyResult{Success: false}, nil
	}

	txRef := v.TxRef
	if txRef == "" {
		txRef = ref
	}

	userID := v.UserID
	planID := v.PlanID
	if sub, err := s.repo.GetByTxRef(ctx, txRef); err != nil {
		return nil, err
	} else if sub != nil {
		userID = sub.UserID
		planID = sub.PlanID
	}
	if userID == 0 || planID == "" {
		return nil, ErrNoPendingSubscription
	}

	if err := s.activate(ctx, billing.Activation{
		UserID: userID,
		PlanID: planID,
		TxRef:  txRef,
	}); err != nil {
		return nil, err
	}

	return &VerifyResult{Success: true, Plan: planID}, nil
}

// Cancel ends the caller's paid subscription immediately. The provider is
// told first; local state is only touched once that call succeeds.
func (s *Service) Cancel(ctx context.Context, userID int64) error {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if sub == nil || (sub.Status != billing.StatusActive && sub.Status != billing.StatusOverdue) {
		return ErrNoActiveSubscription
	}

	if sub.ProviderSubscriptionRef != "" {
		if err := s.provider.CancelSubscription(ctx, sub.ProviderSubscriptionRef); err != nil {
			return fmt.Errorf("cancel with provider: %w", err)
		}
	}

	if _, err := s.repo.CancelActiveByUserID(ctx, userID); err != nil {
		return err
	}
	return s.users.SetPlan(ctx, userID, billing.PlanFree, false, nil)
}

// activate is the single convergence point for webhook- and
// callback-triggered activations.
func (s *Service) activate(ctx context.Context, act billing.Activation) error {
	plan, ok := s.catalog.Get(act.PlanID)
	if !ok || plan.Price == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPlan, act.PlanID)
	}

	act.StartDate = s.Now()
	act.DueDate = act.StartDate.AddDate(0, 0, plan.BillingIntervalDays)

	sub, applied, err := s.repo.UpsertActive(ctx, act)
	if err != nil {
		return fmt.Errorf("upsert active subscription: %w", err)
	}
	if !applied {
		// Replayed transaction against a non-pending record. The record
		// may since have been canceled, so user state stays untouched.
		log.Info().
			Int64("user_id", act.UserID).
			Str("tx_ref", act.TxRef).
			Msg("activation already applied, ignoring redelivery")
		return nil
	}

	if err := s.users.SetPlan(ctx, act.UserID, act.PlanID, true, &sub.ID); err != nil {
		return err
	}

	metrics.SubscriptionActivations.WithLabelValues(act.PlanID).Inc()
	log.Info().
		Int64("user_id", act.UserID).
		Str("plan", act.PlanID).
		Str("tx_ref", act.TxRef).
		Time("due_date", act.DueDate).
		Msg("subscription activated")
	return nil
}

// CheckFeature gates a boolean plan feature.
func (s *Service) CheckFeature(ctx context.Context, userID int64, feature string) error {
	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return err
	}
	if !plan.HasFeature(feature) {
		return ErrFeatureNotAvailable
	}
	return nil
}

// CheckUsageLimit gates creation of a count-limited resource.
func (s *Service) CheckUsageLimit(ctx context.Context, userID int64, resource string) error {
	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return err
	}

	limit, known := plan.LimitFor(resource)
	if !known {
		return fmt.Errorf("unknown resource kind %q", resource)
	}
	if limit == 0 {
		return nil
	}

	counter, ok := s.counters[resource]
	if !ok {
		return fmt.Errorf("no usage counter registered for %q", resource)
	}
	n, err := counter.CountForUser(ctx, userID)
	if err != nil {
		return err
	}
	if n >= limit {
		return ErrPlanLimitReached
	}
	return nil
}

func (s *Service) planFor(ctx context.Context, userID int64) (billing.Plan, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return billing.Plan{}, ErrUserNotFound
	}
	if !u.IsSubActive {
		return billing.Plan{}, ErrSubscriptionInactive
	}
	plan, ok := s.catalog.Get(u.Plan)
	if !ok {
		return billing.Plan{}, fmt.Errorf("%w: %q", ErrInvalidPlan, u.Plan)
	}
	return plan, nil
}

// newTxRef builds a transaction reference that is unique per attempt, so
// repeated checkouts never collide on the provider side.
func newTxRef() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("AH-%d-%s", time.Now().Unix(), suffix)
}
