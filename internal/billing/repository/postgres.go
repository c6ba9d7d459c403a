package repository

import (
	"context"
	"database/sql"
	"time"

	"atelierhub/internal/billing"
)

type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, plan_id, status, provider_customer_ref, provider_subscription_ref,
	provider_tx_ref, payment_method_ref, start_date, due_date, created_at, updated_at`

func scanSubscription(row *sql.Row) (*billing.Subscription, error) {
	sub := &billing.Subscription{}
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.PlanID,
		&sub.Status,
		&sub.ProviderCustomerRef,
		&sub.ProviderSubscriptionRef,
		&sub.ProviderTxRef,
		&sub.PaymentMethodRef,
		&sub.StartDate,
		&sub.DueDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

// UpsertPending creates or replaces the user's record with a fresh pending
// checkout. The unique index on user_id makes concurrent attempts converge
// on one row. Provider references from a previous record are cleared so
// stale redelivered events keyed on them cannot touch the new checkout.
func (r *SubscriptionRepository) UpsertPending(ctx context.Context, userID int64, planID, txRef, paymentMethodRef string) (*billing.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, status, provider_tx_ref, payment_method_ref, created_at, updated_at)
		 VALUES ($1, $2, 'pending', $3, $4, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   plan_id = EXCLUDED.plan_id,
		   status = 'pending',
		   provider_customer_ref = '',
		   provider_subscription_ref = '',
		   provider_tx_ref = EXCLUDED.provider_tx_ref,
		   payment_method_ref = EXCLUDED.payment_method_ref,
		   start_date = NULL,
		   due_date = NULL,
		   updated_at = NOW()
		 RETURNING `+subscriptionColumns,
		userID, planID, txRef, paymentMethodRef)
	return scanSubscription(row)
}

// UpsertActive applies an activation. A transaction reference is applied
// at most once: replaying it against any non-pending record is a no-op, so
// webhook redeliveries neither advance the period nor resurrect a canceled
// record. The second return value reports whether the activation was
// actually applied.
func (r *SubscriptionRepository) UpsertActive(ctx context.Context, act billing.Activation) (*billing.Subscription, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, status, provider_customer_ref, provider_subscription_ref,
		                            provider_tx_ref, start_date, due_date, created_at, updated_at)
		 VALUES ($1, $2, 'active', $3, $4, $5, $6, $7, NOW(), NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   plan_id = EXCLUDED.plan_id,
		   status = 'active',
		   provider_customer_ref = COALESCE(NULLIF(EXCLUDED.provider_customer_ref, ''), subscriptions.provider_customer_ref),
		   provider_subscription_ref = COALESCE(NULLIF(EXCLUDED.provider_subscription_ref, ''), subscriptions.provider_subscription_ref),
		   provider_tx_ref = EXCLUDED.provider_tx_ref,
		   start_date = EXCLUDED.start_date,
		   due_date = EXCLUDED.due_date,
		   updated_at = NOW()
		 WHERE subscriptions.status = 'pending' OR subscriptions.provider_tx_ref <> EXCLUDED.provider_tx_ref
		 RETURNING `+subscriptionColumns,
		act.UserID, act.PlanID, act.ProviderCustomerRef, act.ProviderSubRef,
		act.TxRef, act.StartDate, act.DueDate)

	sub, err := scanSubscription(row)
	if err != nil {
		return nil, false, err
	}
	if sub != nil {
		return sub, true, nil
	}

	// The guard skipped the update: same transaction already applied.
	existing, err := r.GetByUserID(ctx, act.UserID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*billing.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1`, userID)
	return scanSubscription(row)
}

func (r *SubscriptionRepository) GetByTxRef(ctx context.Context, txRef string) (*billing.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE provider_tx_ref = $1`, txRef)
	return scanSubscription(row)
}

// CancelActiveByUserID marks the user's paid record canceled. Returns nil
// when there is nothing to cancel.
func (r *SubscriptionRepository) CancelActiveByUserID(ctx context.Context, userID int64) (*billing.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE subscriptions SET status = 'canceled', updated_at = NOW()
		 WHERE user_id = $1 AND status IN ('active', 'overdue')
		 RETURNING `+subscriptionColumns, userID)
	return scanSubscription(row)
}

// MarkCanceledByProviderRef applies a provider-initiated cancellation.
// Already-canceled records are left alone, which also keeps later events
// for the same provider reference from resurrecting them.
func (r *SubscriptionRepository) MarkCanceledByProviderRef(ctx context.Context, providerSubRef string) (*billing.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE subscriptions SET status = 'canceled', updated_at = NOW()
		 WHERE provider_subscription_ref = $1 AND status <> 'canceled'
		 RETURNING `+subscriptionColumns, providerSubRef)
	return scanSubscription(row)
}

func (r *SubscriptionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE user_id = $1`, userID)
	return err
}

// MarkOverdueDue moves active records whose due date has passed to overdue
// and returns them so the caller can adjust the owners' entitlement flags.
func (r *SubscriptionRepository) MarkOverdueDue(ctx context.Context, now time.Time) ([]*billing.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`UPDATE subscriptions SET status = 'overdue', updated_at = NOW()
		 WHERE status = 'active' AND due_date IS NOT NULL AND due_date <= $1
		 RETURNING `+subscriptionColumns, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*billing.Subscription
	for rows.Next() {
		sub := &billing.Subscription{}
		if err := rows.Scan(
			&sub.ID,
			&sub.UserID,
			&sub.PlanID,
			&sub.Status,
			&sub.ProviderCustomerRef,
			&sub.ProviderSubscriptionRef,
			&sub.ProviderTxRef,
			&sub.PaymentMethodRef,
			&sub.StartDate,
			&sub.DueDate,
			&sub.CreatedAt,
			&sub.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
