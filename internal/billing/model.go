package billing

import "time"

// Status captures the lifecycle of a subscription record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusOverdue  Status = "overdue"
)

// Subscription is the persisted billing state for one user. A user has at
// most one record; free-tier users have none and the user's plan column is
// the source of truth for them.
type Subscription struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	PlanID string `json:"plan_id"`
	Status Status `json:"status"`

	// Opaque correlation handles into the payment provider.
	ProviderCustomerRef     string `json:"provider_customer_ref,omitempty"`
	ProviderSubscriptionRef string `json:"provider_subscription_ref,omitempty"`
	ProviderTxRef           string `json:"provider_tx_ref,omitempty"`
	PaymentMethodRef        string `json:"payment_method_ref,omitempty"`

	// Paid-period boundaries; nil while the record is pending.
	StartDate *time.Time `json:"start_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activation is the single state transition both the webhook consumer and
// the callback verifier funnel into.
type Activation struct {
	UserID              int64
	PlanID              string
	TxRef               string
	ProviderCustomerRef string
	ProviderSubRef      string
	StartDate           time.Time
	DueDate             time.Time
}
