package billing

// Event is a provider-pushed billing notification, decoded into one of a
// closed set of variants. Event shapes vary per provider and per type, so
// each provider parses its own payloads into these instead of handing
// untyped JSON around.
type Event interface {
	eventKind() string
}

// ChargeSucceeded reports a settled payment. UserID and PlanID come from
// the checkout metadata; a zero UserID means the event could not be
// correlated and must be dropped.
type ChargeSucceeded struct {
	TxRef               string
	UserID              int64
	PlanID              string
	Amount              int64
	Currency            string
	ProviderCustomerRef string
	ProviderSubRef      string
}

// ChargeFailed reports a declined or failed payment attempt.
type ChargeFailed struct {
	TxRef  string
	Reason string
}

// SubscriptionCanceled reports a provider-initiated cancellation, keyed by
// the provider's own subscription reference.
type SubscriptionCanceled struct {
	ProviderSubRef string
}

// UnknownEvent covers event types this service does not handle; they are
// acknowledged and ignored.
type UnknownEvent struct {
	Type string
}

func (ChargeSucceeded) eventKind() string      { return "charge_succeeded" }
func (ChargeFailed) eventKind() string         { return "charge_failed" }
func (SubscriptionCanceled) eventKind() string { return "subscription_canceled" }
func (UnknownEvent) eventKind() string         { return "unknown" }
