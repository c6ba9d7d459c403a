package billing

// Plan is a service tier with its price and entitlement ceilings.
// A zero ceiling means unlimited.
type Plan struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Price               int64    `json:"price"` // minor units per billing interval
	Currency            string   `json:"currency"`
	BillingIntervalDays int      `json:"billing_interval_days"`
	Features            []string `json:"features,omitempty"`
	MaxClients          int      `json:"max_clients"`
	MaxProjects         int      `json:"max_projects"`
	AIGenerationsMonth  int      `json:"ai_generations_per_month"`
}

// Well-known plan identifiers.
const (
	PlanFree       = "free"
	PlanPremium    = "premium"
	PlanEnterprise = "enterprise"
)

// Feature flags gated by plan tier.
const (
	FeatureInvoicing  = "invoicing"
	FeatureAIPatterns = "ai_patterns"
	FeatureCalendar   = "calendar"
)

// Usage-limited resource kinds.
const (
	ResourceClients       = "clients"
	ResourceProjects      = "projects"
	ResourceAIGenerations = "ai_generations"
)

func (p Plan) HasFeature(name string) bool {
	for _, f := range p.Features {
		if f == name {
			return true
		}
	}
	return false
}

// LimitFor returns the ceiling for a resource kind, 0 meaning unlimited,
// and whether the resource kind is known at all.
func (p Plan) LimitFor(resource string) (int, bool) {
	switch resource {
	case ResourceClients:
		return p.MaxClients, true
	case ResourceProjects:
		return p.MaxProjects, true
	case ResourceAIGenerations:
		return p.AIGenerationsMonth, true
	default:
		return 0, false
	}
}

// Catalog is the immutable plan table, constructed once at startup and
// injected into the billing service.
type Catalog struct {
	plans    map[string]Plan
	ordered  []Plan
	currency string
}

// CatalogOverrides carries environment-sourced price overrides in minor
// units; zero keeps the default.
type CatalogOverrides struct {
	Currency        string
	PremiumPrice    int64
	EnterprisePrice int64
}

func NewCatalog(ov CatalogOverrides) *Catalog {
	currency := ov.Currency
	if currency == "" {
		currency = "USD"
	}

	premiumPrice := int64(2900)
	if ov.PremiumPrice > 0 {
		premiumPrice = ov.PremiumPrice
	}
	enterprisePrice := int64(9900)
	if ov.EnterprisePrice > 0 {
		enterprisePrice = ov.EnterprisePrice
	}

	plans := []Plan{
		{
			ID:                  PlanFree,
			Name:                "Free",
			Price:               0,
			Currency:            currency,
			BillingIntervalDays: 30,
			MaxClients:          5,
			MaxProjects:         3,
			AIGenerationsMonth:  10,
		},
		{
			ID:                  PlanPremium,
			Name:                "Premium",
			Price:               premiumPrice,
			Currency:            currency,
			BillingIntervalDays: 30,
			Features:            []string{FeatureInvoicing, FeatureAIPatterns, FeatureCalendar},
		},
		{
			ID:                  PlanEnterprise,
			Name:                "Enterprise",
			Price:               enterprisePrice,
			Currency:            currency,
			BillingIntervalDays: 30,
			Features:            []string{FeatureInvoicing, FeatureAIPatterns, FeatureCalendar},
		},
	}

	c := &Catalog{
		plans:    make(map[string]Plan, len(plans)),
		ordered:  plans,
		currency: currency,
	}
	for _, p := range plans {
		c.plans[p.ID] = p
	}
	return c
}

func (c *Catalog) Get(id string) (Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// Paid reports whether the plan exists and carries a price.
func (c *Catalog) Paid(id string) bool {
	p, ok := c.plans[id]
	return ok && p.Price > 0
}

func (c *Catalog) All() []Plan {
	out := make([]Plan, len(c.ordered))
	copy(out, c.ordered)
	return out
}

func (c *Catalog) Currency() string {
	return c.currency
}
