package user

import "time"

type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Password    string `json:"-"`
	DisplayName string `json:"display_name"`
	Plan        string `json:"plan"`
	IsSubActive bool   `json:"is_sub_active"`
	// Points at the active billing record, nil for free-tier users.
	SubscriptionID *int64     `json:"subscription_id,omitempty"`
	TrialEndsAt    *time.Time `json:"trial_ends_at,omitempty"`
	IsAdmin        bool       `json:"is_admin"`
	CreatedAt      time.Time  `json:"created_at"`
}
