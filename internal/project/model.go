package project

import "time"

// Project statuses follow the atelier workflow.
const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusFitting    = "fitting"
	StatusDelivered  = "delivered"
)

type Project struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ClientID    int64      `json:"client_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
