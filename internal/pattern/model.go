package pattern

import "time"

// Generation is one recorded AI pattern request. Monthly usage limits are
// counted against these rows.
type Generation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Style     string    `json:"style,omitempty"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}
