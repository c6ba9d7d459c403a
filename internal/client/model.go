package client

import "time"

// Client is an entry in a designer's client book. Measurements are free-form
// key/value pairs (e.g. "bust", "waist", "inseam") in centimeters.
type Client struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	Name         string            `json:"name"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Measurements map[string]string `json:"measurements,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
