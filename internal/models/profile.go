// internal/models/profile.go
package models

// UserProfile is the long-term memory kept per customer.
type UserProfile struct {
	CustomerID        int64    `json:"customer_id"`
	MusicPreferences  []string `json:"music_preferences"`
	PreferredLocation string   `json:"preferred_location,omitempty"`
	MaxConcertBudget  *float64 `json:"max_concert_budget,omitempty"`
}
