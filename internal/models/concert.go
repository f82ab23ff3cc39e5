// internal/models/concert.go
package models

// Concert is one entry of the concert dataset. Genre and Location are
// comma-separated tag lists ("rock, blues", "Austin, TX").
type Concert struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Artist           string    `json:"artist"`
	Genre            string    `json:"genre"`
	Description      string    `json:"description"`
	Venue            string    `json:"venue"`
	Location         string    `json:"location"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	PriceMin         float64   `json:"price_min"`
	PriceMax         float64   `json:"price_max"`
	TicketsAvailable string    `json:"tickets_available"`
	AgeRestriction   string    `json:"age_restriction"`
	Embedding        []float32 `json:"embedding,omitempty"`
}

// ConcertDocument is a search hit as stored in the index: every field is text.
type ConcertDocument map[string]string

// ConcertSummary is a concert as presented to the caller.
type ConcertSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Artist           string `json:"artist"`
	Genre            string `json:"genre"`
	Venue            string `json:"venue"`
	Location         string `json:"location"`
	PriceRange       string `json:"price_range"`
	TicketsAvailable string `json:"tickets_available"`
	AgeRestriction   string `json:"age_restriction"`
	Description      string `json:"description"`
}

// ConcertResult is either a recommended concert or, with only Message set,
// the no-match result.
type ConcertResult struct {
	*ConcertSummary
	Message string `json:"message,omitempty"`
}
