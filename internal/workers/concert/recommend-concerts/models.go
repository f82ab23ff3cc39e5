// internal/workers/concert/recommend-concerts/models.go
package recommendconcerts

import "music-store-agent/internal/models"

// Input fields are all optional; null and absent are the same.
type Input struct {
	Query    *string  `json:"query"`
	Artist   *string  `json:"artist"`
	Genres   []string `json:"genres"`
	Location *string  `json:"location"`
	MaxPrice *float64 `json:"max_price"`
	Limit    int      `json:"limit"`
}

type Output struct {
	Concerts []models.ConcertResult `json:"concerts"`
}
