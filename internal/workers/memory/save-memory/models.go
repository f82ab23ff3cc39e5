// internal/workers/memory/save-memory/models.go
package savememory

import "music-store-agent/internal/models"

// Input fields other than customer_id are optional. A field that is null or
// absent keeps its saved value.
type Input struct {
	CustomerID        int64    `json:"customer_id"`
	MusicPreferences  []string `json:"music_preferences"`
	PreferredLocation *string  `json:"preferred_location"`
	MaxConcertBudget  *float64 `json:"max_concert_budget"`
}

type Output struct {
	Saved        bool               `json:"saved"`
	LoadedMemory string             `json:"loaded_memory"`
	Profile      models.UserProfile `json:"profile"`
}
