// internal/workers/memory/load-memory/models.go
package loadmemory

import "music-store-agent/internal/models"

type Input struct {
	CustomerID int64 `json:"customer_id"`
}

// Output.LoadedMemory is the formatted profile, "" when none is saved.
type Output struct {
	Found        bool                `json:"found"`
	LoadedMemory string              `json:"loaded_memory"`
	Profile      *models.UserProfile `json:"profile,omitempty"`
}
