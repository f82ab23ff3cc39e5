// internal/workers/catalog/get-songs-by-genre/models.go
package getsongsbygenre

import "music-store-agent/internal/models"

type Input struct {
	Genre string `json:"genre"`
}

// Output carries either songs or, when the genre matched nothing, a message.
type Output struct {
	Songs   []models.GenreSong `json:"songs"`
	Message string             `json:"message,omitempty"`
}
