// internal/workers/catalog/check-for-songs/models.go
package checkforsongs

import "music-store-agent/internal/models"

type Input struct {
	SongTitle string `json:"song_title"`
}

type Output struct {
	Tracks   []models.Track `json:"tracks"`
	RowCount int            `json:"rowCount"`
}
