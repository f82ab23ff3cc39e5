// internal/workers/catalog/get-tracks-by-artist/models.go
package gettracksbyartist

import "music-store-agent/internal/models"

type Input struct {
	Artist string `json:"artist"`
}

type Output struct {
	Tracks   []models.ArtistTrack `json:"tracks"`
	RowCount int                  `json:"rowCount"`
}
