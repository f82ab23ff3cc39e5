// internal/workers/catalog/get-albums-by-artist/models.go
package getalbumsbyartist

import "music-store-agent/internal/models"

type Input struct {
	Artist string `json:"artist"`
}

type Output struct {
	Albums   []models.Album `json:"albums"`
	RowCount int            `json:"rowCount"`
}
