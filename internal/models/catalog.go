// internal/models/catalog.go
package models

// Album rows carry the Chinook column names so tool results read like the tables.
type Album struct {
	Title string `json:"Title"`
	Name  string `json:"Name"`
}

// ArtistTrack is a track joined to its album artist. Either side may be
// missing because the lookup uses outer joins.
type ArtistTrack struct {
	SongName   *string `json:"SongName"`
	ArtistName *string `json:"ArtistName"`
}

// GenreSong is one representative song per artist for a genre.
type GenreSong struct {
	Song   *string `json:"Song"`
	Artist *string `json:"Artist"`
}

type Track struct {
	TrackID      int64   `json:"TrackId"`
	Name         string  `json:"Name"`
	AlbumID      *int64  `json:"AlbumId"`
	MediaTypeID  int64   `json:"MediaTypeId"`
	GenreID      *int64  `json:"GenreId"`
	Composer     *string `json:"Composer"`
	Milliseconds int64   `json:"Milliseconds"`
	Bytes        *int64  `json:"Bytes"`
	UnitPrice    float64 `json:"UnitPrice"`
}
