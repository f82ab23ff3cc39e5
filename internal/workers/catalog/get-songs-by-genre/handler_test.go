package getsongsbygenre

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/chinook"
	"music-store-agent/internal/common/config"
	"music-store-agent/internal/common/database"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

// newTestHandler runs against an in-memory SQLite copy of the mini catalog.
func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	client, err := database.NewSQL(config.SQLConfig{Driver: config.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	script, err := os.ReadFile("../../../chinook/testdata/chinook_min.sql")
	require.NoError(t, err)
	require.NoError(t, client.LoadScript(context.Background(), script))

	store := chinook.NewStore(client, nil)
	return NewHandler(&Config{Timeout: 5 * time.Second}, store, logger.NewTestLogger(t))
}

func songNames(songs []models.GenreSong) []string {
	names := make([]string, 0, len(songs))
	for _, s := range songs {
		if s.Song != nil {
			names = append(names, *s.Song)
		}
	}
	return names
}

func TestHandler_Execute_OneSongPerArtist(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{Genre: "Rock"})

	require.NoError(t, err)
	assert.Empty(t, output.Message)
	// AC/DC, Accept, Aerosmith and the track without an album
	assert.Len(t, output.Songs, 4)
	assert.Contains(t, songNames(output.Songs), "Balls to the Wall")
	assert.Contains(t, songNames(output.Songs), "Jump Around")
	assert.NotContains(t, songNames(output.Songs), "Fast As a Shark")
}

func TestHandler_Execute_SingleGenre(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{Genre: "jazz"})

	require.NoError(t, err)
	require.Len(t, output.Songs, 1)
	assert.Equal(t, "So What", *output.Songs[0].Song)
	assert.Equal(t, "Miles Davis", *output.Songs[0].Artist)
}

func TestHandler_Execute_NoSongs(t *testing.T) {
	tests := []struct {
		name  string
		genre string
	}{
		{name: "unknown genre", genre: "Polka"},
		{name: "genre without tracks", genre: "Metal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t)

			output, err := handler.Execute(context.Background(), &Input{Genre: tt.genre})

			require.NoError(t, err)
			assert.Empty(t, output.Songs)
			assert.Equal(t, "No songs found for the genre: "+tt.genre, output.Message)
		})
	}
}
