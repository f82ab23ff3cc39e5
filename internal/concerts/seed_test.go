package concerts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

const testDataset = `[
  {"id": "c-001", "name": "Blues Night", "artist": "Gary Clark Jr.", "genre": "blues, rock",
   "description": "Texas blues", "venue": "Antone's", "location": "Austin, TX",
   "date": "2025-03-14", "time": "20:00", "price_min": 35, "price_max": 80,
   "tickets_available": "true", "age_restriction": "21+"},
  {"id": "c-002", "name": "Late Set", "artist": "Snarky Puppy", "genre": "jazz",
   "description": "", "venue": "Blue Note", "location": "New York, NY",
   "date": "2025-04-02", "time": "22:30", "price_min": 45, "price_max": 120,
   "tickets_available": "false", "age_restriction": "all ages",
   "embedding": [0.1, 0.2, 0.3]}
]`

func TestParseConcerts(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))

	require.NoError(t, err)
	require.Len(t, concerts, 2)
	assert.Equal(t, "Blues Night", concerts[0].Name)
	assert.Equal(t, 35.0, concerts[0].PriceMin)
	assert.Empty(t, concerts[0].Embedding)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, concerts[1].Embedding)
}

func TestParseConcerts_Invalid(t *testing.T) {
	_, err := ParseConcerts([]byte(`{"id": "c-001"}`))
	assert.Error(t, err)

	_, err = ParseConcerts([]byte(`[{"name": "no id"}]`))
	assert.Error(t, err)
}

func TestReadConcerts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concerts.json")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o600))

	fromFile, err := ReadConcerts(path, nil)
	require.NoError(t, err)
	assert.Len(t, fromFile, 2)

	fromFallback, err := ReadConcerts("", []byte(testDataset))
	require.NoError(t, err)
	assert.Len(t, fromFallback, 2)

	_, err = ReadConcerts(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestEmbeddingText(t *testing.T) {
	c := models.Concert{Name: "Late Set", Artist: "Snarky Puppy", Genre: "jazz", Venue: "Blue Note"}

	assert.Equal(t, "Late Set. Snarky Puppy. jazz. Blue Note", EmbeddingText(c))
}

func TestSeed_CreatesAndLoadsMissingIndex(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))
	require.NoError(t, err)

	index := &fakeIndex{}
	embedder := &fakeEmbedder{dims: 3}
	seeder := NewSeeder(index, embedder, logger.NewTestLogger(t))

	n, err := seeder.Seed(context.Background(), concerts, false)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, index.created)
	assert.Zero(t, index.dropped)

	// only the concert without a vector is embedded
	require.Len(t, embedder.batches, 1)
	assert.Equal(t, []string{"Blues Night. Gary Clark Jr.. blues, rock. Antone's. Texas blues"}, embedder.batches[0])

	require.Len(t, index.loaded, 2)
	assert.Equal(t, []float32{1, 0, 0}, index.loaded[0].Embedding)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, index.loaded[1].Embedding)
	assert.Empty(t, concerts[0].Embedding)
}

func TestSeed_SkipsExistingIndex(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))
	require.NoError(t, err)

	index := &fakeIndex{exists: true}
	embedder := &fakeEmbedder{dims: 3}
	seeder := NewSeeder(index, embedder, logger.NewTestLogger(t))

	n, err := seeder.Seed(context.Background(), concerts, false)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, index.created)
	assert.Empty(t, index.loaded)
	assert.Empty(t, embedder.batches)
}

func TestSeed_ForceRebuildsExistingIndex(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))
	require.NoError(t, err)

	index := &fakeIndex{exists: true}
	seeder := NewSeeder(index, &fakeEmbedder{dims: 3}, logger.NewTestLogger(t))

	n, err := seeder.Seed(context.Background(), concerts, true)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, index.dropped)
	assert.Equal(t, 1, index.created)
	assert.Len(t, index.loaded, 2)
}

func TestSeed_EmbeddingFailureLeavesIndexUntouched(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))
	require.NoError(t, err)

	index := &fakeIndex{}
	seeder := NewSeeder(index, &fakeEmbedder{dims: 3, err: errors.New("quota")}, logger.NewTestLogger(t))

	_, err = seeder.Seed(context.Background(), concerts, false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
	assert.Zero(t, index.created)
}

func TestSeed_FailedLoadDropsIndexForNextSeed(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))
	require.NoError(t, err)

	index := &fakeIndex{loadErr: errors.New("load concerts: connection reset")}
	seeder := NewSeeder(index, &fakeEmbedder{dims: 3}, logger.NewTestLogger(t))

	_, err = seeder.Seed(context.Background(), concerts, false)
	require.Error(t, err)
	assert.Equal(t, 1, index.created)
	assert.Equal(t, 1, index.dropped)
	assert.False(t, index.exists)

	n, err := seeder.Seed(context.Background(), concerts, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, index.created)
	assert.Len(t, index.loaded, 2)
}

func TestSeed_DimensionMismatchBeforeCreate(t *testing.T) {
	concerts, err := ParseConcerts([]byte(testDataset))
	require.NoError(t, err)

	index := &fakeIndex{}
	seeder := NewSeeder(index, &fakeEmbedder{dims: 5}, logger.NewTestLogger(t))

	_, err = seeder.Seed(context.Background(), concerts, false)

	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Zero(t, index.created)
	assert.Empty(t, index.loaded)
}
