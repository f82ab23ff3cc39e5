package concerts

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

// fixedEmbedder embeds every query as the same vector.
type fixedEmbedder struct{ vector []float32 }

func (f fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func (f fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f fixedEmbedder) Dimensions() int { return len(f.vector) }

// redisStack connects to the server named by REDIS_STACK_URL. FT.* commands
// need the search module, which miniredis does not implement.
func redisStack(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping RediSearch integration test in short mode")
	}
	url := os.Getenv("REDIS_STACK_URL")
	if url == "" {
		t.Skip("REDIS_STACK_URL not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	opts.Protocol = 2
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis stack unreachable: %v", err)
	}
	return client
}

func TestRedisIndex_HybridSearch(t *testing.T) {
	client := redisStack(t)
	ctx := context.Background()

	name := fmt.Sprintf("concerts_it_%d", time.Now().UnixNano())
	index := NewRedisIndex(client, name, name+":", 3)
	t.Cleanup(func() { _ = index.Drop(context.Background()) })

	dataset := []models.Concert{
		{ID: "a", Name: "Opener", Genre: "rock", Location: "Austin, TX", PriceMin: 30, PriceMax: 60, TicketsAvailable: "true", Embedding: []float32{1, 0, 0}},
		{ID: "b", Name: "Headliner", Genre: "rock, blues", Location: "Austin, TX", PriceMin: 40, PriceMax: 90, TicketsAvailable: "true", Embedding: []float32{0, 1, 0}},
		{ID: "c", Name: "Sold Out", Genre: "rock", Location: "Austin, TX", PriceMin: 20, PriceMax: 40, TicketsAvailable: "false", Embedding: []float32{1, 0, 0}},
		{ID: "d", Name: "Late Set", Genre: "jazz", Location: "Chicago, IL", PriceMin: 25, PriceMax: 50, TicketsAvailable: "true", Embedding: []float32{0.9, 0.1, 0}},
	}

	embedder := fixedEmbedder{vector: []float32{1, 0, 0}}
	log := logger.NewTestLogger(t)

	loaded, err := NewSeeder(index, embedder, log).Seed(ctx, dataset, false)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded)

	// Indexing is asynchronous for hashes written after FT.CREATE.
	require.Eventually(t, func() bool {
		docs, err := index.FilterSearch(ctx, Filter{}, 10)
		return err == nil && len(docs) == 4
	}, 5*time.Second, 100*time.Millisecond)

	engine := NewEngine(index, embedder, nil, log)

	t.Run("vector ranking within filter", func(t *testing.T) {
		results, err := engine.Recommend(ctx, Request{Query: "loud guitars", Genres: []string{"rock"}, Location: "Austin"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a", results[0].ID)
		assert.Equal(t, "b", results[1].ID)
	})

	t.Run("price bound", func(t *testing.T) {
		maxPrice := 35.0
		results, err := engine.Recommend(ctx, Request{Genres: []string{"rock"}, MaxPrice: &maxPrice})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].ID)
		assert.Equal(t, "$30 - $60", results[0].PriceRange)
	})

	t.Run("no match", func(t *testing.T) {
		results, err := engine.Recommend(ctx, Request{Genres: []string{"polka"}})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, NoMatchMessage, results[0].Message)
	})

	t.Run("reseed without force keeps index", func(t *testing.T) {
		loaded, err := NewSeeder(index, embedder, log).Seed(ctx, dataset, false)
		require.NoError(t, err)
		assert.Zero(t, loaded)
	})
}
