package concerts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"music-store-agent/internal/common/embedding"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

// ParseConcerts decodes a concert dataset.
func ParseConcerts(data []byte) ([]models.Concert, error) {
	var concerts []models.Concert
	if err := json.Unmarshal(data, &concerts); err != nil {
		return nil, fmt.Errorf("parse concerts: %w", err)
	}
	for i, c := range concerts {
		if c.ID == "" {
			return nil, fmt.Errorf("concert %d has no id", i)
		}
	}
	return concerts, nil
}

// ReadConcerts loads the dataset from path, or returns fallback when path is empty.
func ReadConcerts(path string, fallback []byte) ([]models.Concert, error) {
	data := fallback
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read concerts %s: %w", path, err)
		}
	}
	return ParseConcerts(data)
}

// EmbeddingText is the descriptive text a concert's vector is computed from.
func EmbeddingText(c models.Concert) string {
	parts := []string{}
	for _, p := range []string{c.Name, c.Artist, c.Genre, c.Venue, c.Description} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}

type Seeder struct {
	index    Index
	embedder embedding.Embedder
	logger   logger.Logger
}

func NewSeeder(index Index, embedder embedding.Embedder, log logger.Logger) *Seeder {
	return &Seeder{index: index, embedder: embedder, logger: log}
}

// Seed creates and loads the index when it does not exist. With force an
// existing index is dropped with its documents first. It returns the number
// of concerts loaded, zero when the index was already present.
func (s *Seeder) Seed(ctx context.Context, concerts []models.Concert, force bool) (int, error) {
	exists, err := s.index.Exists(ctx)
	if err != nil {
		return 0, err
	}

	if force && exists {
		if err := s.index.Drop(ctx); err != nil {
			return 0, err
		}
		s.logger.Info("dropped concert index", map[string]interface{}{"index": s.index.Name()})
		exists = false
	}

	if exists {
		s.logger.Debug("concert index already present", map[string]interface{}{"index": s.index.Name()})
		return 0, nil
	}

	prepared, err := s.withEmbeddings(ctx, concerts)
	if err != nil {
		return 0, err
	}

	if err := s.index.Create(ctx); err != nil {
		return 0, err
	}
	if err := s.index.Load(ctx, prepared); err != nil {
		// An empty index would be skipped by every later non-forced seed.
		if dropErr := s.index.Drop(ctx); dropErr != nil {
			s.logger.Error("failed to drop partially loaded concert index", map[string]interface{}{
				"index": s.index.Name(),
				"error": dropErr.Error(),
			})
		}
		return 0, err
	}

	s.logger.Info("loaded concerts", map[string]interface{}{
		"index": s.index.Name(),
		"count": len(prepared),
	})
	return len(prepared), nil
}

// withEmbeddings fills in vectors for concerts that ship without one.
func (s *Seeder) withEmbeddings(ctx context.Context, concerts []models.Concert) ([]models.Concert, error) {
	out := make([]models.Concert, len(concerts))
	copy(out, concerts)

	var (
		missing []int
		texts   []string
	)
	for i, c := range out {
		if len(c.Embedding) == 0 {
			missing = append(missing, i)
			texts = append(texts, EmbeddingText(c))
		}
	}
	if len(missing) == 0 {
		return out, checkDimensions(out, s.index.Dimensions())
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed concerts: %w", err)
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embed concerts: expected %d vectors, got %d", len(missing), len(vectors))
	}
	for j, i := range missing {
		out[i].Embedding = vectors[j]
	}
	return out, checkDimensions(out, s.index.Dimensions())
}

func checkDimensions(concerts []models.Concert, dims int) error {
	for _, c := range concerts {
		if len(c.Embedding) != dims {
			return fmt.Errorf("concert %s: %w: got %d, want %d", c.ID, ErrDimensionMismatch, len(c.Embedding), dims)
		}
	}
	return nil
}
