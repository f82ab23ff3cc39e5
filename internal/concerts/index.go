package concerts

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"music-store-agent/internal/common/config"
	"music-store-agent/internal/models"
)

var (
	ErrIndexNotFound     = errors.New("concert index not found")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Index is a named vector + attribute index over concerts.
type Index interface {
	Name() string
	Dimensions() int
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context) error
	Drop(ctx context.Context) error
	// Load stores concerts keyed by id. Every concert must carry an embedding.
	Load(ctx context.Context, concerts []models.Concert) error
	// VectorSearch ranks filtered concerts by cosine distance to vector.
	VectorSearch(ctx context.Context, vector []float32, filter Filter, limit int) ([]models.ConcertDocument, error)
	// FilterSearch returns up to limit concerts matching filter, unranked.
	FilterSearch(ctx context.Context, filter Filter, limit int) ([]models.ConcertDocument, error)
}

// vectorBytes encodes a vector as the little-endian float32 blob RediSearch
// expects in hash fields and query parameters.
func vectorBytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// NewIndex returns the index for the configured search backend. The client
// for the other backend may be nil.
func NewIndex(cfg config.SearchConfig, rdb *redis.Client, es *elasticsearch.Client) (Index, error) {
	switch cfg.Backend {
	case config.SearchBackendRedis, "":
		if rdb == nil {
			return nil, fmt.Errorf("search backend %q needs a redis client", config.SearchBackendRedis)
		}
		return NewRedisIndex(rdb, cfg.IndexName, cfg.KeyPrefix, cfg.VectorDims), nil
	case config.SearchBackendElasticsearch:
		if es == nil {
			return nil, fmt.Errorf("search backend %q needs an elasticsearch client", config.SearchBackendElasticsearch)
		}
		return NewElasticsearchIndex(es, cfg.IndexName, cfg.VectorDims), nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Backend)
	}
}
