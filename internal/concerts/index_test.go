package concerts

import (
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"music-store-agent/internal/common/config"
)

func TestNewIndex(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{"http://localhost:9200"}})
	require.NoError(t, err)

	cfg := config.SearchConfig{Backend: config.SearchBackendRedis, IndexName: "concerts", KeyPrefix: "concert:", VectorDims: 8}

	idx, err := NewIndex(cfg, rdb, nil)
	require.NoError(t, err)
	assert.IsType(t, &RedisIndex{}, idx)
	assert.Equal(t, "concerts", idx.Name())
	assert.Equal(t, 8, idx.Dimensions())

	cfg.Backend = config.SearchBackendElasticsearch
	idx, err = NewIndex(cfg, nil, es)
	require.NoError(t, err)
	assert.IsType(t, &ElasticsearchIndex{}, idx)

	_, err = NewIndex(cfg, rdb, nil)
	assert.Error(t, err)

	cfg.Backend = "solr"
	_, err = NewIndex(cfg, rdb, es)
	assert.Error(t, err)
}
