package concerts

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"music-store-agent/internal/models"
)

// RedisIndex stores concerts as hashes under a key prefix and searches them
// with RediSearch.
type RedisIndex struct {
	client *redis.Client
	name   string
	prefix string
	dims   int
}

func NewRedisIndex(client *redis.Client, name, prefix string, dims int) *RedisIndex {
	return &RedisIndex{client: client, name: name, prefix: prefix, dims: dims}
}

func (r *RedisIndex) Name() string    { return r.name }
func (r *RedisIndex) Dimensions() int { return r.dims }

func (r *RedisIndex) Exists(ctx context.Context) (bool, error) {
	names, err := r.client.FT_List(ctx).Result()
	if err != nil {
		return false, fmt.Errorf("list indexes: %w", err)
	}
	for _, n := range names {
		if n == r.name {
			return true, nil
		}
	}
	return false, nil
}

func (r *RedisIndex) Create(ctx context.Context) error {
	opts := &redis.FTCreateOptions{
		OnHash: true,
		Prefix: []interface{}{r.prefix},
	}
	if err := r.client.FTCreate(ctx, r.name, opts, r.schema()...).Err(); err != nil {
		return fmt.Errorf("create index %s: %w", r.name, err)
	}
	return nil
}

func (r *RedisIndex) schema() []*redis.FieldSchema {
	text := func(name string) *redis.FieldSchema {
		return &redis.FieldSchema{FieldName: name, FieldType: redis.SearchFieldTypeText}
	}
	tag := func(name string) *redis.FieldSchema {
		return &redis.FieldSchema{FieldName: name, FieldType: redis.SearchFieldTypeTag, Separator: ","}
	}
	numeric := func(name string) *redis.FieldSchema {
		return &redis.FieldSchema{FieldName: name, FieldType: redis.SearchFieldTypeNumeric, Sortable: true}
	}

	return []*redis.FieldSchema{
		tag(FieldID),
		text(FieldName),
		text(FieldArtist),
		tag(FieldGenre),
		text(FieldDescription),
		text(FieldVenue),
		tag(FieldLocation),
		text(FieldDate),
		text(FieldTime),
		numeric(FieldPriceMin),
		numeric(FieldPriceMax),
		tag(FieldTicketsAvailable),
		text(FieldAgeRestriction),
		{
			FieldName: FieldEmbedding,
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            r.dims,
					DistanceMetric: "COSINE",
				},
			},
		},
	}
}

// Drop removes the index together with its documents.
func (r *RedisIndex) Drop(ctx context.Context) error {
	err := r.client.FTDropIndexWithArgs(ctx, r.name, &redis.FTDropIndexOptions{DeleteDocs: true}).Err()
	if err != nil {
		if isUnknownIndex(err) {
			return nil
		}
		return fmt.Errorf("drop index %s: %w", r.name, err)
	}
	return nil
}

// Load writes each concert as a hash in one pipeline.
func (r *RedisIndex) Load(ctx context.Context, concerts []models.Concert) error {
	pipe := r.client.Pipeline()
	for _, c := range concerts {
		if len(c.Embedding) != r.dims {
			return fmt.Errorf("concert %s: %w: got %d, want %d", c.ID, ErrDimensionMismatch, len(c.Embedding), r.dims)
		}
		pipe.HSet(ctx, r.prefix+c.ID, concertHash(c))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("load concerts: %w", err)
	}
	return nil
}

func concertHash(c models.Concert) map[string]interface{} {
	return map[string]interface{}{
		FieldID:               c.ID,
		FieldName:             c.Name,
		FieldArtist:           c.Artist,
		FieldGenre:            c.Genre,
		FieldDescription:      c.Description,
		FieldVenue:            c.Venue,
		FieldLocation:         c.Location,
		FieldDate:             c.Date,
		FieldTime:             c.Time,
		FieldPriceMin:         formatNumber(c.PriceMin),
		FieldPriceMax:         formatNumber(c.PriceMax),
		FieldTicketsAvailable: c.TicketsAvailable,
		FieldAgeRestriction:   c.AgeRestriction,
		FieldEmbedding:        vectorBytes(c.Embedding),
	}
}

func (r *RedisIndex) VectorSearch(ctx context.Context, vector []float32, filter Filter, limit int) ([]models.ConcertDocument, error) {
	if len(vector) != r.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), r.dims)
	}
	query, opts := vectorQuery(filter, vector, limit)
	return r.search(ctx, query, opts)
}

func (r *RedisIndex) FilterSearch(ctx context.Context, filter Filter, limit int) ([]models.ConcertDocument, error) {
	query, opts := filterQuery(filter, limit)
	return r.search(ctx, query, opts)
}

func (r *RedisIndex) search(ctx context.Context, query string, opts *redis.FTSearchOptions) ([]models.ConcertDocument, error) {
	res, err := r.client.FTSearchWithArgs(ctx, r.name, query, opts).Result()
	if err != nil {
		if isUnknownIndex(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, r.name)
		}
		return nil, fmt.Errorf("search %s: %w", r.name, err)
	}

	docs := make([]models.ConcertDocument, 0, len(res.Docs))
	for _, d := range res.Docs {
		doc := models.ConcertDocument{}
		for k, v := range d.Fields {
			doc[k] = v
		}
		if doc[FieldID] == "" {
			doc[FieldID] = strings.TrimPrefix(d.ID, r.prefix)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

const vectorDistanceField = "vector_distance"

// vectorQuery builds a KNN query restricted by filter and sorted by distance.
func vectorQuery(filter Filter, vector []float32, limit int) (string, *redis.FTSearchOptions) {
	query := fmt.Sprintf("%s=>[KNN $K @%s $vector AS %s]", filter.RedisQuery(), FieldEmbedding, vectorDistanceField)

	fields := append(append([]string{}, ReturnFields...), vectorDistanceField)
	return query, &redis.FTSearchOptions{
		Return:         returnFields(fields),
		SortBy:         []redis.FTSearchSortBy{{FieldName: vectorDistanceField, Asc: true}},
		LimitOffset:    0,
		Limit:          limit,
		Params:         map[string]interface{}{"K": strconv.Itoa(limit), "vector": vectorBytes(vector)},
		DialectVersion: 2,
	}
}

// filterQuery builds an unranked query over the filter alone.
func filterQuery(filter Filter, limit int) (string, *redis.FTSearchOptions) {
	return filter.RedisQuery(), &redis.FTSearchOptions{
		Return:         returnFields(ReturnFields),
		LimitOffset:    0,
		Limit:          limit,
		DialectVersion: 2,
	}
}

func returnFields(names []string) []redis.FTSearchReturn {
	out := make([]redis.FTSearchReturn, len(names))
	for i, n := range names {
		out[i] = redis.FTSearchReturn{FieldName: n}
	}
	return out
}

func isUnknownIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index name") || strings.Contains(msg, "no such index")
}
