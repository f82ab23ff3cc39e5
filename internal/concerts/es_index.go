package concerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"music-store-agent/internal/models"
)

// ElasticsearchIndex keeps concerts in an Elasticsearch index with a
// dense_vector field. Genre and location are additionally indexed as keyword
// arrays so they can be filtered as tags.
type ElasticsearchIndex struct {
	client *elasticsearch.Client
	name   string
	dims   int
}

func NewElasticsearchIndex(client *elasticsearch.Client, name string, dims int) *ElasticsearchIndex {
	return &ElasticsearchIndex{client: client, name: name, dims: dims}
}

func esTagField(field string) string {
	return field + "_tags"
}

func (e *ElasticsearchIndex) Name() string    { return e.name }
func (e *ElasticsearchIndex) Dimensions() int { return e.dims }

func (e *ElasticsearchIndex) Exists(ctx context.Context) (bool, error) {
	res, err := esapi.IndicesExistsRequest{Index: []string{e.name}}.Do(ctx, e.client)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", e.name, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("check index %s: %s", e.name, res.Status())
	}
}

func (e *ElasticsearchIndex) mapping() map[string]interface{} {
	text := map[string]interface{}{"type": "text"}
	keyword := map[string]interface{}{"type": "keyword"}
	float := map[string]interface{}{"type": "float"}

	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				FieldID:                   keyword,
				FieldName:                 text,
				FieldArtist:               text,
				FieldGenre:                text,
				esTagField(FieldGenre):    keyword,
				FieldDescription:          text,
				FieldVenue:                text,
				FieldLocation:             text,
				esTagField(FieldLocation): keyword,
				FieldDate:                 keyword,
				FieldTime:                 keyword,
				FieldPriceMin:             float,
				FieldPriceMax:             float,
				FieldTicketsAvailable:     keyword,
				FieldAgeRestriction:       keyword,
				FieldEmbedding: map[string]interface{}{
					"type":       "dense_vector",
					"dims":       e.dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
}

func (e *ElasticsearchIndex) Create(ctx context.Context) error {
	body, err := json.Marshal(e.mapping())
	if err != nil {
		return err
	}

	res, err := esapi.IndicesCreateRequest{Index: e.name, Body: bytes.NewReader(body)}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", e.name, res.String())
	}
	return nil
}

func (e *ElasticsearchIndex) Drop(ctx context.Context) error {
	res, err := esapi.IndicesDeleteRequest{Index: []string{e.name}}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("drop index %s: %w", e.name, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("drop index %s: %s", e.name, res.String())
	}
	return nil
}

// Load bulk-indexes the concerts and refreshes so they are searchable at once.
func (e *ElasticsearchIndex) Load(ctx context.Context, concerts []models.Concert) error {
	if len(concerts) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, c := range concerts {
		if len(c.Embedding) != e.dims {
			return fmt.Errorf("concert %s: %w: got %d, want %d", c.ID, ErrDimensionMismatch, len(c.Embedding), e.dims)
		}
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": e.name, "_id": c.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(concertSource(c)); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("load concerts: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("load concerts: %s", res.String())
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("load concerts: bulk request reported item errors")
	}
	return nil
}

func concertSource(c models.Concert) map[string]interface{} {
	return map[string]interface{}{
		FieldID:                   c.ID,
		FieldName:                 c.Name,
		FieldArtist:               c.Artist,
		FieldGenre:                c.Genre,
		esTagField(FieldGenre):    SplitTags(c.Genre),
		FieldDescription:          c.Description,
		FieldVenue:                c.Venue,
		FieldLocation:             c.Location,
		esTagField(FieldLocation): SplitTags(c.Location),
		FieldDate:                 c.Date,
		FieldTime:                 c.Time,
		FieldPriceMin:             c.PriceMin,
		FieldPriceMax:             c.PriceMax,
		FieldTicketsAvailable:     c.TicketsAvailable,
		FieldAgeRestriction:       c.AgeRestriction,
		FieldEmbedding:            c.Embedding,
	}
}

func (e *ElasticsearchIndex) VectorSearch(ctx context.Context, vector []float32, filter Filter, limit int) ([]models.ConcertDocument, error) {
	if len(vector) != e.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), e.dims)
	}
	return e.search(ctx, knnBody(vector, filter, limit))
}

func (e *ElasticsearchIndex) FilterSearch(ctx context.Context, filter Filter, limit int) ([]models.ConcertDocument, error) {
	return e.search(ctx, filterBody(filter, limit))
}

func knnBody(vector []float32, filter Filter, limit int) map[string]interface{} {
	return map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          FieldEmbedding,
			"query_vector":   vector,
			"k":              limit,
			"num_candidates": numCandidates(limit),
			"filter": map[string]interface{}{
				"bool": map[string]interface{}{"filter": filter.ElasticsearchClauses()},
			},
		},
		"size":    limit,
		"_source": ReturnFields,
	}
}

// maxNumCandidates is the upper bound Elasticsearch accepts for num_candidates.
const maxNumCandidates = 10000

// numCandidates widens the kNN candidate pool to ten times k, within the
// bounds Elasticsearch accepts (k <= num_candidates <= 10000).
func numCandidates(k int) int {
	n := k * 10
	if n > maxNumCandidates {
		n = maxNumCandidates
	}
	if n < k {
		n = k
	}
	return n
}

func filterBody(filter Filter, limit int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filter.ElasticsearchClauses()},
		},
		"size":    limit,
		"_source": ReturnFields,
	}
}

func (e *ElasticsearchIndex) search(ctx context.Context, body map[string]interface{}) ([]models.ConcertDocument, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := esapi.SearchRequest{
		Index: []string{e.name},
		Body:  bytes.NewReader(payload),
	}.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", e.name, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, e.name)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]models.ConcertDocument, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		doc := models.ConcertDocument{}
		for k, v := range hit.Source {
			doc[k] = sourceString(v)
		}
		if doc[FieldID] == "" {
			doc[FieldID] = hit.ID
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func sourceString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			parts = append(parts, sourceString(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}
