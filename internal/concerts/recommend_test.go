package concerts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

type fakeEmbedder struct {
	dims    int
	err     error
	texts   []string
	batches [][]string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, f.dims), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dims)
		v[0] = float32(i + 1)
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }

type fakeIndex struct {
	exists  bool
	docs    []models.ConcertDocument
	err     error
	created int
	dropped int
	loaded  []models.Concert
	loadErr error // returned by the next Load only

	vectorCalls int
	filterCalls int
	lastFilter  Filter
	lastLimit   int
}

func (f *fakeIndex) Name() string    { return "concerts" }
func (f *fakeIndex) Dimensions() int { return 3 }

func (f *fakeIndex) Exists(ctx context.Context) (bool, error) { return f.exists, nil }

func (f *fakeIndex) Create(ctx context.Context) error {
	f.created++
	f.exists = true
	return nil
}

func (f *fakeIndex) Drop(ctx context.Context) error {
	f.dropped++
	f.exists = false
	return nil
}

func (f *fakeIndex) Load(ctx context.Context, concerts []models.Concert) error {
	if err := f.loadErr; err != nil {
		f.loadErr = nil
		return err
	}
	f.loaded = append(f.loaded, concerts...)
	return nil
}

func (f *fakeIndex) VectorSearch(ctx context.Context, vector []float32, filter Filter, limit int) ([]models.ConcertDocument, error) {
	f.vectorCalls++
	f.lastFilter, f.lastLimit = filter, limit
	return f.docs, f.err
}

func (f *fakeIndex) FilterSearch(ctx context.Context, filter Filter, limit int) ([]models.ConcertDocument, error) {
	f.filterCalls++
	f.lastFilter, f.lastLimit = filter, limit
	return f.docs, f.err
}

func austinDoc() models.ConcertDocument {
	return models.ConcertDocument{
		FieldID:               "c-001",
		FieldName:             "Blues Night",
		FieldArtist:           "Gary Clark Jr.",
		FieldGenre:            "blues, rock",
		FieldVenue:            "Antone's",
		FieldLocation:         "Austin, TX",
		FieldPriceMin:         "35",
		FieldPriceMax:         "79.5",
		FieldTicketsAvailable: "true",
		FieldAgeRestriction:   "21+",
		FieldDescription:      "Texas blues",
	}
}

func newTestEngine(t *testing.T, index *fakeIndex, embedder *fakeEmbedder) *Engine {
	return NewEngine(index, embedder, nil, logger.NewTestLogger(t))
}

func TestRecommend_FilterOnlyWhenNoText(t *testing.T) {
	index := &fakeIndex{docs: []models.ConcertDocument{austinDoc()}}
	embedder := &fakeEmbedder{dims: 3}
	engine := newTestEngine(t, index, embedder)

	results, err := engine.Recommend(context.Background(), Request{
		Genres:   []string{"blues"},
		Location: "Austin, TX",
		MaxPrice: floatPtr(50),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, index.filterCalls)
	assert.Zero(t, index.vectorCalls)
	assert.Empty(t, embedder.texts)
	assert.Equal(t, DefaultLimit, index.lastLimit)
	assert.Equal(t, "Austin", index.lastFilter.City)

	require.Len(t, results, 1)
	require.NotNil(t, results[0].ConcertSummary)
	assert.Equal(t, models.ConcertSummary{
		ID:               "c-001",
		Name:             "Blues Night",
		Artist:           "Gary Clark Jr.",
		Genre:            "blues, rock",
		Venue:            "Antone's",
		Location:         "Austin, TX",
		PriceRange:       "$35 - $80",
		TicketsAvailable: "true",
		AgeRestriction:   "21+",
		Description:      "Texas blues",
	}, *results[0].ConcertSummary)
	assert.Empty(t, results[0].Message)
}

func TestRecommend_ArtistOnlyEmbedsArtist(t *testing.T) {
	index := &fakeIndex{docs: []models.ConcertDocument{austinDoc()}}
	embedder := &fakeEmbedder{dims: 3}
	engine := newTestEngine(t, index, embedder)

	_, err := engine.Recommend(context.Background(), Request{Artist: "Radiohead", Limit: 3})

	require.NoError(t, err)
	assert.Equal(t, []string{"Radiohead"}, embedder.texts)
	assert.Equal(t, 1, index.vectorCalls)
	assert.Equal(t, 3, index.lastLimit)
}

func TestRecommend_QueryTakesPrecedenceOverArtist(t *testing.T) {
	index := &fakeIndex{docs: []models.ConcertDocument{austinDoc()}}
	embedder := &fakeEmbedder{dims: 3}
	engine := newTestEngine(t, index, embedder)

	_, err := engine.Recommend(context.Background(), Request{
		Query:  "moody electronic rock",
		Artist: "Radiohead",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"moody electronic rock"}, embedder.texts)
}

func TestRecommend_NoMatches(t *testing.T) {
	engine := newTestEngine(t, &fakeIndex{}, &fakeEmbedder{dims: 3})

	results, err := engine.Recommend(context.Background(), Request{Location: "Reykjavik"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].ConcertSummary)
	assert.Equal(t, NoMatchMessage, results[0].Message)
}

func TestRecommend_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		index    *fakeIndex
		embedder *fakeEmbedder
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "embedding failure",
			req:      Request{Query: "jazz"},
			index:    &fakeIndex{},
			embedder: &fakeEmbedder{dims: 3, err: errors.New("rate limited")},
			wantCode: apperrors.ErrCodeEmbeddingFailed,
		},
		{
			name:     "missing index",
			req:      Request{},
			index:    &fakeIndex{err: fmt.Errorf("%w: concerts", ErrIndexNotFound)},
			embedder: &fakeEmbedder{dims: 3},
			wantCode: apperrors.ErrCodeIndexNotFound,
		},
		{
			name:     "search deadline",
			req:      Request{Artist: "Muse"},
			index:    &fakeIndex{err: context.DeadlineExceeded},
			embedder: &fakeEmbedder{dims: 3},
			wantCode: apperrors.ErrCodeSearchTimeout,
		},
		{
			name:     "search failure",
			req:      Request{},
			index:    &fakeIndex{err: errors.New("syntax error")},
			embedder: &fakeEmbedder{dims: 3},
			wantCode: apperrors.ErrCodeSearchQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, tt.index, tt.embedder)

			_, err := engine.Recommend(context.Background(), tt.req)

			require.Error(t, err)
			var stdErr *apperrors.StandardError
			require.True(t, errors.As(err, &stdErr))
			assert.Equal(t, tt.wantCode, stdErr.Code)
		})
	}
}

func TestSummarize_UnparseablePrices(t *testing.T) {
	s := Summarize(models.ConcertDocument{FieldPriceMin: "free", FieldID: "x"})

	assert.Equal(t, "$0 - $0", s.PriceRange)
	assert.Equal(t, "x", s.ID)
}
