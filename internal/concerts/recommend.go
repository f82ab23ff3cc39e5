package concerts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"music-store-agent/internal/common/embedding"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/common/metrics"
	"music-store-agent/internal/common/observability"
	"music-store-agent/internal/models"
)

const (
	DefaultLimit   = 5
	NoMatchMessage = "No concerts found matching your criteria. Try broadening your search."

	ModeVector = "vector"
	ModeFilter = "filter"
)

// Request holds the optional search constraints. Empty strings and a nil
// MaxPrice mean the constraint is absent.
type Request struct {
	Query    string
	Artist   string
	Genres   []string
	Location string
	MaxPrice *float64
	Limit    int
}

// SearchText is the text to embed: the free-text query when given,
// otherwise the artist name. Empty means a filter-only search.
func (r Request) SearchText() string {
	if strings.TrimSpace(r.Query) != "" {
		return r.Query
	}
	if strings.TrimSpace(r.Artist) != "" {
		return r.Artist
	}
	return ""
}

// Engine runs hybrid concert searches: hard filters narrow the candidates
// and, when there is text to embed, vector distance ranks them.
type Engine struct {
	index    Index
	embedder embedding.Embedder
	recorder *observability.Observability
	logger   logger.Logger
}

func NewEngine(index Index, embedder embedding.Embedder, recorder *observability.Observability, log logger.Logger) *Engine {
	return &Engine{index: index, embedder: embedder, recorder: recorder, logger: log}
}

// Recommend returns up to req.Limit concerts, or a single no-match result.
func (e *Engine) Recommend(ctx context.Context, req Request) ([]models.ConcertResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	filter := BuildFilter(req.Genres, req.Location, req.MaxPrice)
	mode := ModeFilter
	text := req.SearchText()
	if text != "" {
		mode = ModeVector
	}

	e.logger.Info("searching concerts", map[string]interface{}{
		"mode":     mode,
		"query":    req.Query,
		"artist":   req.Artist,
		"genres":   req.Genres,
		"location": req.Location,
		"filter":   filter.RedisQuery(),
		"limit":    limit,
	})

	var (
		docs []models.ConcertDocument
		err  error
	)
	start := time.Now()
	if mode == ModeVector {
		vector, embedErr := e.embedder.Embed(ctx, text)
		if embedErr != nil {
			return nil, apperrors.NewEmbeddingFailedError(embedErr)
		}
		docs, err = e.index.VectorSearch(ctx, vector, filter, limit)
	} else {
		docs, err = e.index.FilterSearch(ctx, filter, limit)
	}
	e.recorder.RecordUpstreamCall(ctx, "concert_index", mode, time.Since(start), err)
	if err != nil {
		return nil, searchError(ctx, e.index.Name(), mode, err)
	}

	metrics.ConcertSearchResults.WithLabelValues(mode).Observe(float64(len(docs)))
	e.logger.Info("found concerts", map[string]interface{}{"count": len(docs)})

	if len(docs) == 0 {
		return []models.ConcertResult{{Message: NoMatchMessage}}, nil
	}

	results := make([]models.ConcertResult, 0, len(docs))
	for _, d := range docs {
		summary := Summarize(d)
		results = append(results, models.ConcertResult{ConcertSummary: &summary})
	}
	return results, nil
}

// Summarize shapes a search hit for the caller. Prices that are missing or
// not numeric count as zero.
func Summarize(d models.ConcertDocument) models.ConcertSummary {
	return models.ConcertSummary{
		ID:               d[FieldID],
		Name:             d[FieldName],
		Artist:           d[FieldArtist],
		Genre:            d[FieldGenre],
		Venue:            d[FieldVenue],
		Location:         d[FieldLocation],
		PriceRange:       fmt.Sprintf("$%.0f - $%.0f", parsePrice(d[FieldPriceMin]), parsePrice(d[FieldPriceMax])),
		TicketsAvailable: d[FieldTicketsAvailable],
		AgeRestriction:   d[FieldAgeRestriction],
		Description:      d[FieldDescription],
	}
}

func parsePrice(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0
	}
	return f
}

func searchError(ctx context.Context, index, mode string, err error) error {
	switch {
	case errors.Is(err, ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(index, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewSearchTimeoutError(mode, err)
	default:
		return apperrors.NewSearchQueryFailedError(mode, err)
	}
}
