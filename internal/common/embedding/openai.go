// internal/common/embedding/openai.go
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"music-store-agent/internal/common/config"
	"music-store-agent/internal/common/observability"
)

var ErrEmptyText = errors.New("text cannot be empty")

// batchSize caps the inputs sent in one embeddings request.
const batchSize = 100

// Embedder turns descriptive text into dense vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// OpenAIEmbedder implements Embedder with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client   *openai.Client
	model    string
	dims     int
	timeout  time.Duration
	recorder *observability.Observability
}

func NewOpenAIEmbedder(cfg config.EmbeddingConfig, recorder *observability.Observability) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.LargeEmbedding3)
	}

	return &OpenAIEmbedder{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		dims:     config.EmbeddingDimensions(model),
		timeout:  config.GetDuration(cfg.Timeout),
		recorder: recorder,
	}, nil
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dims
}

// Embed returns the embedding of a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vectors, err := e.create(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in request-sized chunks, preserving input order.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		for i, text := range texts[start:end] {
			if text == "" {
				return nil, fmt.Errorf("text %d: %w", start+i, ErrEmptyText)
			}
		}

		vectors, err := e.create(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) create(ctx context.Context, input []string) ([][]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: input,
		Model: openai.EmbeddingModel(e.model),
	})
	e.recorder.RecordUpstreamCall(ctx, "openai", "embeddings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) != len(input) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(input), len(resp.Data))
	}

	vectors := make([][]float32, len(input))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(input) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}
