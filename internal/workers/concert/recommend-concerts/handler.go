package recommendconcerts

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"music-store-agent/internal/common/camunda"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/concerts"
	"music-store-agent/internal/models"
)

const (
	TaskType = "recommend_concerts"
)

// Recommender is satisfied by concerts.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req concerts.Request) ([]models.ConcertResult, error)
}

type Handler struct {
	config *Config
	engine Recommender
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewHandler(config *Config, engine Recommender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		engine: engine,
		jobs:   camunda.NewJobs(TaskType, log),
		logger: log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := h.jobs.Begin(job)
	defer done()

	var input Input
	if err := h.jobs.Decode(job, h.config.Schema, &input); err != nil {
		h.jobs.Fail(client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.jobs.Fail(client, job, err)
		return
	}

	h.jobs.Complete(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	results, err := h.engine.Recommend(ctx, toRequest(input))
	if err != nil {
		return nil, err
	}
	if len(results) == 1 && results[0].ConcertSummary == nil {
		h.jobs.NotFound()
	}

	return &Output{Concerts: results}, nil
}

func toRequest(input *Input) concerts.Request {
	return concerts.Request{
		Query:    deref(input.Query),
		Artist:   deref(input.Artist),
		Genres:   input.Genres,
		Location: deref(input.Location),
		MaxPrice: input.MaxPrice,
		Limit:    input.Limit,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
