package checkforsongs

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"music-store-agent/internal/common/camunda"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

const (
	TaskType = "check_for_songs"
)

type TitleSearcher interface {
	TracksByTitle(ctx context.Context, title string) ([]models.Track, error)
}

type Handler struct {
	config *Config
	tracks TitleSearcher
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewHandler(config *Config, tracks TitleSearcher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		tracks: tracks,
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

	tracks, err := h.tracks.TracksByTitle(ctx, input.SongTitle)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		h.jobs.NotFound()
	}

	return &Output{Tracks: tracks, RowCount: len(tracks)}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
