package getalbumsbyartist

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
	TaskType = "get_albums_by_artist"
)

// AlbumFinder is satisfied by chinook.Store.
type AlbumFinder interface {
	AlbumsByArtist(ctx context.Context, artist string) ([]models.Album, error)
}

type Handler struct {
	config *Config
	albums AlbumFinder
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewHandler(config *Config, albums AlbumFinder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		albums: albums,
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

	albums, err := h.albums.AlbumsByArtist(ctx, input.Artist)
	if err != nil {
		return nil, err
	}
	if len(albums) == 0 {
		h.jobs.NotFound()
	}

	h.logger.Debug("albums found", map[string]interface{}{
		"artist":   input.Artist,
		"rowCount": len(albums),
	})

	return &Output{Albums: albums, RowCount: len(albums)}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
