package getsongsbygenre

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
	TaskType = "get_songs_by_genre"
)

// GenreCatalog resolves genre names and samples their songs.
type GenreCatalog interface {
	GenreIDs(ctx context.Context, genre string) ([]int64, error)
	SongsByGenreIDs(ctx context.Context, genreIDs []int64) ([]models.GenreSong, error)
}

type Handler struct {
	config  *Config
	catalog GenreCatalog
	jobs    *camunda.Jobs
	logger  logger.Logger
}

func NewHandler(config *Config, catalog GenreCatalog, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		catalog: catalog,
		jobs:    camunda.NewJobs(TaskType, log),
		logger:  log,
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

func NoSongsMessage(genre string) string {
	return "No songs found for the genre: " + genre
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	ids, err := h.catalog.GenreIDs(ctx, input.Genre)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		h.jobs.NotFound()
		return &Output{Songs: []models.GenreSong{}, Message: NoSongsMessage(input.Genre)}, nil
	}

	songs, err := h.catalog.SongsByGenreIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(songs) == 0 {
		h.jobs.NotFound()
		return &Output{Songs: []models.GenreSong{}, Message: NoSongsMessage(input.Genre)}, nil
	}

	h.logger.Debug("songs sampled", map[string]interface{}{
		"genre":    input.Genre,
		"genreIds": ids,
		"rowCount": len(songs),
	})

	return &Output{Songs: songs}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
