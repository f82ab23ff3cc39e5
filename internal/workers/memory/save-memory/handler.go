package savememory

import (
	"context"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"music-store-agent/internal/common/camunda"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/memory"
	"music-store-agent/internal/models"
)

const (
	TaskType = "save_memory"
)

type ProfileStore interface {
	Get(ctx context.Context, customerID int64) (*models.UserProfile, error)
	Save(ctx context.Context, profile models.UserProfile) error
}

type Handler struct {
	config   *Config
	profiles ProfileStore
	jobs     *camunda.Jobs
	logger   logger.Logger
}

func NewHandler(config *Config, profiles ProfileStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		profiles: profiles,
		jobs:     camunda.NewJobs(TaskType, log),
		logger:   log,
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

// execute merges the given preferences into the saved profile.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.CustomerID <= 0 {
		return nil, apperrors.NewMissingSessionError()
	}
	if input.MaxConcertBudget != nil && *input.MaxConcertBudget < 0 {
		return nil, apperrors.NewInvalidInputError("max_concert_budget must not be negative")
	}

	existing, err := h.profiles.Get(ctx, input.CustomerID)
	if err != nil && !errors.Is(err, memory.ErrProfileNotFound) {
		return nil, err
	}

	profile := memory.Merge(input.CustomerID, existing, memory.Update{
		MusicPreferences:  input.MusicPreferences,
		PreferredLocation: input.PreferredLocation,
		MaxConcertBudget:  input.MaxConcertBudget,
	})
	if err := h.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	h.logger.Info("profile saved", map[string]interface{}{
		"customerId": input.CustomerID,
		"created":    existing == nil,
	})

	return &Output{
		Saved:        true,
		LoadedMemory: memory.Format(&profile),
		Profile:      profile,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
