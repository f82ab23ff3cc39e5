package resolvecustomer

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"music-store-agent/internal/common/camunda"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/identity"
)

const (
	TaskType = "resolve_customer"
)

type Handler struct {
	config   *Config
	resolver *identity.Resolver
	jobs     *camunda.Jobs
	logger   logger.Logger
}

func NewHandler(config *Config, lookup identity.CustomerLookup, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		resolver: identity.NewResolver(lookup, log),
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	result, err := h.resolver.Resolve(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}

	if !result.Found {
		h.jobs.NotFound()
		h.logger.Info("customer not found", map[string]interface{}{
			"kind":       string(result.Kind),
			"identifier": input.Identifier,
		})
		return &Output{Found: false}, nil
	}

	id := result.CustomerID
	return &Output{
		Found:      true,
		CustomerID: &id,
		Ambiguous:  result.Ambiguous,
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
