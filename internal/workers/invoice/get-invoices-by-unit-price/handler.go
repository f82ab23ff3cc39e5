package getinvoicesbyunitprice

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"music-store-agent/internal/common/camunda"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/models"
)

const (
	TaskType = "get_invoices_sorted_by_unit_price"
)

type LinePriceLister interface {
	InvoicesByUnitPrice(ctx context.Context, customerID int64) ([]models.InvoiceLinePrice, error)
}

type Handler struct {
	config *Config
	lines  LinePriceLister
	jobs   *camunda.Jobs
	logger logger.Logger
}

func NewHandler(config *Config, lines LinePriceLister, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		lines:  lines,
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
	if input.CustomerID <= 0 {
		return nil, apperrors.NewMissingSessionError()
	}

	lines, err := h.lines.InvoicesByUnitPrice(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		h.jobs.NotFound()
	}

	return &Output{Invoices: lines, RowCount: len(lines)}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
