package getemployeebyinvoice

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
	TaskType = "get_employee_by_invoice_and_customer"
)

type EmployeeFinder interface {
	EmployeeForInvoice(ctx context.Context, invoiceID, customerID int64) (*models.SupportEmployee, error)
}

type Handler struct {
	config    *Config
	employees EmployeeFinder
	jobs      *camunda.Jobs
	logger    logger.Logger
}

func NewHandler(config *Config, employees EmployeeFinder, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		employees: employees,
		jobs:      camunda.NewJobs(TaskType, log),
		logger:    log,
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

func NotFoundMessage(invoiceID, customerID int64) string {
	return fmt.Sprintf("No employee found for invoice ID %d and customer identifier %d.", invoiceID, customerID)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.CustomerID <= 0 {
		return nil, apperrors.NewMissingSessionError()
	}

	employee, err := h.employees.EmployeeForInvoice(ctx, input.InvoiceID, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if employee == nil {
		h.jobs.NotFound()
		return &Output{Message: NotFoundMessage(input.InvoiceID, input.CustomerID)}, nil
	}

	return &Output{Employee: employee}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
