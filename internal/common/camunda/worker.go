// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/google/uuid"

	"music-store-agent/internal/common/config"
	apperrors "music-store-agent/internal/common/errors"
	"music-store-agent/internal/common/logger"
	"music-store-agent/internal/common/metrics"
	"music-store-agent/internal/common/validation"
)

// JobHandler is implemented by every tool worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Jobs carries the decode/complete/fail plumbing shared by the tool workers.
type Jobs struct {
	taskType string
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewJobs(taskType string, log logger.Logger) *Jobs {
	return &Jobs{
		taskType: taskType,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// Begin logs the job, marks it active and returns a func that records its duration.
func (j *Jobs) Begin(job entities.Job) func() {
	j.logger.Info("processing job", map[string]interface{}{
		"callId":      uuid.NewString(),
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	start := time.Now()
	metrics.ToolCallsActive.WithLabelValues(j.taskType).Inc()
	return func() {
		metrics.ToolCallsActive.WithLabelValues(j.taskType).Dec()
		metrics.ToolCallDuration.WithLabelValues(j.taskType).Observe(time.Since(start).Seconds())
	}
}

// Decode validates the job variables against schema, when one is set, and
// unmarshals them into v. Failures are INVALID_INPUT errors.
func (j *Jobs) Decode(job entities.Job, schema *validation.Schema, v interface{}) error {
	variables := job.Variables
	if variables == "" {
		variables = "{}"
	}

	if schema != nil {
		result, err := schema.ValidateJSON(variables)
		if err != nil {
			return apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
		}
		if !result.Valid {
			return apperrors.NewInvalidInputError(fmt.Sprintf("%v", result.GetErrorMessages()))
		}
	}

	if err := json.Unmarshal([]byte(variables), v); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return nil
}

// Complete sends the tool output back as job variables.
func (j *Jobs) Complete(client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		j.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		j.Fail(client, job, apperrors.NewInternalError(err))
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		j.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.ToolCallsCompleted.WithLabelValues(j.taskType).Inc()
}

// Fail reports err to the engine: upstream failures become incidents, the
// rest are thrown as BPMN errors.
func (j *Jobs) Fail(client worker.JobClient, job entities.Job, err error) {
	bpmnErr := j.errors.HandleJobError(context.Background(), client, job, err)
	metrics.ToolCallsFailed.WithLabelValues(j.taskType, bpmnErr.Code).Inc()
}

// NotFound counts a call that completed with a not-found result.
func (j *Jobs) NotFound() {
	metrics.NotFoundResults.WithLabelValues(j.taskType).Inc()
}

// Worker is an open job worker for one tool.
type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType using the per-worker settings.
func NewWorker(client zbc.Client, taskType string, cfg config.WorkerConfig, handler JobHandler, log logger.Logger) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(config.GetDuration(cfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": cfg.MaxJobsActive,
		"timeout":       cfg.Timeout,
	})

	return &Worker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

func (w *Worker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
