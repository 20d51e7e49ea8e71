// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"booking-workers/internal/common/config"
	"booking-workers/internal/common/logger"
)

// Registration is one job worker the manager opens on the broker.
type Registration struct {
	TaskType string
	Config   config.WorkerConfig
	Handler  worker.JobHandler
}

// Workers keeps the opened job workers so they can be listed and closed together.
type Workers struct {
	client zbc.Client
	logger logger.Logger

	mu   sync.Mutex
	open map[string]worker.JobWorker
}

func NewWorkers(client zbc.Client, log logger.Logger) *Workers {
	return &Workers{client: client, logger: log, open: make(map[string]worker.JobWorker)}
}

// Start opens reg unless it is disabled. It reports whether a worker was opened.
func (w *Workers) Start(reg Registration) bool {
	if !reg.Config.Enabled {
		w.logger.Info("Worker disabled", map[string]interface{}{"taskType": reg.TaskType})
		return false
	}

	jobWorker := w.client.NewJobWorker().
		JobType(reg.TaskType).
		Handler(reg.Handler).
		MaxJobsActive(reg.Config.MaxJobsActive).
		Timeout(config.GetDuration(reg.Config.Timeout)).
		Name(fmt.Sprintf("%s-worker", reg.TaskType)).
		Open()

	w.mu.Lock()
	w.open[reg.TaskType] = jobWorker
	w.mu.Unlock()

	w.logger.Info("Worker started", map[string]interface{}{
		"taskType":      reg.TaskType,
		"maxJobsActive": reg.Config.MaxJobsActive,
		"timeoutMs":     reg.Config.Timeout,
	})
	return true
}

// TaskTypes lists the open workers in sorted order.
func (w *Workers) TaskTypes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	types := make([]string, 0, len(w.open))
	for t := range w.open {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Close stops polling and waits for in-flight handlers of every worker.
func (w *Workers) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for taskType, jw := range w.open {
		w.logger.Info("Stopping worker", map[string]interface{}{"taskType": taskType})
		jw.Close()
		jw.AwaitClose()
		delete(w.open, taskType)
	}
}

// CompleteJob completes job with variables, retrying transient gateway errors.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, variables map[string]interface{}) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		return fmt.Errorf("build complete command for job %d: %w", job.GetKey(), err)
	}
	return Retry(ctx, DefaultRetryConfig, "complete-job", func(ctx context.Context) error {
		_, err := request.Send(ctx)
		return err
	})
}
