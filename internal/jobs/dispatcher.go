package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sevigo/review-warden/internal/config"
	"github.com/sevigo/review-warden/internal/core"
)

// ErrQueueFull is returned by Dispatch when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full, cannot accept new review job")

// ErrDispatcherStopped is returned by Dispatch after Stop.
var ErrDispatcherStopped = errors.New("dispatcher is stopped")

// DefaultJobTimeout bounds a single background review.
const DefaultJobTimeout = 15 * time.Minute

// Dispatcher runs queued webhook events on a fixed pool of workers.
type Dispatcher struct {
	job        core.Job
	queue      chan *core.GitHubEvent
	maxWorkers int
	timeout    time.Duration

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

var _ core.JobDispatcher = (*Dispatcher)(nil)

// NewDispatcher starts server.max_workers workers reading from a queue of
// server.queue_size events.
func NewDispatcher(job core.Job, cfg *config.Config, logger *slog.Logger) *Dispatcher {
	workers := max(cfg.Server.MaxWorkers, 1)
	queueSize := max(cfg.Server.QueueSize, 1)

	d := &Dispatcher{
		job:        job,
		queue:      make(chan *core.GitHubEvent, queueSize),
		maxWorkers: workers,
		timeout:    DefaultJobTimeout,
		logger:     logger,
	}
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.logger.Debug("review worker started", "id", id)

	for event := range d.queue {
		d.process(id, event)
	}

	d.logger.Debug("review worker stopped", "id", id)
}

func (d *Dispatcher) process(workerID int, event *core.GitHubEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	err := d.job.Run(ctx, event)
	if err != nil {
		d.logger.Error("review job failed",
			"worker_id", workerID,
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	d.logger.Info("review job finished",
		"worker_id", workerID,
		"repo", event.RepoFullName,
		"pr", event.PRNumber,
		"duration", time.Since(start),
	)
}

// Dispatch queues event without blocking. A full queue yields ErrQueueFull.
func (d *Dispatcher) Dispatch(_ context.Context, event *core.GitHubEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- event:
		d.logger.Info("review job queued", "repo", event.RepoFullName, "pr", event.PRNumber, "queued", len(d.queue))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued and running jobs to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
