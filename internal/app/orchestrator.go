package app

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/yt-grabber-go/internal/domain"
)

// eventBufferSize bounds the orchestrator's event channel. Lifecycle
// events block on a full channel so delivery stays exactly-once; progress
// events are dropped instead so a slow subscriber never stalls a transfer.
const eventBufferSize = 256

// Orchestrator accepts download requests, runs each on its own goroutine
// worker and broadcasts lifecycle events to a single subscriber via the
// Events channel. The registry of cancel handles is the only shared state
// it owns; a handle is released as soon as its task reaches a terminal
// state.
type Orchestrator struct {
	extractor domain.Extractor
	config    *domain.DownloadConfig
	logger    *zap.Logger

	events chan domain.Event
	sem    chan struct{} // nil when concurrency is unbounded

	mu    sync.Mutex
	tasks map[string]context.CancelFunc

	workerWg sync.WaitGroup
	closed   bool
}

// NewOrchestrator creates a new download orchestrator
func NewOrchestrator(extractor domain.Extractor, config *domain.DownloadConfig, logger *zap.Logger) *Orchestrator {
	var sem chan struct{}
	if config.ConcurrentLimit > 0 {
		sem = make(chan struct{}, config.ConcurrentLimit)
	}

	return &Orchestrator{
		extractor: extractor,
		config:    config,
		logger:    logger,
		events:    make(chan domain.Event, eventBufferSize),
		sem:       sem,
		tasks:     make(map[string]context.CancelFunc),
	}
}

// Events returns the orchestrator's event stream. Exactly one consumer
// must drain it; the channel is closed by Close after all workers exit.
func (o *Orchestrator) Events() <-chan domain.Event {
	return o.events
}

// Submit validates the URL, spawns a worker for it and returns the fresh
// task identifier without blocking on extraction or transfer. Invalid
// URLs are rejected synchronously with ErrInvalidURL and no task is
// created. Unrecognized quality values fall back to QualityBest.
func (o *Orchestrator) Submit(url string, quality domain.Quality) (string, error) {
	if !domain.IsValidURL(url) {
		return "", domain.ErrInvalidURL
	}

	taskID := uuid.New().String()
	normalized := domain.NormalizeURL(url)
	quality = domain.NormalizeQuality(quality)

	ctx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		cancel()
		return "", domain.ErrInvalidURL
	}
	o.tasks[taskID] = cancel
	o.mu.Unlock()

	o.logger.Info("Download submitted",
		zap.String("task_id", taskID),
		zap.String("url", normalized),
		zap.String("quality", string(quality)))

	o.workerWg.Add(1)
	go o.runWorker(ctx, taskID, normalized, quality)

	return taskID, nil
}

// Cancel signals the task's transfer to stop as soon as possible. Returns
// true when the task was still active, false for unknown or already
// terminal tasks. Cancellation is cooperative and may race with natural
// completion; whichever terminal event the worker reaches first wins.
func (o *Orchestrator) Cancel(taskID string) bool {
	o.mu.Lock()
	cancel, ok := o.tasks[taskID]
	o.mu.Unlock()

	if !ok {
		return false
	}

	o.logger.Info("Cancellation requested", zap.String("task_id", taskID))
	cancel()
	return true
}

// ActiveCount returns the number of workers whose handle has not yet been
// released
func (o *Orchestrator) ActiveCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.tasks)
}

// Close cancels all active tasks, waits for their workers to finish and
// closes the event channel. The orchestrator accepts no submissions
// afterwards.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	for _, cancel := range o.tasks {
		cancel()
	}
	o.mu.Unlock()

	o.workerWg.Wait()
	close(o.events)
}

// release drops the worker handle for a task. Called by the worker itself
// once it reaches a terminal state.
func (o *Orchestrator) release(taskID string, cancel context.CancelFunc) {
	cancel()
	o.mu.Lock()
	delete(o.tasks, taskID)
	o.mu.Unlock()
}

// publish delivers a lifecycle event, blocking until the subscriber
// accepts it
func (o *Orchestrator) publish(e domain.Event) {
	o.events <- e
}

// publishProgress delivers a progress event without blocking; events are
// dropped when the subscriber lags behind
func (o *Orchestrator) publishProgress(e domain.Progress) {
	select {
	case o.events <- e:
	default:
		o.logger.Debug("Progress event dropped", zap.String("task_id", e.TaskID))
	}
}
