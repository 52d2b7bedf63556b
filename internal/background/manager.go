package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-parser/internal/config"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
	"resume-parser/internal/resume"
)

// Worker pool limits
const (
	DefaultMaxWorkers   = 10
	DefaultMaxQueueSize = 100

	MinWorkers   = 1
	MinQueueSize = 1

	MaxWorkers   = 1000
	MaxQueueSize = 10000
)

// errStoppedBeforeRun marks queued work abandoned by Stop
var errStoppedBeforeRun = errors.New("task manager stopped before the task ran")

// ResumeParser runs the full document-to-ResumeData pipeline
type ResumeParser interface {
	ParseResume(ctx context.Context, content []byte, filename string) (*resume.Result, error)
}

// ParseTaskInput is an uploaded document queued for parsing
type ParseTaskInput struct {
	Filename        string
	Content         []byte
	IncludeMarkdown bool
}

// TaskManager runs resume parses off the request path
type TaskManager interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// SubmitParseTask queues a document; it fails fast with ErrQueueFull instead of blocking
	SubmitParseTask(ctx context.Context, processID string, input ParseTaskInput) error

	GetTaskResult(ctx context.Context, processID string) (*TaskResult, error)
	GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error)
	ListTasks(ctx context.Context) ([]*TaskResult, error)

	IsHealthy() bool
}

// CompletionNotifier is told about every task that reaches a final status
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, result *TaskResult) error
}

// parseJob is one queued document. The bytes never reach the store.
type parseJob struct {
	processID string
	input     ParseTaskInput
	ctx       context.Context
	cancel    context.CancelFunc
}

// TaskManagerImpl is a fixed worker pool fed by a bounded queue
type TaskManagerImpl struct {
	config    *config.Config
	parser    ResumeParser
	store     TaskStore
	logger    *TaskCompletionLogger
	appLogger types.Logger
	notifier  CompletionNotifier

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup

	jobs         chan *parseJob
	maxWorkers   int
	maxQueueSize int
}

func validateTaskManagerConfig(cfg *config.Config) (maxWorkers, maxQueueSize int, err error) {
	maxWorkers, err = boundedSize("worker pool size", cfg.Workers.PoolSize, DefaultMaxWorkers, MinWorkers, MaxWorkers)
	if err != nil {
		return 0, 0, err
	}
	maxQueueSize, err = boundedSize("queue size", cfg.Workers.QueueSize, DefaultMaxQueueSize, MinQueueSize, MaxQueueSize)
	if err != nil {
		return 0, 0, err
	}
	return maxWorkers, maxQueueSize, nil
}

// boundedSize applies the default for unset values and rejects values outside [min, max]
func boundedSize(name string, value, def, lo, hi int) (int, error) {
	switch {
	case value <= 0:
		return def, nil
	case value < lo:
		return 0, fmt.Errorf("%s (%d) is below minimum (%d)", name, value, lo)
	case value > hi:
		return 0, fmt.Errorf("%s (%d) exceeds maximum (%d)", name, value, hi)
	}
	return value, nil
}

// NewTaskManager builds a manager over store; a nil store means in-memory
func NewTaskManager(cfg *config.Config, parser ResumeParser, store TaskStore) *TaskManagerImpl {
	logger := logging.GetGlobalLogger().WithField("component", "task_manager")

	maxWorkers, maxQueueSize, err := validateTaskManagerConfig(cfg)
	if err != nil {
		logger.Warn("Invalid worker configuration, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		maxWorkers, maxQueueSize = DefaultMaxWorkers, DefaultMaxQueueSize
	}

	if store == nil {
		store = NewInMemoryTaskStore()
	}

	logger.Info("Task manager configured", map[string]interface{}{
		"max_workers":    maxWorkers,
		"max_queue_size": maxQueueSize,
		"store":          fmt.Sprintf("%T", store),
	})

	return &TaskManagerImpl{
		config:       cfg,
		parser:       parser,
		store:        store,
		logger:       NewTaskCompletionLogger(),
		appLogger:    logger,
		jobs:         make(chan *parseJob, maxQueueSize),
		maxWorkers:   maxWorkers,
		maxQueueSize: maxQueueSize,
	}
}

// SetNotifier registers a notifier for finished tasks. Call before Start.
func (tm *TaskManagerImpl) SetNotifier(notifier CompletionNotifier) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.notifier = notifier
}

// Start launches the workers and the cleanup loop. A stopped manager cannot be restarted.
func (tm *TaskManagerImpl) Start(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.running {
		return fmt.Errorf("task manager already running")
	}
	if tm.ctx != nil {
		return fmt.Errorf("task manager cannot be restarted")
	}

	tm.ctx, tm.cancel = context.WithCancel(ctx)
	tm.running = true

	tm.wg.Add(tm.maxWorkers + 1)
	for i := 0; i < tm.maxWorkers; i++ {
		go tm.worker(i)
	}
	go tm.cleanupRoutine()

	tm.appLogger.Info("Task manager started", map[string]interface{}{
		"max_workers": tm.maxWorkers,
	})
	return nil
}

// Stop cancels in-flight parses, fails queued ones and waits for the workers
func (tm *TaskManagerImpl) Stop(ctx context.Context) error {
	tm.mu.Lock()
	if !tm.running {
		tm.mu.Unlock()
		return nil
	}
	tm.running = false
	tm.cancel()
	close(tm.jobs)
	tm.mu.Unlock()

	tm.appLogger.Info("Stopping task manager", map[string]interface{}{
		"queued": len(tm.jobs),
	})

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.appLogger.Info("Task manager stopped")
		return nil
	case <-ctx.Done():
		tm.appLogger.Warn("Task manager shutdown timed out")
		return ctx.Err()
	}
}

// SubmitParseTask records the task as ACCEPTED and queues it
func (tm *TaskManagerImpl) SubmitParseTask(ctx context.Context, processID string, input ParseTaskInput) error {
	// Held for the send so Stop cannot close the channel underneath us
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if !tm.running || tm.ctx.Err() != nil {
		return ErrNotRunning
	}

	record := &TaskResult{
		ProcessID: processID,
		Type:      TaskTypeParse,
		Status:    TaskStatusAccepted,
		CreatedAt: time.Now(),
		Metadata: map[string]interface{}{
			"filename":   input.Filename,
			"size_bytes": len(input.Content),
		},
	}
	if err := tm.store.Store(ctx, record); err != nil {
		return fmt.Errorf("failed to store task result: %w", err)
	}

	jobCtx, cancel := context.WithCancel(tm.ctx)
	job := &parseJob{processID: processID, input: input, ctx: jobCtx, cancel: cancel}

	select {
	case tm.jobs <- job:
		tm.logger.Transition(processID, TaskStatusAccepted, map[string]interface{}{
			"filename": input.Filename,
		})
		return nil
	default:
		cancel()
		_ = tm.store.Delete(context.Background(), processID)
		return ErrQueueFull
	}
}

func (tm *TaskManagerImpl) GetTaskResult(ctx context.Context, processID string) (*TaskResult, error) {
	return tm.store.Get(ctx, processID)
}

func (tm *TaskManagerImpl) GetTaskStatus(ctx context.Context, processID string) (TaskStatus, error) {
	result, err := tm.store.Get(ctx, processID)
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

// ListTasks returns every known task, newest first
func (tm *TaskManagerImpl) ListTasks(ctx context.Context) ([]*TaskResult, error) {
	return tm.store.List(ctx)
}

func (tm *TaskManagerImpl) IsHealthy() bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.running && tm.ctx.Err() == nil
}

// QueueDepth returns the number of tasks waiting for a worker
func (tm *TaskManagerImpl) QueueDepth() int {
	return len(tm.jobs)
}

// worker drains the queue until Stop closes it
func (tm *TaskManagerImpl) worker(workerID int) {
	defer tm.wg.Done()

	for job := range tm.jobs {
		tm.run(workerID, job)
	}

	tm.appLogger.Debug("Task worker stopped", map[string]interface{}{
		"worker_id": workerID,
	})
}

func (tm *TaskManagerImpl) run(workerID int, job *parseJob) {
	defer job.cancel()

	started := time.Now()
	// bookkeeping must land even when the job context was canceled
	storeCtx := context.Background()

	var (
		parsed *resume.Result
		err    error
	)
	if job.ctx.Err() != nil {
		err = errStoppedBeforeRun
	} else {
		if err := tm.setStatus(storeCtx, job.processID, TaskStatusProcessing); err != nil {
			tm.appLogger.Error("Failed to mark task as processing", map[string]interface{}{
				"process_id": job.processID,
				"error":      err.Error(),
			})
		}
		tm.logger.Transition(job.processID, TaskStatusProcessing, map[string]interface{}{
			"worker_id": workerID,
		})

		execCtx := job.ctx
		if timeout := tm.config.BackgroundTasks.TaskTimeout; timeout > 0 {
			var cancel context.CancelFunc
			execCtx, cancel = context.WithTimeout(execCtx, timeout)
			defer cancel()
		}
		parsed, err = tm.parser.ParseResume(execCtx, job.input.Content, job.input.Filename)
	}

	record := tm.complete(storeCtx, job, parsed, err, started)

	if err := tm.store.Update(storeCtx, record); err != nil {
		tm.appLogger.Error("Failed to store task result", map[string]interface{}{
			"process_id": job.processID,
			"error":      err.Error(),
		})
	}

	if err := tm.logger.LogTaskCompletion(record); err != nil {
		tm.appLogger.Error("Failed to log task completion", map[string]interface{}{
			"error": err.Error(),
		})
	}

	tm.mu.RLock()
	notifier := tm.notifier
	tm.mu.RUnlock()
	if notifier != nil {
		if err := notifier.NotifyCompletion(storeCtx, record); err != nil {
			tm.appLogger.Error("Failed to deliver completion callback", map[string]interface{}{
				"process_id": job.processID,
				"error":      err.Error(),
			})
		}
	}
}

// complete folds the parse outcome into the stored record, keeping CreatedAt and submission metadata
func (tm *TaskManagerImpl) complete(ctx context.Context, job *parseJob, parsed *resume.Result, parseErr error, started time.Time) *TaskResult {
	record, err := tm.store.Get(ctx, job.processID)
	if err != nil {
		tm.appLogger.Warn("Task record missing at completion", map[string]interface{}{
			"process_id": job.processID,
			"error":      err.Error(),
		})
		record = &TaskResult{ProcessID: job.processID, Type: TaskTypeParse, CreatedAt: started}
	}
	if record.Metadata == nil {
		record.Metadata = make(map[string]interface{})
	}

	elapsed := time.Since(started)
	completedAt := time.Now()
	record.ProcessingTime = &elapsed
	record.CompletedAt = &completedAt

	if parseErr != nil {
		record.Status = TaskStatusFailure
		record.Error = parseErr.Error()
		record.Data = nil
		tm.logger.Transition(job.processID, TaskStatusFailure, map[string]interface{}{
			"error":           parseErr.Error(),
			"processing_time": elapsed.String(),
		})
		return record
	}

	data := &ParseTaskData{Resume: parsed.Resume, Filename: job.input.Filename}
	if job.input.IncludeMarkdown {
		data.Markdown = parsed.Markdown
	}
	record.Status = TaskStatusSuccess
	record.Data = data
	record.Metadata["markdown_chars"] = len(parsed.Markdown)

	tm.logger.Transition(job.processID, TaskStatusSuccess, map[string]interface{}{
		"processing_time": elapsed.String(),
	})
	return record
}

func (tm *TaskManagerImpl) setStatus(ctx context.Context, processID string, status TaskStatus) error {
	record, err := tm.store.Get(ctx, processID)
	if err != nil {
		return err
	}
	record.Status = status
	return tm.store.Update(ctx, record)
}

// cleanupRoutine periodically drops finished tasks older than background_tasks.max_task_age
func (tm *TaskManagerImpl) cleanupRoutine() {
	defer tm.wg.Done()

	interval := tm.config.BackgroundTasks.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	maxAge := tm.config.BackgroundTasks.MaxTaskAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-tm.ctx.Done():
			return
		case <-ticker.C:
			if err := tm.store.Cleanup(context.Background(), maxAge); err != nil {
				tm.appLogger.Error("Failed to clean up old task results", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}
