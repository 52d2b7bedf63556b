package background

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-parser/pkg/models"
)

// TaskStatus is the lifecycle position of a parse task
type TaskStatus string

const (
	TaskStatusAccepted   TaskStatus = "ACCEPTED"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusSuccess    TaskStatus = "SUCCESS"
	TaskStatusFailure    TaskStatus = "FAILURE"
)

// Final reports whether no further transitions can happen
func (s TaskStatus) Final() bool {
	return s == TaskStatusSuccess || s == TaskStatusFailure
}

// TaskType names the work a task performs
type TaskType string

const (
	TaskTypeParse TaskType = "parse"
)

// TaskResult is the bookkeeping record kept for every submitted task
type TaskResult struct {
	ProcessID      string                 `json:"processId"`
	Type           TaskType               `json:"type"`
	Status         TaskStatus             `json:"status"`
	Data           interface{}            `json:"data,omitempty"`
	Error          string                 `json:"error,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	ProcessingTime *time.Duration         `json:"processingTime,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// ParseTaskData is the payload of a successful parse task
type ParseTaskData struct {
	Resume   *models.ResumeData `json:"resume,omitempty"`
	Markdown string             `json:"markdown,omitempty"`
	Filename string             `json:"filename"`
}

func (r *TaskResult) clone() *TaskResult {
	c := *r
	if r.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// expiredBefore reports whether a finished task completed before cutoff.
// Unfinished tasks are bounded by the task timeout and never expire here.
func (r *TaskResult) expiredBefore(cutoff time.Time) bool {
	if !r.Status.Final() {
		return false
	}
	finished := r.CreatedAt
	if r.CompletedAt != nil {
		finished = *r.CompletedAt
	}
	return finished.Before(cutoff)
}

func sortNewestFirst(results []*TaskResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
}

// TaskStore persists task bookkeeping
type TaskStore interface {
	// Store records a new task; an existing process ID is rejected with ErrTaskExists
	Store(ctx context.Context, result *TaskResult) error
	Get(ctx context.Context, processID string) (*TaskResult, error)
	// Update replaces an existing task
	Update(ctx context.Context, result *TaskResult) error
	Delete(ctx context.Context, processID string) error
	// Cleanup drops finished tasks that completed more than maxAge ago
	Cleanup(ctx context.Context, maxAge time.Duration) error
	// List returns every task, newest first
	List(ctx context.Context) ([]*TaskResult, error)
}

// InMemoryTaskStore keeps tasks in a map. Results are copied on the way in and out.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*TaskResult
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]*TaskResult)}
}

func (s *InMemoryTaskStore) Store(ctx context.Context, result *TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[result.ProcessID]; ok {
		return ErrTaskExists
	}
	s.tasks[result.ProcessID] = result.clone()
	return nil
}

func (s *InMemoryTaskStore) Get(ctx context.Context, processID string) (*TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if result, ok := s.tasks[processID]; ok {
		return result.clone(), nil
	}
	return nil, ErrTaskNotFound
}

func (s *InMemoryTaskStore) Update(ctx context.Context, result *TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[result.ProcessID]; !ok {
		return ErrTaskNotFound
	}
	s.tasks[result.ProcessID] = result.clone()
	return nil
}

func (s *InMemoryTaskStore) Delete(ctx context.Context, processID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[processID]; !ok {
		return ErrTaskNotFound
	}
	delete(s.tasks, processID)
	return nil
}

func (s *InMemoryTaskStore) Cleanup(ctx context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, result := range s.tasks {
		if result.expiredBefore(cutoff) {
			delete(s.tasks, id)
		}
	}
	return nil
}

func (s *InMemoryTaskStore) List(ctx context.Context) ([]*TaskResult, error) {
	s.mu.RLock()
	results := make([]*TaskResult, 0, len(s.tasks))
	for _, result := range s.tasks {
		results = append(results, result.clone())
	}
	s.mu.RUnlock()

	sortNewestFirst(results)
	return results, nil
}

// TaskError is a task manager failure with a stable machine-readable code
type TaskError struct {
	Code    string
	Message string
}

func (e *TaskError) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound = &TaskError{Code: "task_not_found", Message: "task not found"}
	ErrTaskExists   = &TaskError{Code: "task_exists", Message: "a task with this process ID already exists"}
	ErrQueueFull    = &TaskError{Code: "queue_full", Message: "task queue is full"}
	ErrNotRunning   = &TaskError{Code: "task_manager_stopped", Message: "task manager is not running"}
)
