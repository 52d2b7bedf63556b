package background

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

// TaskCompletionLogger writes one JSON line per finished task to its output and
// mirrors lifecycle transitions to the application logger
type TaskCompletionLogger struct {
	logger types.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewTaskCompletionLogger writes completion lines to stdout
func NewTaskCompletionLogger() *TaskCompletionLogger {
	return NewTaskCompletionLoggerWithOutput(os.Stdout)
}

func NewTaskCompletionLoggerWithOutput(out io.Writer) *TaskCompletionLogger {
	return &TaskCompletionLogger{
		logger: logging.GetGlobalLogger().WithField("component", "background_tasks"),
		out:    out,
	}
}

// TaskCompletionLog is the completion line. The parsed resume is never part of it.
type TaskCompletionLog struct {
	ProcessID      string                 `json:"processId"`
	Status         string                 `json:"status"`
	Error          string                 `json:"error,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Operation      string                 `json:"operation"`
	ProcessingTime string                 `json:"processing_time"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// CreateTaskCompletionLog projects a TaskResult onto the completion line
func CreateTaskCompletionLog(result *TaskResult) *TaskCompletionLog {
	elapsed := time.Duration(0)
	if result.ProcessingTime != nil {
		elapsed = *result.ProcessingTime
	}

	return &TaskCompletionLog{
		ProcessID:      result.ProcessID,
		Status:         string(result.Status),
		Error:          result.Error,
		Timestamp:      time.Now(),
		Operation:      string(result.Type),
		ProcessingTime: elapsed.String(),
		Metadata:       result.Metadata,
	}
}

func (l *TaskCompletionLogger) LogTaskCompletion(result *TaskResult) error {
	line, err := json.Marshal(CreateTaskCompletionLog(result))
	if err != nil {
		return fmt.Errorf("failed to marshal task completion log: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write task completion log: %w", err)
	}
	return nil
}

// Transition logs a task entering status; failures go out at error level
func (l *TaskCompletionLogger) Transition(processID string, status TaskStatus, extra map[string]interface{}) {
	fields := map[string]interface{}{
		"process_id": processID,
		"status":     status,
	}
	for k, v := range extra {
		fields[k] = v
	}

	switch status {
	case TaskStatusFailure:
		l.logger.Error("Background task failed", fields)
	case TaskStatusSuccess:
		l.logger.Info("Background task completed", fields)
	case TaskStatusProcessing:
		l.logger.Info("Background task started", fields)
	default:
		l.logger.Info("Background task accepted", fields)
	}
}
