package models

import "time"

// AsyncStatus mirrors the lifecycle of a background parse task
type AsyncStatus string

const (
	AsyncStatusAccepted   AsyncStatus = "ACCEPTED"
	AsyncStatusProcessing AsyncStatus = "PROCESSING"
	AsyncStatusSuccess    AsyncStatus = "SUCCESS"
	AsyncStatusFailure    AsyncStatus = "FAILURE"
)

// TaskStatusPath is where clients poll a submitted task
const TaskStatusPath = "/api/v1/tasks/"

// AsyncParseResponse acknowledges a queued parse
type AsyncParseResponse struct {
	ProcessID string      `json:"processId"`
	Status    AsyncStatus `json:"status"`
	Message   string      `json:"message"`
	StatusURL string      `json:"statusUrl"`
	Timestamp time.Time   `json:"timestamp"`
}

// AsyncTaskStatusResponse is the polled view of one task
type AsyncTaskStatusResponse struct {
	ProcessID        string                 `json:"processId"`
	Status           AsyncStatus            `json:"status"`
	Data             interface{}            `json:"data,omitempty"`
	Error            string                 `json:"error,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	CompletedAt      *time.Time             `json:"completedAt,omitempty"`
	ProcessingTimeMs *int64                 `json:"processingTimeMs,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// IsCompleted reports whether the task reached SUCCESS or FAILURE
func (r *AsyncTaskStatusResponse) IsCompleted() bool {
	return r.Status == AsyncStatusSuccess || r.Status == AsyncStatusFailure
}

// AsyncParseCompletionData is the payload of a finished parse task
type AsyncParseCompletionData struct {
	Resume   *ResumeData `json:"resume,omitempty"`
	Markdown string      `json:"markdown,omitempty"`
	Filename string      `json:"filename"`
}

type AsyncTaskListResponse struct {
	Success bool                      `json:"success"`
	Tasks   []AsyncTaskStatusResponse `json:"tasks"`
	Count   int                       `json:"count"`
}

type AsyncErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	ProcessID string    `json:"processId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func CreateAsyncParseResponse(processID string) *AsyncParseResponse {
	return &AsyncParseResponse{
		ProcessID: processID,
		Status:    AsyncStatusAccepted,
		Message:   "Resume accepted for background parsing",
		StatusURL: TaskStatusPath + processID,
		Timestamp: time.Now(),
	}
}

// CreateAsyncErrorResponse builds an error body; processID is optional
func CreateAsyncErrorResponse(code, message string, processID ...string) *AsyncErrorResponse {
	response := &AsyncErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(processID) > 0 {
		response.ProcessID = processID[0]
	}
	return response
}
