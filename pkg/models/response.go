package models

import "time"

// ParseResumeResponse represents the response from a synchronous parse request
type ParseResumeResponse struct {
	Success        bool          `json:"success"`
	Resume         *ResumeData   `json:"resume,omitempty"`
	Markdown       string        `json:"markdown,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// ConvertResponse represents the response from a conversion-only request
type ConvertResponse struct {
	Success        bool          `json:"success"`
	Markdown       string        `json:"markdown"`
	Format         string        `json:"format"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// ExtractResponse represents the response from an extraction-only request
type ExtractResponse struct {
	Success        bool          `json:"success"`
	Resume         *ResumeData   `json:"resume"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
