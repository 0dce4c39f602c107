package interfaces

import "context"

// DiagnosticRecord is the structured entry written for every reported failure
type DiagnosticRecord struct {
	Status     int    `json:"status,omitempty"`
	StatusText string `json:"statusText,omitempty"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	URL        string `json:"url,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	Stack      string `json:"stack,omitempty"`
	Raw        error  `json:"-"`
}

// DiagnosticSink is a write-only destination for failure records
type DiagnosticSink interface {
	Record(ctx context.Context, record DiagnosticRecord)
}

// Notifier shows a user-facing message
type Notifier interface {
	Notify(message string)
}
