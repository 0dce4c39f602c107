// Package api holds the failure shape produced by HTTP calls to the routines
// backend and a thin helper that produces it. The individual domain calls
// live with their callers.
package api

import (
	"fmt"
	"net/http"
)

// ResponseData is the error body the backend returns with non-2xx responses
type ResponseData struct {
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Error is a failed request. Transport failures carry only Code/Cause; HTTP
// failures carry the status and whatever body the server sent.
type Error struct {
	Method     string
	URL        string
	RequestID  string
	Status     int
	StatusText string
	Data       *ResponseData
	Code       string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Data != nil && e.Data.Message != "":
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Data.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, statusText(e))
	case e.Cause != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
	default:
		return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ServerMessage returns the explicit message the server put in the body
func (e *Error) ServerMessage() string {
	if e.Data == nil {
		return ""
	}
	return e.Data.Message
}

func statusText(e *Error) string {
	if e.StatusText != "" {
		return e.StatusText
	}
	return http.StatusText(e.Status)
}
