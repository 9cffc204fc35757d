// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"time"

	"github.com/google/uuid"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the uniform response structure returned for every dispatch
// outcome. Success responses carry Data; error responses carry ErrorCode and
// optionally Details.
type Envelope struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Data      any            `json:"data,omitempty"`
	ErrorCode string         `json:"error_code,omitempty"`
	Details   any            `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"request_id"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Formatter builds response envelopes for a single request. The request id
// is generated once per formatter, so every envelope written through the same
// formatter shares it, while formatters for different requests are unrelated.
type Formatter struct {
	requestID string
	now       func() time.Time
}

// NewFormatter creates a Formatter with a fresh random request id.
func NewFormatter() *Formatter {
	return &Formatter{
		requestID: uuid.Must(uuid.NewV7()).String(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewFormatterWithRequestID creates a Formatter bound to an externally
// assigned request id, such as one from the requestid middleware.
func NewFormatterWithRequestID(requestID string) *Formatter {
	if requestID == "" {
		return NewFormatter()
	}
	return &Formatter{
		requestID: requestID,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RequestID returns the request id shared by all envelopes from this formatter.
func (f *Formatter) RequestID() string {
	return f.requestID
}

// Success builds a success envelope with the given message and payload.
func (f *Formatter) Success(message string, data any, meta map[string]any) Envelope {
	return Envelope{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		Timestamp: f.timestamp(),
		RequestID: f.requestID,
		Meta:      meta,
	}
}

// Error builds an error envelope with the given code, message and optional details.
func (f *Formatter) Error(code, message string, details any, meta map[string]any) Envelope {
	return Envelope{
		Status:    StatusError,
		Message:   message,
		ErrorCode: code,
		Details:   details,
		Timestamp: f.timestamp(),
		RequestID: f.requestID,
		Meta:      meta,
	}
}

// timestamp formats the current time as ISO-8601 UTC.
func (f *Formatter) timestamp() string {
	return f.now().Format(time.RFC3339)
}
