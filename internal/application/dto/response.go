package dto

import (
	"time"

	"github.com/hearthware/ovenlink/pkg/errors"
)

// APIResponse is the common envelope of every JSON response.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorDTO   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ErrorDTO carries the machine-readable failure class and a human message.
type ErrorDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse wraps data in the common envelope.
func SuccessResponse(data interface{}, requestID string) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}

// ErrorResponse wraps a failure in the common envelope. Foreign errors are
// reported as internal without leaking their text structure semantics.
func ErrorResponse(err error, requestID string) *APIResponse {
	return &APIResponse{
		Success: false,
		Error: &ErrorDTO{
			Code:    string(errors.CodeOf(err)),
			Message: err.Error(),
		},
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
