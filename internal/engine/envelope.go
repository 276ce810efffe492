package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-insights/internal/common"
)

// Status is the outcome of an engine call.
type Status string

// Status values.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorKind classifies a failed call.
type ErrorKind string

// Error kinds.
const (
	KindValidation ErrorKind = "validation"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// ErrorInfo describes why a call failed.
type ErrorInfo struct {
	Kind    ErrorKind                `json:"kind"`
	Message string                   `json:"message"`
	Issues  []common.ValidationIssue `json:"issues,omitempty"`
}

// Response is the envelope every entry point returns.
type Response[T any] struct {
	Data      T          `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Status    Status     `json:"status"`
	RequestID string     `json:"request_id"`
}

// OK reports whether the call succeeded.
func (r Response[T]) OK() bool {
	return r.Status == StatusSuccess
}

// Err converts a failed response back into an error.
func (r Response[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	switch r.Error.Kind {
	case KindValidation:
		return &common.ValidationError{Issues: r.Error.Issues}
	case KindCanceled:
		return context.Canceled
	default:
		return errors.New(r.Error.Message)
	}
}

func success[T any](requestID string, data T) Response[T] {
	return Response[T]{Status: StatusSuccess, RequestID: requestID, Data: data}
}

func failure[T any](requestID string, err error) Response[T] {
	info := &ErrorInfo{Kind: KindInternal, Message: err.Error()}

	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		info.Kind = KindValidation
		info.Issues = verr.Issues
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		info.Kind = KindCanceled
	}

	return Response[T]{Status: StatusError, RequestID: requestID, Error: info}
}

func newRequestID() string {
	return uuid.NewString()
}
