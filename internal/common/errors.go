// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Feed errors.
	ErrPlaidConnection = errors.New("plaid connection failed")
	ErrPlaidRateLimit  = errors.New("plaid rate limit exceeded")

	// Engine errors.
	ErrValidation              = errors.New("validation failed")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationIssue describes one offending input record.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// ValidationError rejects a whole batch and lists every offending record.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Index < 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
			continue
		}
		parts = append(parts, fmt.Sprintf("index %d: %s %s", issue.Index, issue.Field, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add records an issue for the record at index. Use a negative index for
// request-level fields.
func (e *ValidationError) Add(index int, field, message string) {
	e.Issues = append(e.Issues, ValidationIssue{Index: index, Field: field, Message: message})
}

// OrNil returns the error only when at least one issue was recorded.
func (e *ValidationError) OrNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Indices returns the offending record indices in the order they were recorded.
func (e *ValidationError) Indices() []int {
	seen := make(map[int]bool, len(e.Issues))
	var indices []int
	for _, issue := range e.Issues {
		if issue.Index < 0 || seen[issue.Index] {
			continue
		}
		seen[issue.Index] = true
		indices = append(indices, issue.Index)
	}
	return indices
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
