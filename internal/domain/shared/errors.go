package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by the console
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeValidation   = "INVALID_STATE_TRANSITION"
	CodeRemote       = "REMOTE_ERROR"
	CodeParse        = "PARSE_ERROR"
	CodeChannel      = "CHANNEL_ERROR"
)

// Common domain errors
var (
	ErrNotFound     = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation   = NewDomainError(CodeValidation, "Operation not allowed in current state")
	ErrRemote       = NewDomainError(CodeRemote, "Remote service request failed")
	ErrParse        = NewDomainError(CodeParse, "Stored data could not be parsed")
	ErrChannel      = NewDomainError(CodeChannel, "Event channel disconnected")
)

// RemoteError describes a failed call to the remote retail API.
// StatusCode is zero when the request never got a response.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes the underlying transport error
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is reports ErrRemote so callers can match the error kind
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// NewRemoteError creates a RemoteError
func NewRemoteError(op string, statusCode int, message string, err error) *RemoteError {
	return &RemoteError{Op: op, StatusCode: statusCode, Message: message, Err: err}
}

// ParseError reports stored data that could not be decoded.
type ParseError struct {
	Key string
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse stored value %q: %v", e.Key, e.Err)
}

// Unwrap returns the decoding error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ChannelError reports a lost event channel connection.
type ChannelError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *ChannelError) Error() string {
	return fmt.Sprintf("event channel %s: %v", e.URL, e.Err)
}

// Unwrap returns the transport error
func (e *ChannelError) Unwrap() error {
	return e.Err
}

// Is reports ErrChannel
func (e *ChannelError) Is(target error) bool {
	return target == ErrChannel
}

// NewNotFoundError creates a not-found error for the given resource
func NewNotFoundError(resource, id string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id))
}
