// Package omerrors provides structured error handling for metactx with rich
// context, stack traces, and error categorization.
//
// # Overview
//
// Every public operation of the connector context clients propagates exactly
// three kinds of failure, mirroring the checked exceptions of the open
// metadata client contract:
//   - ErrorTypeInvalidParameter: the caller passed something unusable
//     (unknown GUID, wrong type, duplicate qualified name, bad paging)
//   - ErrorTypePropertyServer: the metadata store failed
//   - ErrorTypeUserNotAuthorized: the caller's identity was refused
//
// The remaining types classify failures inside the storage and transport
// layers and are folded into one of the three before they reach a client.
//
// # Basic Usage
//
//	err := omerrors.InvalidParameter("guid", "unknown element").
//	    WithDetail("guid", guid)
//
//	if err := pool.Ping(ctx); err != nil {
//	    return omerrors.Wrap(err, omerrors.ErrorTypePropertyServer, "database unavailable")
//	}
//
// # Thread Safety
//
// Error instances are not thread-safe for modification. Use WithDetail before
// sharing across goroutines.
package omerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType categorizes a failure. It selects the HTTP status on the server
// and decides whether the remote client retries.
type ErrorType string

// The three types a connector ever sees.
const (
	ErrorTypeInvalidParameter  ErrorType = "invalid_parameter"
	ErrorTypePropertyServer    ErrorType = "property_server"
	ErrorTypeUserNotAuthorized ErrorType = "user_not_authorized"
)

// Storage and transport types, folded before they reach a connector.
const (
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeConnection ErrorType = "connection" // retryable
	ErrorTypeTimeout    ErrorType = "timeout"    // retryable
	ErrorTypeRateLimit  ErrorType = "rate_limit" // retryable
)

// Error is a typed error with optional cause, details and the stack of the
// place it was first created.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is one caller recorded in Error.Stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error renders "type: message" followed by the cause, if any.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail records a detail and returns e for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New returns an error of the given type, recording the caller's stack.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a format string.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap gives err a type and message. A structured cause keeps its stack, so
// the stack always points at the original failure. Wrap(nil, ...) is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := &Error{Type: errType, Message: message, Cause: err}
	var inner *Error
	if errors.As(err, &inner) {
		wrapped.Stack = inner.Stack
	} else {
		wrapped.Stack = captureStack(2)
	}
	return wrapped
}

// InvalidParameter reports an unusable parameter. The parameter name is
// recorded as a detail.
func InvalidParameter(parameterName, message string) *Error {
	e := &Error{
		Type:    ErrorTypeInvalidParameter,
		Message: message,
		Stack:   captureStack(2),
	}
	return e.WithDetail("parameter", parameterName)
}

// PropertyServer wraps a metadata store failure.
func PropertyServer(err error, message string) *Error {
	if err == nil {
		return &Error{Type: ErrorTypePropertyServer, Message: message, Stack: captureStack(2)}
	}
	return Wrap(err, ErrorTypePropertyServer, message)
}

// UserNotAuthorized reports a refused caller.
func UserNotAuthorized(userID, message string) *Error {
	e := &Error{
		Type:    ErrorTypeUserNotAuthorized,
		Message: message,
		Stack:   captureStack(2),
	}
	return e.WithDetail("user_id", userID)
}

// IsRetryable reports whether the outermost structured error is transient.
func IsRetryable(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeRateLimit, ErrorTypeTimeout, ErrorTypeConnection:
		return true
	}
	return false
}

// IsType checks if the outermost structured error in the chain is of the
// given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost structured error, or
// ErrorTypeInternal for plain errors.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// IsInvalidParameter is true for invalid parameter and not found errors.
func IsInvalidParameter(err error) bool {
	return IsType(err, ErrorTypeInvalidParameter) || IsType(err, ErrorTypeNotFound)
}

// IsPropertyServer is true for metadata store failures.
func IsPropertyServer(err error) bool {
	return IsType(err, ErrorTypePropertyServer)
}

// IsUserNotAuthorized is true for refused callers.
func IsUserNotAuthorized(err error) bool {
	return IsType(err, ErrorTypeUserNotAuthorized)
}

// IsNotFound is true when a stored object does not exist.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// captureStack records up to 32 callers. skip counts frames the way
// runtime.Caller does.
func captureStack(skip int) []StackFrame {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return nil
	}

	stack := make([]StackFrame, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		stack = append(stack, StackFrame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return stack
}
