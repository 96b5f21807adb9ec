package client

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"
)

// LoginError represents failures during the LOGIN exchange (§4.6).
type LoginError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"cause,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
}

func (e *LoginError) Error() string { return e.FormatError(false) }

// FormatError formats the error based on debug mode setting.
func (e *LoginError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return formatDebugJSON(map[string]interface{}{
		"code":    e.Code,
		"type":    "LOGIN_ERROR",
		"message": e.Message,
	}, e.Details, e.Cause, e.StackTrace, e.Timestamp)
}

func (e *LoginError) Unwrap() error { return e.Cause }

// TransportError wraps a transport-level failure (connection reset, write
// timeout) with the operation that triggered it.
type TransportError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Operation  string                 `json:"operation,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"cause,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
}

func (e *TransportError) Error() string { return e.FormatError(false) }

func (e *TransportError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (op: %s, caused by: %s)", e.Code, e.Message, e.Operation, e.Cause.Error())
		}
		return fmt.Sprintf("%s: %s (op: %s)", e.Code, e.Message, e.Operation)
	}
	details := e.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	details["operation"] = e.Operation
	return formatDebugJSON(map[string]interface{}{
		"code":    e.Code,
		"type":    "TRANSPORT_ERROR",
		"message": e.Message,
	}, details, e.Cause, e.StackTrace, e.Timestamp)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ErrTransportCreate creates a TransportError for a failed socket allocation
// (§7 TransportCreationError).
func ErrTransportCreate(cause error) *TransportError {
	return &TransportError{
		Code:       "E_TRANSPORT_CREATE",
		Message:    "failed to create transport",
		Operation:  "create",
		Cause:      cause,
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrTransportConnect creates a TransportError for a failed TCP connect
// (§7 TransportConnectError).
func ErrTransportConnect(address string, cause error) *TransportError {
	return &TransportError{
		Code:      "E_TRANSPORT_CONNECT",
		Message:   "failed to connect to server",
		Operation: "connect",
		Details: map[string]interface{}{
			"address": address,
		},
		Cause:      cause,
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrTransportIO creates a TransportError for a failed send/receive
// operation on an already-established connection.
func ErrTransportIO(operation string, cause error) *TransportError {
	return &TransportError{
		Code:       "E_TRANSPORT_IO",
		Message:    "transport operation failed",
		Operation:  operation,
		Cause:      cause,
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// StateError represents an operation attempted in the wrong connection state.
type StateError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
}

func (e *StateError) Error() string { return e.FormatError(false) }

func (e *StateError) FormatError(debugMode bool) string {
	if !debugMode {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return formatDebugJSON(map[string]interface{}{
		"code":    e.Code,
		"type":    "STATE_ERROR",
		"message": e.Message,
	}, e.Details, nil, e.StackTrace, time.Time{})
}

// ErrInvalidState creates a StateError for operations attempted in the wrong state.
func ErrInvalidState(operation string, required, actual ConnectionState) error {
	return &StateError{
		Code:    "INVALID_STATE",
		Message: fmt.Sprintf("%s requires %s state, currently %s", operation, required, actual),
		Details: map[string]interface{}{
			"operation":     operation,
			"requiredState": required.String(),
			"currentState":  actual.String(),
		},
		StackTrace: captureStackTrace(),
	}
}

// StatementError represents a statement execution or parameter-binding failure.
type StatementError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Statement  string                 `json:"statement,omitempty"`
	Params     []interface{}          `json:"params,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"cause,omitempty"`
	StackTrace []string               `json:"stack_trace,omitempty"`
	Timestamp  time.Time              `json:"timestamp,omitempty"`
}

func (e *StatementError) Error() string { return e.FormatError(false) }

func (e *StatementError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (caused by: %s)", e.Code, e.Message, e.Cause.Error())
		}
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	details := e.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	if e.Statement != "" {
		details["statement"] = e.Statement
	}
	if len(e.Params) > 0 {
		details["params"] = e.Params
	}
	return formatDebugJSON(map[string]interface{}{
		"code":    e.Code,
		"type":    "STATEMENT_ERROR",
		"message": e.Message,
	}, details, e.Cause, e.StackTrace, e.Timestamp)
}

func (e *StatementError) Unwrap() error { return e.Cause }

// ErrArgumentCountMismatch creates a StatementError for a bound-parameter
// count that does not match the statement's placeholder count (§4.4).
func ErrArgumentCountMismatch(statement string, expected, actual int) *StatementError {
	return &StatementError{
		Code:      "E_PARAM_COUNT_MISMATCH",
		Message:   fmt.Sprintf("parameter count mismatch: expected %d, got %d", expected, actual),
		Statement: statement,
		Details: map[string]interface{}{
			"expected": expected,
			"actual":   actual,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrServerRejected creates a StatementError from a server ERROR response
// header (§4.3).
func ErrServerRejected(statement, errCode, description string) *StatementError {
	return &StatementError{
		Code:      "E_SERVER_ERROR",
		Message:   description,
		Statement: statement,
		Details: map[string]interface{}{
			"serverErrorCode": errCode,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// TransactionError represents a transaction lifecycle violation.
type TransactionError struct {
	Code          string                 `json:"code"`
	Message       string                 `json:"message"`
	TransactionID string                 `json:"transaction_id,omitempty"`
	State         string                 `json:"state,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	Cause         error                  `json:"cause,omitempty"`
	StackTrace    []string               `json:"stack_trace,omitempty"`
	Timestamp     time.Time              `json:"timestamp,omitempty"`
}

func (e *TransactionError) Error() string { return e.FormatError(false) }

func (e *TransactionError) FormatError(debugMode bool) string {
	if !debugMode {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (TX: %s, caused by: %s)", e.Code, e.Message, e.TransactionID, e.Cause.Error())
		}
		return fmt.Sprintf("%s: %s (TX: %s)", e.Code, e.Message, e.TransactionID)
	}
	details := e.Details
	if details == nil {
		details = map[string]interface{}{}
	}
	details["transactionId"] = e.TransactionID
	details["state"] = e.State
	return formatDebugJSON(map[string]interface{}{
		"code":    e.Code,
		"type":    "TRANSACTION_ERROR",
		"message": e.Message,
	}, details, e.Cause, e.StackTrace, e.Timestamp)
}

func (e *TransactionError) Unwrap() error { return e.Cause }

// ErrTransactionAlreadyActive creates an error for a nested Begin.
func ErrTransactionAlreadyActive() *TransactionError {
	return &TransactionError{
		Code:       "E_TX_ALREADY_ACTIVE",
		Message:    "transaction already in progress",
		State:      "active",
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// ErrNoActiveTransaction creates an error for Commit/Rollback without a Begin.
func ErrNoActiveTransaction(operation string) *TransactionError {
	return &TransactionError{
		Code:    "E_NO_ACTIVE_TX",
		Message: fmt.Sprintf("no active transaction to %s", operation),
		Details: map[string]interface{}{
			"operation": operation,
		},
		StackTrace: captureStackTrace(),
		Timestamp:  time.Now(),
	}
}

// captureStackTrace captures the current stack trace for error reporting.
func captureStackTrace() []string {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(3, pcs)

	frames := make([]string, 0, n)
	callersFrames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := callersFrames.Next()
		frames = append(frames, fmt.Sprintf("%s (%s:%d)", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}

	return frames
}

// formatDebugJSON renders the full debug representation shared by every
// error type in this package.
func formatDebugJSON(base map[string]interface{}, details map[string]interface{}, cause error, stackTrace []string, timestamp time.Time) string {
	if len(details) > 0 {
		base["details"] = details
	}
	if cause != nil {
		base["cause"] = map[string]interface{}{"message": cause.Error()}
	}
	if len(stackTrace) > 0 {
		base["stack_trace"] = stackTrace
	}
	if !timestamp.IsZero() {
		base["timestamp"] = timestamp.Format(time.RFC3339Nano)
	}
	b, _ := json.MarshalIndent(base, "", "  ")
	return string(b)
}

// FormatError formats any error implementing the debug-mode format
// interface used throughout this package, falling back to err.Error().
func FormatError(err error, debugMode bool) string {
	if err == nil {
		return ""
	}
	type debugFormatter interface {
		FormatError(bool) string
	}
	if formatter, ok := err.(debugFormatter); ok {
		return formatter.FormatError(debugMode)
	}
	return err.Error()
}
