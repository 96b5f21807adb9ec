package protocol

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies a protocol-layer failure for programmatic handling.
type ErrorCode int

const (
	// Decode errors (1000-1099)
	ErrorCodeTypeNotSupported ErrorCode = 1001
	ErrorCodeDecode           ErrorCode = 1002
	ErrorCodeShortRead        ErrorCode = 1003

	// Header/framing errors (1100-1199)
	ErrorCodeHeaderParse ErrorCode = 1101

	// Binding errors (1200-1299)
	ErrorCodeArgumentCount ErrorCode = 1201
)

// ProtoError is a structured error carrying a stable code and optional
// details, mirroring the wire error payloads the server itself sends back.
type ProtoError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ProtoError) Error() string {
	if len(e.Details) > 0 {
		detailsJSON, _ := json.Marshal(e.Details)
		return fmt.Sprintf("[%d] %s (details: %s)", e.Code, e.Message, string(detailsJSON))
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func newProtoError(code ErrorCode, message string, details map[string]interface{}) *ProtoError {
	return &ProtoError{Code: code, Message: message, Details: details}
}

// TypeNotSupportedError is returned when a column's type tag is not in the
// decoder catalogue (§4.2).
func TypeNotSupportedError(tag TypeTag) *ProtoError {
	return newProtoError(ErrorCodeTypeNotSupported, "column type not supported", map[string]interface{}{
		"type": string(tag),
	})
}

// DecodeErr is returned for malformed binary payloads, including the
// per-value error marker described in §4.5 and §8 scenario S6.
func DecodeErr(message string, details map[string]interface{}) *ProtoError {
	return newProtoError(ErrorCodeDecode, message, details)
}

// ShortReadError is returned by ByteReader when the transport closes before
// delivering the requested number of bytes.
func ShortReadError(want, got int) *ProtoError {
	return newProtoError(ErrorCodeShortRead, "short read from transport", map[string]interface{}{
		"wanted": want,
		"got":    got,
	})
}

// HeaderParseError is returned when a response header block cannot be parsed.
func HeaderParseError(line string, cause error) *ProtoError {
	details := map[string]interface{}{"line": line}
	if cause != nil {
		details["cause"] = cause.Error()
	}
	return newProtoError(ErrorCodeHeaderParse, "malformed response header", details)
}

// ArgumentCountMismatchError is returned by BindParameters when the argument
// count does not match the number of '?' placeholders (§4.4, invariant 4).
func ArgumentCountMismatchError(want, got int) *ProtoError {
	return newProtoError(ErrorCodeArgumentCount, "argument count mismatch", map[string]interface{}{
		"placeholders": want,
		"arguments":    got,
	})
}
