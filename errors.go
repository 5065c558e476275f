// Package smithygogen generates Go service clients from Smithy models.
//
// The generator core lives in the subpackages: model holds the shape graph,
// symbol maps shapes to Go symbols, writer buffers emitted source, serde and
// protocol emit the (de)serialization code, and generator orchestrates a run.
package smithygogen

import "fmt"

// ErrorCode is a stable short code identifying a class of codegen failure.
type ErrorCode string

// Enumerates the codegen failure classes.
const (
	ErrUnknownShape           ErrorCode = "UnknownShape"
	ErrUnknownTrait           ErrorCode = "UnknownTrait"
	ErrInvalidBinding         ErrorCode = "InvalidBinding"
	ErrUnknownTimestampFormat ErrorCode = "UnknownTimestampFormat"
	ErrUnknownSerialKind      ErrorCode = "UnknownSerialKind"
	ErrDuplicateSymbol        ErrorCode = "DuplicateSymbol"
	ErrUnbalancedEmission     ErrorCode = "UnbalancedEmission"
)

// CodegenError is a fatal generation failure for the shape or operation it
// names. Nested emitters return these unwrapped; the operation boundary fills
// in the operation ID when the error names no shape, and keeps the ID of an
// error that already names a shape or member.
type CodegenError struct {
	Code    ErrorCode
	ShapeID string
	Err     error
}

// Error returns the diagnostic string for the failure.
func (e *CodegenError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.ShapeID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *CodegenError) Unwrap() error { return e.Err }

// Errorf creates a CodegenError for the given code and offending shape ID.
func Errorf(code ErrorCode, shapeID, format string, v ...interface{}) *CodegenError {
	return &CodegenError{
		Code:    code,
		ShapeID: shapeID,
		Err:     fmt.Errorf(format, v...),
	}
}
