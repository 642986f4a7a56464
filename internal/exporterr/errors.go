// Package exporterr defines the error kinds an export can fail with.
//
// Every failure aborts the export. Callers classify failures with errors.Is:
//
//	if errors.Is(err, exporterr.ErrUnsupported) { ... }
package exporterr

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig reports invalid export arguments or a second concurrent export.
	ErrConfig = errors.New("invalid export configuration")

	// ErrUnsupported reports a primitive, or an argument combination of a
	// primitive, that has no translation.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrInternal reports a broken invariant of the trace or the graph.
	ErrInternal = errors.New("internal consistency error")

	// ErrInvalidModel reports an assembled model that failed validation.
	ErrInvalidModel = errors.New("invalid model")

	// ErrForward reports a failure raised by the model's own forward pass.
	ErrForward = errors.New("forward pass failed")
)

// Unsupported returns an ErrUnsupported naming the primitive.
func Unsupported(op, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrUnsupported, op, fmt.Sprintf(format, args...))
}

// Internal returns an ErrInternal with a formatted message.
func Internal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// Config returns an ErrConfig with a formatted message.
func Config(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
