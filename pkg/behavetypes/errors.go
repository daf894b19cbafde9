package behavetypes

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedLine is reported when no pattern matches a line.
	ErrUnrecognizedLine = errors.New("unrecognized line")
	// ErrAssertion is returned when an expectation does not hold.
	ErrAssertion = errors.New("assertion failed")
	// ErrResource is returned when a session, selector, file, variable or test is missing.
	ErrResource = errors.New("resource error")
	// ErrTimeout is returned when a bounded wait exceeds its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrConfiguration marks defects such as malformed extension modules.
	// These propagate out of the run instead of failing a single block.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownTest is returned when a single-test run names an unknown test.
	ErrUnknownTest = errors.New("unknown test")
)

// HaltError wraps a block failure that has already been reported.
// Enclosing blocks stop on it without reporting again.
type HaltError struct {
	Line string
	Err  error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halted at %q: %v", e.Line, e.Err)
}

func (e *HaltError) Unwrap() error {
	return e.Err
}

// IsHalt reports whether err carries an already-reported block failure.
func IsHalt(err error) bool {
	var h *HaltError
	return errors.As(err, &h)
}

// IsFatal reports whether err must propagate out of the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
