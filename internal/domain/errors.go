package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry operations
var (
	// ErrUnauthorized is returned when the caller lacks the role or admin right an operation needs
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when a name has no registered component
	ErrNotFound = errors.New("not found")

	// ErrWrongKind is returned when an operation needs a proxied record but got a direct one
	ErrWrongKind = errors.New("wrong component kind")

	// ErrZeroAddress is returned when an address argument is the zero address
	ErrZeroAddress = errors.New("zero address")

	// ErrInitCallFailed is returned when the post-upgrade initialization call reverts
	ErrInitCallFailed = errors.New("init call failed")

	// ErrNotContract is returned when no code is deployed at an address that must hold logic
	ErrNotContract = errors.New("not a contract")

	// ErrNotInjectable is returned when a component does not expose the dependency entry point
	ErrNotInjectable = errors.New("not injectable")

	// ErrReentrantCall is returned when a callback tries to mutate state mid-call
	ErrReentrantCall = errors.New("reentrant call")

	// ErrInvalidName is returned when a component name is malformed
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidArgument is returned when a call input has the wrong type or value
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownMethod is returned when a contract does not recognize a method
	ErrUnknownMethod = errors.New("unknown method")
)

// RevertError aborts a registry call. Reason is the human readable message
// surfaced to the caller; Err is the sentinel used for matching.
type RevertError struct {
	Op     string
	Reason string
	Err    error
}

func (e *RevertError) Error() string {
	if e.Op == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// Revert builds a RevertError for op with a formatted reason.
func Revert(op string, kind error, format string, args ...any) error {
	return &RevertError{
		Op:     op,
		Reason: fmt.Sprintf(format, args...),
		Err:    kind,
	}
}

// ReasonOf extracts the revert reason from err, falling back to err.Error().
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	var rev *RevertError
	if errors.As(err, &rev) {
		return rev.Reason
	}
	return err.Error()
}
