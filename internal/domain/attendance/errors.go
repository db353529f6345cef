package attendance

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the analytics core, its stores and its callers.
var (
	// ErrNotFound marks a delete whose target no longer exists.
	ErrNotFound = errors.New("attendance not found")
	// ErrPartialFailure marks a group delete that removed some but not all rows.
	ErrPartialFailure = errors.New("attendance group partially deleted")
	// ErrInvalidFilter marks a malformed date range or calendar month.
	ErrInvalidFilter = errors.New("invalid attendance filter")
	// ErrInvalidRecord marks a record that fails validation on write.
	ErrInvalidRecord = errors.New("invalid attendance record")
	// ErrAdapterUnavailable marks a transient store failure the caller may retry.
	ErrAdapterUnavailable = errors.New("attendance store unavailable")
)

// PartialFailureError reports how far a group delete got before it stopped.
type PartialFailureError struct {
	Date        string
	ServiceType string
	Expected    int
	Deleted     int
}

// Error implements error.
func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("attendance group %s/%s: deleted %d of %d records", e.Date, e.ServiceType, e.Deleted, e.Expected)
}

// Is lets errors.Is match ErrPartialFailure.
func (e *PartialFailureError) Is(target error) bool {
	return target == ErrPartialFailure
}

// Remaining returns how many matching records survived the delete.
func (e *PartialFailureError) Remaining() int {
	return e.Expected - e.Deleted
}

// FilterError names the filter field that was rejected.
type FilterError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid attendance filter: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidFilter.
func (e *FilterError) Is(target error) bool {
	return target == ErrInvalidFilter
}

func invalidFilter(field, reason string) error {
	return &FilterError{Field: field, Reason: reason}
}

// Unavailable wraps a store error so callers can match ErrAdapterUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrAdapterUnavailable, err)
}
