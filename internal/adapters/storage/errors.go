package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"congregation/internal/domain/attendance"
)

// transientMarkers are driver messages for conditions a retry can clear.
var transientMarkers = []string{
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"sqlite_locked",
	"database is closed",
}

// Classify wraps a store error with the operation name and tags transient
// failures with attendance.ErrAdapterUnavailable.
// PRE: op names the store method
// POST: returns nil for nil; otherwise an error wrapping err
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return attendance.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsTransient reports whether err is a busy, locked, closed or timed-out store condition.
func IsTransient(err error) bool {
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
