package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
)

// DeleteAttendanceRecordInput carries input for the single-record delete.
type DeleteAttendanceRecordInput struct {
	RecordID string
	Meta     RequestMeta
}

// DeleteAttendanceRecordDeps holds dependencies for ExecuteDeleteAttendanceRecord.
type DeleteAttendanceRecordDeps struct {
	AttendanceStore AttendanceStoreForDelete
	AuditStore      AuditRecorder // optional
}

// ExecuteDeleteAttendanceRecord deletes one record. Deleting an id that no
// longer exists is not an error and returns 0.
// PRE: RecordID is non-empty
// POST: Returns 1 when a record was removed, 0 when none existed
func ExecuteDeleteAttendanceRecord(ctx context.Context, input DeleteAttendanceRecordInput, deps DeleteAttendanceRecordDeps) (int, error) {
	id := strings.TrimSpace(input.RecordID)
	if id == "" {
		return 0, &attendance.FilterError{Field: "id", Reason: "is required"}
	}

	prev, err := deps.AttendanceStore.GetByID(ctx, id)
	found := err == nil
	if err != nil && !errors.Is(err, attendance.ErrNotFound) {
		return 0, fmt.Errorf("load attendance record: %w", err)
	}

	n, err := deps.AttendanceStore.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete attendance record: %w", err)
	}
	if n == 0 {
		slog.Info("attendance_event", "event", "record_delete_noop", "record_id", id)
		return 0, nil
	}

	slog.Info("attendance_event", "event", "record_deleted", "record_id", id)
	description := "attendance record deleted"
	if found {
		description = fmt.Sprintf("deleted %s record of member %s for %s", prev.Status, prev.MemberID, attendance.KeyOf(prev))
	}
	recordAudit(ctx, deps.AuditStore, input.Meta,
		audit.NewEvent("", audit.CategoryAttendance, audit.ActionDelete).
			WithResource(audit.ResourceAttendanceRecord, id).
			WithDescription(description))
	return n, nil
}

// DeleteAttendanceGroupInput carries input for the occurrence delete.
type DeleteAttendanceGroupInput struct {
	Date        string // YYYY-MM-DD
	ServiceType string // may be empty
	Meta        RequestMeta
}

// DeleteAttendanceGroupResult reports the outcome of an occurrence delete.
type DeleteAttendanceGroupResult struct {
	Deleted  int
	NotFound bool // nothing matched the key; informational
}

// DeleteAttendanceGroupDeps holds dependencies for ExecuteDeleteAttendanceGroup.
type DeleteAttendanceGroupDeps struct {
	AttendanceStore AttendanceStoreForDelete
	AuditStore      AuditRecorder // optional
}

// ExecuteDeleteAttendanceGroup deletes every member's record for one
// (date, service type) occurrence. After the store reports success the
// occurrence is re-read; survivors turn the result into a partial failure.
// PRE: Date is a calendar day
// POST: All matching records are gone, or an error matching
// attendance.ErrPartialFailure reports how many were removed
func ExecuteDeleteAttendanceGroup(ctx context.Context, input DeleteAttendanceGroupInput, deps DeleteAttendanceGroupDeps) (DeleteAttendanceGroupResult, error) {
	key := attendance.GroupKey{
		Date:        attendance.DayOf(input.Date),
		ServiceType: strings.TrimSpace(input.ServiceType),
	}
	if _, err := attendance.ParseDay(key.Date); err != nil {
		return DeleteAttendanceGroupResult{}, &attendance.FilterError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	deleted, err := deps.AttendanceStore.DeleteGroup(ctx, key)
	var partial *attendance.PartialFailureError
	switch {
	case errors.As(err, &partial):
		return DeleteAttendanceGroupResult{Deleted: partial.Deleted}, groupPartialFailure(ctx, deps.AuditStore, input.Meta, partial)
	case err != nil:
		return DeleteAttendanceGroupResult{}, fmt.Errorf("delete attendance group %s: %w", key, err)
	}

	remaining, verifyErr := remainingInGroup(ctx, deps.AttendanceStore, key)
	if verifyErr != nil {
		slog.Warn("attendance_event", "event", "group_delete_unverified", "group", key.String(), "error", verifyErr)
	} else if remaining > 0 {
		partial = &attendance.PartialFailureError{
			Date:        key.Date,
			ServiceType: key.ServiceType,
			Expected:    deleted + remaining,
			Deleted:     deleted,
		}
		return DeleteAttendanceGroupResult{Deleted: deleted}, groupPartialFailure(ctx, deps.AuditStore, input.Meta, partial)
	}

	if deleted == 0 {
		slog.Info("attendance_event", "event", "group_delete_noop", "group", key.String())
		return DeleteAttendanceGroupResult{NotFound: true}, nil
	}

	slog.Info("attendance_event", "event", "group_deleted", "group", key.String(), "deleted", deleted)
	recordAudit(ctx, deps.AuditStore, input.Meta,
		audit.NewEvent("", audit.CategoryAttendance, audit.ActionDelete).
			WithSeverity(audit.SeverityWarning).
			WithResource(audit.ResourceAttendanceGroup, key.String()).
			WithDescription(fmt.Sprintf("deleted %d attendance records", deleted)).
			WithMetadata(groupMetadata(key, deleted, deleted)))
	return DeleteAttendanceGroupResult{Deleted: deleted}, nil
}

func remainingInGroup(ctx context.Context, store AttendanceReader, key attendance.GroupKey) (int, error) {
	records, err := store.List(ctx, attendance.Filter{DateFrom: key.Date, DateTo: key.Date})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range records {
		if attendance.MatchesKey(r, key) {
			n++
		}
	}
	return n, nil
}

func groupPartialFailure(ctx context.Context, rec AuditRecorder, meta RequestMeta, partial *attendance.PartialFailureError) error {
	key := attendance.GroupKey{Date: partial.Date, ServiceType: partial.ServiceType}
	slog.Error("attendance_event", "event", "group_delete_partial", "group", key.String(),
		"expected", partial.Expected, "deleted", partial.Deleted)
	recordAudit(ctx, rec, meta,
		audit.NewEvent("", audit.CategoryAttendance, audit.ActionDelete).
			WithSeverity(audit.SeverityCritical).
			WithResource(audit.ResourceAttendanceGroup, key.String()).
			WithDescription(partial.Error()).
			WithMetadata(groupMetadata(key, partial.Expected, partial.Deleted)))
	return partial
}

func groupMetadata(key attendance.GroupKey, expected, deleted int) string {
	b, err := json.Marshal(map[string]any{
		"date":         key.Date,
		"service_type": key.ServiceType,
		"expected":     expected,
		"deleted":      deleted,
	})
	if err != nil {
		return ""
	}
	return string(b)
}
