package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
)

// RecordAttendanceInput carries one member's attendance at one occurrence.
type RecordAttendanceInput struct {
	MemberID    string
	Date        string
	ServiceType string
	Status      string
	Notes       string
	Meta        RequestMeta
}

// RecordAttendanceDeps holds dependencies for ExecuteRecordAttendance.
type RecordAttendanceDeps struct {
	AttendanceStore AttendanceStoreForRecord
	MemberStore     MemberLookup
	AuditStore      AuditRecorder // optional
}

// ExecuteRecordAttendance validates and stores a record. Recording the same
// (member, date, service type) again updates the existing record and is
// audited as an update.
// PRE: member exists
// POST: Exactly one record exists for the occurrence; the stored record is returned
func ExecuteRecordAttendance(ctx context.Context, input RecordAttendanceInput, deps RecordAttendanceDeps) (attendance.Record, error) {
	r := attendance.Record{
		MemberID:    strings.TrimSpace(input.MemberID),
		Date:        attendance.DayOf(input.Date),
		ServiceType: strings.TrimSpace(input.ServiceType),
		Status:      strings.ToLower(strings.TrimSpace(input.Status)),
		Notes:       strings.TrimSpace(input.Notes),
	}
	if err := r.Validate(); err != nil {
		return attendance.Record{}, err
	}
	m, err := deps.MemberStore.GetByID(ctx, r.MemberID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("load member: %w", err)
	}

	prev, existed, err := existingRecord(ctx, deps.AttendanceStore, r)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("load attendance: %w", err)
	}

	saved, err := deps.AttendanceStore.Save(ctx, r)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("save attendance: %w", err)
	}
	saved.Member = m.Snapshot()

	action, description := audit.ActionCreate, fmt.Sprintf("%s marked %s", m.FullName(), saved.Status)
	if existed {
		action = audit.ActionUpdate
		description = fmt.Sprintf("%s changed from %s to %s", m.FullName(), prev.Status, saved.Status)
	}
	slog.Info("attendance_event", "event", "attendance_recorded", "record_id", saved.ID,
		"member_id", saved.MemberID, "group", attendance.KeyOf(saved).String(), "status", saved.Status, "updated", existed)
	recordAudit(ctx, deps.AuditStore, input.Meta,
		audit.NewEvent("", audit.CategoryAttendance, action).
			WithResource(audit.ResourceAttendanceRecord, saved.ID).
			WithDescription(description))
	return saved, nil
}

// existingRecord finds the member's record for r's occurrence, if any.
func existingRecord(ctx context.Context, store AttendanceReader, r attendance.Record) (attendance.Record, bool, error) {
	records, err := store.List(ctx, attendance.Filter{MemberID: r.MemberID, DateFrom: r.Date, DateTo: r.Date})
	if err != nil {
		return attendance.Record{}, false, err
	}
	key := attendance.KeyOf(r)
	for _, existing := range records {
		if attendance.MatchesKey(existing, key) {
			return existing, true, nil
		}
	}
	return attendance.Record{}, false, nil
}
