package projections

import (
	"context"
	"fmt"
	"strings"

	"congregation/internal/domain/attendance"
)

// MemberAttendanceQuery selects one member's records over a filter window.
// Filter.MemberID is overwritten with MemberID; Filter.Search is ignored.
type MemberAttendanceQuery struct {
	MemberID string
	Filter   attendance.Filter
}

// MemberAttendanceDeps holds dependencies for member analytics queries.
// MemberStore is optional; when set, an unknown member is reported as such
// instead of an empty result.
type MemberAttendanceDeps struct {
	AttendanceStore AttendanceStore
	MemberStore     MemberStore
}

// MemberSummaryResult carries a member's attendance tally.
type MemberSummaryResult struct {
	MemberID string
	Summary  attendance.Summary
}

// MemberStreaksResult carries a member's attendance streaks.
type MemberStreaksResult struct {
	MemberID    string
	Streaks     attendance.StreakState
	Occurrences int // distinct occurrences the streaks were computed over
}

// QueryMemberAttendanceSummary computes total, present, absent and rate.
// PRE: query.MemberID is non-empty
// POST: Returns a Summary satisfying its invariants, or an error
func QueryMemberAttendanceSummary(ctx context.Context, query MemberAttendanceQuery, deps MemberAttendanceDeps) (MemberSummaryResult, error) {
	records, err := loadMemberRecords(ctx, query, deps)
	if err != nil {
		return MemberSummaryResult{}, err
	}
	return MemberSummaryResult{
		MemberID: query.MemberID,
		Summary:  attendance.Summarize(records),
	}, nil
}

// QueryMemberStreaks computes current and best consecutive-attendance runs.
// PRE: query.MemberID is non-empty
// POST: Returns streaks independent of store ordering, or an error
func QueryMemberStreaks(ctx context.Context, query MemberAttendanceQuery, deps MemberAttendanceDeps) (MemberStreaksResult, error) {
	records, err := loadMemberRecords(ctx, query, deps)
	if err != nil {
		return MemberStreaksResult{}, err
	}
	return MemberStreaksResult{
		MemberID:    query.MemberID,
		Streaks:     attendance.Streaks(records),
		Occurrences: len(attendance.Occurrences(records)),
	}, nil
}

func loadMemberRecords(ctx context.Context, query MemberAttendanceQuery, deps MemberAttendanceDeps) ([]attendance.Record, error) {
	memberID := strings.TrimSpace(query.MemberID)
	if memberID == "" {
		return nil, &attendance.FilterError{Field: "member_id", Reason: "is required"}
	}
	filter := query.Filter
	filter.MemberID = memberID
	filter.Search = ""
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := ensureMember(ctx, memberID, deps.MemberStore); err != nil {
		return nil, err
	}

	filter = filter.Normalized()
	records, err := deps.AttendanceStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list member attendance: %w", err)
	}
	return filter.Apply(records), nil
}

func ensureMember(ctx context.Context, memberID string, store MemberStore) error {
	if store == nil {
		return nil
	}
	if _, err := store.GetByID(ctx, memberID); err != nil {
		return fmt.Errorf("load member: %w", err)
	}
	return nil
}
