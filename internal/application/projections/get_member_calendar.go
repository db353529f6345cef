package projections

import (
	"context"
	"fmt"
	"strings"

	"congregation/internal/domain/attendance"
)

// MemberCalendarQuery selects one member's month grid.
type MemberCalendarQuery struct {
	MemberID string
	Year     int
	Month    int // 1-12
}

// MemberCalendarResult carries the week rows of a month grid.
type MemberCalendarResult struct {
	MemberID string
	Year     int
	Month    int
	Weeks    [][]attendance.Cell
}

// MemberDayQuery selects one member's records on one calendar day.
type MemberDayQuery struct {
	MemberID string
	Date     string // YYYY-MM-DD
}

// MemberDayResult carries the records of one day, ordered by service type.
type MemberDayResult struct {
	MemberID string
	Date     string
	Records  []attendance.Record
}

// QueryMemberCalendar projects a member's records onto a Sunday-first month grid.
// Leading and trailing days of adjacent months carry their own status but are
// flagged out of month.
// PRE: query.MemberID is non-empty
// POST: Every row has 7 cells; an invalid year or month never reaches the store
func QueryMemberCalendar(ctx context.Context, query MemberCalendarQuery, deps MemberAttendanceDeps) (MemberCalendarResult, error) {
	start, end, err := attendance.GridBounds(query.Year, query.Month)
	if err != nil {
		return MemberCalendarResult{}, err
	}
	records, err := loadMemberRecords(ctx, MemberAttendanceQuery{
		MemberID: query.MemberID,
		Filter: attendance.Filter{
			DateFrom: attendance.FormatDay(start),
			DateTo:   attendance.FormatDay(end),
		},
	}, deps)
	if err != nil {
		return MemberCalendarResult{}, err
	}

	weeks, err := attendance.ProjectMonth(query.Year, query.Month, records)
	if err != nil {
		return MemberCalendarResult{}, err
	}
	return MemberCalendarResult{
		MemberID: strings.TrimSpace(query.MemberID),
		Year:     query.Year,
		Month:    query.Month,
		Weeks:    weeks,
	}, nil
}

// QueryMemberDayDetail returns every record of a member on one day.
// PRE: query.MemberID is non-empty
// POST: Returns a non-nil list; an empty list means nothing happened that day
func QueryMemberDayDetail(ctx context.Context, query MemberDayQuery, deps MemberAttendanceDeps) (MemberDayResult, error) {
	day := attendance.DayOf(query.Date)
	if _, err := attendance.ParseDay(day); err != nil {
		return MemberDayResult{}, &attendance.FilterError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	records, err := loadMemberRecords(ctx, MemberAttendanceQuery{
		MemberID: query.MemberID,
		Filter:   attendance.Filter{DateFrom: day, DateTo: day},
	}, deps)
	if err != nil {
		return MemberDayResult{}, fmt.Errorf("day detail %s: %w", day, err)
	}
	return MemberDayResult{
		MemberID: strings.TrimSpace(query.MemberID),
		Date:     day,
		Records:  attendance.DayDetail(records, day),
	}, nil
}
