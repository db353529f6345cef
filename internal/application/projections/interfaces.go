package projections

import (
	"context"

	domainAttendance "congregation/internal/domain/attendance"
	domainMember "congregation/internal/domain/member"
)

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	List(ctx context.Context, filter domainAttendance.Filter) ([]domainAttendance.Record, error)
}

// MemberStore interface for member lookups.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
}
