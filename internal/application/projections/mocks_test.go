package projections

import (
	"context"
	"fmt"

	domainAttendance "congregation/internal/domain/attendance"
	domainMember "congregation/internal/domain/member"
)

type mockAttendanceStore struct {
	records    []domainAttendance.Record
	err        error
	calls      int
	lastFilter domainAttendance.Filter
	ignoreAll  bool // return every record regardless of filter
}

// List returns seeded records passing the filter.
// PRE: filter is valid
// POST: Returns matching records or the seeded error
func (m *mockAttendanceStore) List(_ context.Context, filter domainAttendance.Filter) ([]domainAttendance.Record, error) {
	m.calls++
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	if m.ignoreAll {
		return append([]domainAttendance.Record(nil), m.records...), nil
	}
	return filter.Apply(m.records), nil
}

type mockMemberStore struct {
	members map[string]domainMember.Member
}

// GetByID returns a seeded member by ID.
// PRE: id is non-empty
// POST: Returns the seeded member or an error matching ErrNotFound
func (m *mockMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	if mem, ok := m.members[id]; ok {
		return mem, nil
	}
	return domainMember.Member{}, fmt.Errorf("member %s: %w", id, domainMember.ErrNotFound)
}

func rec(id, memberID, date, serviceType, status string) domainAttendance.Record {
	return domainAttendance.Record{
		ID:          id,
		MemberID:    memberID,
		Date:        date,
		ServiceType: serviceType,
		Status:      status,
		Member:      domainMember.Snapshot{FirstName: memberID, LastName: memberID, Congregation: "North"},
	}
}
