package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sync"

	memberFilter "congregation/internal/adapters/storage/member"
	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
	"congregation/internal/domain/member"
)

type mockAttendanceStore struct {
	records     map[string]attendance.Record
	saved       []attendance.Record
	getErr      error
	deleteErr   error
	listErr     error
	groupErr    error
	keepOnGroup int // records DeleteGroup silently leaves behind
	nextID      int
}

func newMockAttendanceStore(records ...attendance.Record) *mockAttendanceStore {
	m := &mockAttendanceStore{records: make(map[string]attendance.Record)}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

// GetByID returns a seeded record.
// PRE: id is non-empty
// POST: Returns the record, the seeded error, or an error matching attendance.ErrNotFound
func (m *mockAttendanceStore) GetByID(_ context.Context, id string) (attendance.Record, error) {
	if m.getErr != nil {
		return attendance.Record{}, m.getErr
	}
	r, ok := m.records[id]
	if !ok {
		return attendance.Record{}, fmt.Errorf("attendance %s: %w", id, attendance.ErrNotFound)
	}
	return r, nil
}

// Delete removes a seeded record.
// PRE: id is non-empty
// POST: Returns 1 if the record existed, else 0
func (m *mockAttendanceStore) Delete(_ context.Context, id string) (int, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

// DeleteGroup removes seeded records of one occurrence, minus keepOnGroup.
// PRE: key.Date is a calendar day
// POST: Returns the number removed or the seeded error
func (m *mockAttendanceStore) DeleteGroup(_ context.Context, key attendance.GroupKey) (int, error) {
	if m.groupErr != nil {
		return 0, m.groupErr
	}
	kept, n := 0, 0
	for id, r := range m.records {
		if !attendance.MatchesKey(r, key) {
			continue
		}
		if kept < m.keepOnGroup {
			kept++
			continue
		}
		delete(m.records, id)
		n++
	}
	return n, nil
}

// List returns seeded records passing the filter.
// PRE: filter is valid
// POST: Returns matching records or the seeded error
func (m *mockAttendanceStore) List(_ context.Context, filter attendance.Filter) ([]attendance.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []attendance.Record
	for _, r := range m.records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Save stores the record, reusing the id of the member's record for the same
// occurrence and assigning a new one otherwise.
// PRE: r has been validated
// POST: Returns the stored record
func (m *mockAttendanceStore) Save(_ context.Context, r attendance.Record) (attendance.Record, error) {
	if r.ID == "" {
		for id, existing := range m.records {
			if existing.MemberID == r.MemberID && attendance.MatchesKey(existing, attendance.KeyOf(r)) {
				r.ID = id
				break
			}
		}
	}
	if r.ID == "" {
		m.nextID++
		r.ID = fmt.Sprintf("gen-%d", m.nextID)
	}
	m.records[r.ID] = r
	m.saved = append(m.saved, r)
	return r, nil
}

type mockMemberStore struct {
	members map[string]member.Member
	saved   []member.Member
}

// GetByID returns a seeded member.
// PRE: id is non-empty
// POST: Returns the member or an error matching member.ErrNotFound
func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	if mem, ok := m.members[id]; ok {
		return mem, nil
	}
	return member.Member{}, fmt.Errorf("member %s: %w", id, member.ErrNotFound)
}

// Save records the member.
// PRE: m has been validated
// POST: Member is retrievable by id
func (m *mockMemberStore) Save(_ context.Context, mem member.Member) error {
	if m.members == nil {
		m.members = make(map[string]member.Member)
	}
	m.members[mem.ID] = mem
	m.saved = append(m.saved, mem)
	return nil
}

// Count returns the number of seeded members.
// PRE: filter is valid
// POST: Returns count >= 0
func (m *mockMemberStore) Count(_ context.Context, _ memberFilter.ListFilter) (int, error) {
	return len(m.members), nil
}

type mockAuditStore struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

// Save records the event or returns the seeded error.
// PRE: e is valid
// POST: Event is appended unless err is set
func (m *mockAuditStore) Save(_ context.Context, e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

var errLocked = attendance.Unavailable("delete attendance", errors.New("database is locked"))

func rec(id, memberID, date, serviceType, status string) attendance.Record {
	return attendance.Record{ID: id, MemberID: memberID, Date: date, ServiceType: serviceType, Status: status}
}
