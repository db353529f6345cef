package attendance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	domain "congregation/internal/domain/attendance"
	"congregation/internal/domain/member"
)

// MemoryStore is an in-memory Store for tests and local development.
// Member snapshots are resolved from a registered member table at read time.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.Record
	members map[string]member.Snapshot
}

// Compile-time checks that both implementations satisfy Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]domain.Record),
		members: make(map[string]member.Snapshot),
	}
}

// PutMember registers the snapshot returned for memberID on reads.
func (m *MemoryStore) PutMember(memberID string, snap member.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[memberID] = snap
}

// GetByID returns a copy of the record.
func (m *MemoryStore) GetByID(_ context.Context, id string) (domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return domain.Record{}, fmt.Errorf("attendance %s: %w", id, domain.ErrNotFound)
	}
	return m.withMemberLocked(r), nil
}

// Save upserts by id, then by occurrence, matching the SQLite store.
func (m *MemoryStore) Save(_ context.Context, value domain.Record) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value.Date = domain.DayOf(value.Date)
	value.ServiceType = strings.TrimSpace(value.ServiceType)
	value.Member = member.Snapshot{}

	if _, ok := m.records[value.ID]; ok && value.ID != "" {
		m.records[value.ID] = value
		return m.withMemberLocked(value), nil
	}
	for id, existing := range m.records {
		if existing.MemberID == value.MemberID && domain.KeyOf(existing) == domain.KeyOf(value) {
			existing.Status = value.Status
			existing.Notes = value.Notes
			m.records[id] = existing
			return m.withMemberLocked(existing), nil
		}
	}
	if value.ID == "" {
		value.ID = uuid.NewString()
	}
	m.records[value.ID] = value
	return m.withMemberLocked(value), nil
}

// Delete removes one record; a missing id returns 0.
func (m *MemoryStore) Delete(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return 0, nil
	}
	delete(m.records, id)
	return 1, nil
}

// List returns filtered copies ordered by date, service type and id.
func (m *MemoryStore) List(_ context.Context, filter domain.Filter) ([]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter = filter.Normalized()
	results := make([]domain.Record, 0)
	for _, r := range m.records {
		r = m.withMemberLocked(r)
		if filter.Matches(r) {
			results = append(results, r)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ServiceType != b.ServiceType {
			return a.ServiceType < b.ServiceType
		}
		return a.ID < b.ID
	})
	return results, nil
}

// DeleteGroup removes every record of the occurrence under one lock.
func (m *MemoryStore) DeleteGroup(_ context.Context, key domain.GroupKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, r := range m.records {
		if domain.MatchesKey(r, key) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryStore) withMemberLocked(r domain.Record) domain.Record {
	r.Member = m.members[r.MemberID]
	return r
}
