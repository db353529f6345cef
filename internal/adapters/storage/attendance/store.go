package attendance

import (
	"context"

	domain "congregation/internal/domain/attendance"
)

// Store persists attendance records and answers filtered reads.
// Implementations fill Record.Member from the member store at read time.
type Store interface {
	// GetByID returns the record or an error matching domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (domain.Record, error)
	// Save inserts or updates a record and returns it as stored. A record whose
	// (member, date, service type) already exists updates that row in place.
	Save(ctx context.Context, value domain.Record) (domain.Record, error)
	// Delete removes one record and returns the number removed (0 or 1).
	Delete(ctx context.Context, id string) (int, error)
	// List returns every record passing the filter, ordered by date, service type and id.
	List(ctx context.Context, filter domain.Filter) ([]domain.Record, error)
	// DeleteGroup removes every record of one occurrence, all or nothing.
	DeleteGroup(ctx context.Context, key domain.GroupKey) (int, error)
}
