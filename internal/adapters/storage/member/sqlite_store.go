package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"congregation/internal/adapters/storage"
	domain "congregation/internal/domain/member"
)

const memberColumns = "id, first_name, last_name, congregation, email, status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Compile-time check that SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new member Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error matching domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	entity, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Member{}, storage.Classify("get member", err)
	}
	return entity, nil
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET first_name=excluded.first_name, last_name=excluded.last_name,
		congregation=excluded.congregation, email=excluded.email, status=excluded.status`,
		entity.ID,
		strings.TrimSpace(entity.FirstName),
		strings.TrimSpace(entity.LastName),
		strings.TrimSpace(entity.Congregation),
		strings.TrimSpace(entity.Email),
		entity.Status,
	)
	return storage.Classify("save member", err)
}

// Delete removes a Member and, through the foreign key, its attendance.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	return storage.Classify("delete member", err)
}

// listWhereClause builds the WHERE clause and args for List/Count queries.
func listWhereClause(filter ListFilter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.Congregation != "" {
		where += " AND congregation = ?"
		args = append(args, filter.Congregation)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where += " AND (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
	}
	return where, args
}

// Count returns the total number of members matching the filter.
// PRE: filter has valid parameters
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := listWhereClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member"+where, args...).Scan(&count)
	return count, storage.Classify("count members", err)
}

// List retrieves Members ordered by last name, first name.
// PRE: filter has valid parameters
// POST: Returns matching entities, never nil
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	where, args := listWhereClause(filter)
	query := "SELECT " + memberColumns + " FROM member" + where +
		" ORDER BY lower(last_name), lower(first_name), id LIMIT ? OFFSET ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list members", err)
	}
	defer rows.Close()

	results := make([]domain.Member, 0)
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, storage.Classify("list members", err)
		}
		results = append(results, entity)
	}
	return results, storage.Classify("list members", rows.Err())
}

func scanMember(row interface{ Scan(...any) error }) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Congregation, &m.Email, &m.Status)
	return m, err
}
