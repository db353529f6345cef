package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"congregation/internal/adapters/storage"
	domain "congregation/internal/domain/attendance"
)

const selectColumns = `SELECT a.id, a.member_id, a.service_date, a.service_type, a.status, a.notes,
	COALESCE(m.first_name, ''), COALESCE(m.last_name, ''), COALESCE(m.congregation, '')
	FROM attendance a LEFT JOIN member m ON m.id = a.member_id`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a record with its member snapshot.
// PRE: id is non-empty
// POST: Returns the record or an error matching domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE a.id = ?", id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("attendance %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Record{}, storage.Classify("get attendance", err)
	}
	return r, nil
}

// Save persists a record. An existing id is updated in place; otherwise the
// record is inserted, or merged into the row already holding its occurrence.
// PRE: value has been validated
// POST: Returns the stored record; its ID is assigned when it was empty
func (s *SQLiteStore) Save(ctx context.Context, value domain.Record) (domain.Record, error) {
	value.Date = domain.DayOf(value.Date)
	value.ServiceType = strings.TrimSpace(value.ServiceType)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Record{}, storage.Classify("save attendance", err)
	}
	defer tx.Rollback()

	if value.ID != "" {
		res, err := tx.ExecContext(ctx,
			`UPDATE attendance SET member_id = ?, service_date = ?, service_type = ?, status = ?, notes = ? WHERE id = ?`,
			value.MemberID, value.Date, value.ServiceType, value.Status, value.Notes, value.ID)
		if err != nil {
			return domain.Record{}, storage.Classify("save attendance", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			if err := tx.Commit(); err != nil {
				return domain.Record{}, storage.Classify("save attendance", err)
			}
			return value, nil
		}
	} else {
		value.ID = uuid.NewString()
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO attendance (id, member_id, service_date, service_type, status, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(member_id, service_date, service_type)
		DO UPDATE SET status = excluded.status, notes = excluded.notes
		RETURNING id`,
		value.ID, value.MemberID, value.Date, value.ServiceType, value.Status, value.Notes,
	).Scan(&value.ID)
	if err != nil {
		return domain.Record{}, storage.Classify("save attendance", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Record{}, storage.Classify("save attendance", err)
	}
	return value, nil
}

// Delete removes a record by id. A missing id is not an error.
// PRE: id is non-empty
// POST: Returns 1 if a row was removed, 0 if none existed
func (s *SQLiteStore) Delete(ctx context.Context, id string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	if err != nil {
		return 0, storage.Classify("delete attendance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storage.Classify("delete attendance", err)
	}
	return int(n), nil
}

// List retrieves records passing the filter. Member and date bounds are pushed
// into SQL; service type and free-text matching run on the joined rows.
// PRE: filter has been validated
// POST: Returns matching records, never nil
func (s *SQLiteStore) List(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	filter = filter.Normalized()

	var where []string
	var args []any
	if filter.MemberID != "" {
		where = append(where, "a.member_id = ?")
		args = append(args, filter.MemberID)
	}
	if filter.DateFrom != "" {
		where = append(where, "a.service_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		where = append(where, "a.service_date <= ?")
		args = append(args, filter.DateTo)
	}
	if filter.ServiceType != "" {
		where = append(where, "instr(lower(a.service_type), lower(?)) > 0")
		args = append(args, filter.ServiceType)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY a.service_date, a.service_type, a.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Classify("list attendance", err)
	}
	defer rows.Close()

	results := make([]domain.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, storage.Classify("list attendance", err)
		}
		if filter.Matches(r) {
			results = append(results, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Classify("list attendance", err)
	}
	return results, nil
}

// DeleteGroup removes every record of one occurrence inside a transaction.
// The rows are counted and deleted under the same transaction; when the
// delete reports a different count the transaction is rolled back, nothing
// is removed, and the error matches domain.ErrAdapterUnavailable so the
// caller can retry.
// PRE: key.Date is a calendar day
// POST: Returns the number of records removed, or an error with nothing removed
func (s *SQLiteStore) DeleteGroup(ctx context.Context, key domain.GroupKey) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storage.Classify("delete attendance group", err)
	}
	defer tx.Rollback()

	var expected int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE service_date = ? AND service_type = ?",
		key.Date, key.ServiceType,
	).Scan(&expected)
	if err != nil {
		return 0, storage.Classify("delete attendance group", err)
	}
	if expected == 0 {
		return 0, nil
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM attendance WHERE service_date = ? AND service_type = ?",
		key.Date, key.ServiceType)
	if err != nil {
		return 0, storage.Classify("delete attendance group", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, storage.Classify("delete attendance group", err)
	}
	if err := checkGroupDelete(key, expected, deleted); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, storage.Classify("delete attendance group", err)
	}
	return expected, nil
}

// checkGroupDelete rejects a delete whose row count differs from the count
// taken under the same transaction.
func checkGroupDelete(key domain.GroupKey, expected int, deleted int64) error {
	if int(deleted) == expected {
		return nil
	}
	return domain.Unavailable("delete attendance group",
		fmt.Errorf("%s changed during delete (counted %d, delete reported %d); rolled back", key, expected, deleted))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var r domain.Record
	err := row.Scan(
		&r.ID,
		&r.MemberID,
		&r.Date,
		&r.ServiceType,
		&r.Status,
		&r.Notes,
		&r.Member.FirstName,
		&r.Member.LastName,
		&r.Member.Congregation,
	)
	return r, err
}
