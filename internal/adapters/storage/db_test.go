package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TestInitDB_Fresh verifies the schema applies cleanly and is idempotent.
func TestInitDB_Fresh(t *testing.T) {
	db := openTimedTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	want := []string{"attendance", "audit_event", "member"}
	got := getTableNames(t, db)
	if len(got) != len(want) {
		t.Fatalf("tables = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("table[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestInitDB_OccurrenceUnique verifies one row per member, date and service type.
func TestInitDB_OccurrenceUnique(t *testing.T) {
	db := openTimedTestDB(t)

	if _, err := db.Exec("INSERT INTO member (id, first_name, last_name) VALUES ('m1', 'Ruth', 'Boaz')"); err != nil {
		t.Fatalf("insert member: %v", err)
	}
	insert := "INSERT INTO attendance (id, member_id, service_date, service_type, status) VALUES (?, 'm1', '2024-03-03', 'worship', 'present')"
	if _, err := db.Exec(insert, "a1"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(insert, "a2"); err == nil {
		t.Error("expected unique violation for duplicate occurrence")
	}
	if _, err := db.Exec("INSERT INTO attendance (id, member_id, service_date, status) VALUES ('a3', 'm1', '2024-03-03', 'late')"); err == nil {
		t.Error("expected check violation for unknown status")
	}
}
