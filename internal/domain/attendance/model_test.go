package attendance

import (
	"errors"
	"testing"

	"congregation/internal/domain/member"
)

// rec builds a record for tests; the snapshot name doubles as the member id.
func rec(id, memberID, date, serviceType, status string) Record {
	return Record{
		ID:          id,
		MemberID:    memberID,
		Date:        date,
		ServiceType: serviceType,
		Status:      status,
		Member:      member.Snapshot{FirstName: memberID, LastName: memberID},
	}
}

// TestRecordValidate tests validation of Record.
func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{"valid present", Record{MemberID: "m1", Date: "2024-03-03", ServiceType: ServiceWorship, Status: StatusPresent}, false},
		{"valid absent without type", Record{MemberID: "m1", Date: "2024-03-03", Status: StatusAbsent}, false},
		{"timestamp date is truncated", Record{MemberID: "m1", Date: "2024-03-03T10:00:00Z", Status: StatusAbsent}, false},
		{"missing member", Record{Date: "2024-03-03", Status: StatusPresent}, true},
		{"bad date", Record{MemberID: "m1", Date: "03/03/2024", Status: StatusPresent}, true},
		{"unknown status", Record{MemberID: "m1", Date: "2024-03-03", Status: "late"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestDayOf verifies timestamps collapse to their calendar day.
func TestDayOf(t *testing.T) {
	cases := map[string]string{
		"2024-03-03":                "2024-03-03",
		"2024-03-03T23:59:59+13:00": "2024-03-03",
		" 2024-03-03 ":              "2024-03-03",
		"":                          "",
	}
	for in, want := range cases {
		if got := DayOf(in); got != want {
			t.Errorf("DayOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecordValidate_ErrInvalidRecord(t *testing.T) {
	r := Record{MemberID: "m1", Date: "2024-03-03", Status: "maybe"}
	if err := r.Validate(); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Validate() error = %v, want ErrInvalidRecord", err)
	}
}
