package attendance

import (
	"fmt"
	"strings"
	"time"

	"congregation/internal/domain/member"
)

// DateLayout is the calendar-day form used for every attendance date.
const DateLayout = "2006-01-02"

// Status values. A record is always exactly one of the two.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Well-known service types. The field is open; any non-empty string is accepted.
const (
	ServiceWorship       = "worship"
	ServiceBibleStudy    = "bible_study"
	ServiceEvent         = "event"
	ServicePrayerMeeting = "prayer_meeting"
)

// MaxNotesLength caps the free-text notes field.
const MaxNotesLength = 1000

// Record is one member's attendance at one service occurrence.
type Record struct {
	ID          string
	MemberID    string
	Date        string // YYYY-MM-DD
	ServiceType string
	Status      string
	Notes       string
	Member      member.Snapshot // filled by the store on read
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID is non-empty, Date parses as a calendar day, Status is present or absent
func (r *Record) Validate() error {
	if strings.TrimSpace(r.MemberID) == "" {
		return fmt.Errorf("%w: attendance must be associated with a member", ErrInvalidRecord)
	}
	if _, err := ParseDay(r.Date); err != nil {
		return fmt.Errorf("%w: attendance date must be YYYY-MM-DD", ErrInvalidRecord)
	}
	if r.Status != StatusPresent && r.Status != StatusAbsent {
		return fmt.Errorf("%w: attendance status must be 'present' or 'absent'", ErrInvalidRecord)
	}
	if len(r.Notes) > MaxNotesLength {
		return fmt.Errorf("%w: attendance notes cannot exceed 1000 characters", ErrInvalidRecord)
	}
	return nil
}

// IsPresent reports whether the record counts as attended.
func (r *Record) IsPresent() bool {
	return r.Status == StatusPresent
}

// Day returns the record's calendar day key.
func (r *Record) Day() string {
	return DayOf(r.Date)
}

// DayOf truncates a stored date or timestamp to its YYYY-MM-DD calendar day.
// Values shorter than a full day are returned unchanged.
func DayOf(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) {
		return value[:len(DateLayout)]
	}
	return value
}

// ParseDay parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDay(value string) (time.Time, error) {
	return time.Parse(DateLayout, DayOf(value))
}

// FormatDay renders a time as a YYYY-MM-DD calendar day.
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}
