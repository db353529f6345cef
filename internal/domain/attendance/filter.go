package attendance

import (
	"strings"
)

// Filter is the full, explicit filter of one request. Every query carries its
// own Filter; nothing is read from shared state.
type Filter struct {
	MemberID    string // exact match when set
	DateFrom    string // inclusive YYYY-MM-DD, optional
	DateTo      string // inclusive YYYY-MM-DD, optional
	ServiceType string // case-insensitive substring, optional
	Search      string // case-insensitive free text, optional
}

// Validate rejects malformed dates and inverted ranges.
// PRE: none
// POST: returns nil or an error matching ErrInvalidFilter
func (f Filter) Validate() error {
	if f.DateFrom != "" {
		if _, err := ParseDay(f.DateFrom); err != nil {
			return invalidFilter("date_from", "must be YYYY-MM-DD")
		}
	}
	if f.DateTo != "" {
		if _, err := ParseDay(f.DateTo); err != nil {
			return invalidFilter("date_to", "must be YYYY-MM-DD")
		}
	}
	if f.DateFrom != "" && f.DateTo != "" && DayOf(f.DateFrom) > DayOf(f.DateTo) {
		return invalidFilter("date_from", "is after date_to")
	}
	return nil
}

// Normalized trims whitespace and truncates dates to calendar days.
func (f Filter) Normalized() Filter {
	return Filter{
		MemberID:    strings.TrimSpace(f.MemberID),
		DateFrom:    DayOf(f.DateFrom),
		DateTo:      DayOf(f.DateTo),
		ServiceType: strings.TrimSpace(f.ServiceType),
		Search:      strings.TrimSpace(f.Search),
	}
}

// Matches reports whether a single record passes the filter.
// Filtering is per record; grouping happens afterwards.
func (f Filter) Matches(r Record) bool {
	if f.MemberID != "" && r.MemberID != f.MemberID {
		return false
	}
	day := r.Day()
	if f.DateFrom != "" && day < DayOf(f.DateFrom) {
		return false
	}
	if f.DateTo != "" && day > DayOf(f.DateTo) {
		return false
	}
	if f.ServiceType != "" && !containsFold(r.ServiceType, f.ServiceType) {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" && !containsFold(searchText(r), q) {
		return false
	}
	return true
}

// Apply returns the records that pass the filter, in input order.
// The input slice is not modified.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// searchText is the concatenation of every free-text searchable field.
func searchText(r Record) string {
	return strings.Join([]string{
		r.Member.FirstName,
		r.Member.LastName,
		r.Member.Congregation,
		r.Notes,
		r.Status,
		r.ServiceType,
		r.Day(),
	}, " ")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
