package attendance

import (
	"sort"
	"time"
)

// Cell status values.
const (
	CellPresent = "present"
	CellAbsent  = "absent"
	CellNone    = "none"
)

// Calendar year bounds accepted by the projector.
const (
	MinCalendarYear = 1900
	MaxCalendarYear = 9999
)

// Cell is one day of a month grid.
type Cell struct {
	Date          string
	InTargetMonth bool // false for leading/trailing days of adjacent months; not drillable
	Status        string
}

// GridBounds returns the first and last day of the Sunday-to-Saturday grid
// covering year/month.
// PRE: none
// POST: returns an error matching ErrInvalidFilter for an out-of-range month or year
func GridBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, invalidFilter("month", "must be between 1 and 12")
	}
	if year < MinCalendarYear || year > MaxCalendarYear {
		return time.Time{}, time.Time{}, invalidFilter("year", "is out of range")
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))
	return start, end, nil
}

// ProjectMonth maps a member's records onto complete weeks of seven cells.
// A day with any present record is present; a day with only absent records is
// absent; a day with no record is none.
// PRE: records belong to one member
// POST: every row has 7 cells; each day of the month appears once with InTargetMonth set
func ProjectMonth(year, month int, records []Record) ([][]Cell, error) {
	start, end, err := GridBounds(year, month)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]string, len(records))
	for _, r := range records {
		day := r.Day()
		if r.IsPresent() {
			byDay[day] = CellPresent
		} else if byDay[day] != CellPresent {
			byDay[day] = CellAbsent
		}
	}

	var weeks [][]Cell
	for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
		week := make([]Cell, 7)
		for i := range week {
			day := d.AddDate(0, 0, i)
			key := FormatDay(day)
			status, ok := byDay[key]
			if !ok {
				status = CellNone
			}
			week[i] = Cell{
				Date:          key,
				InTargetMonth: day.Month() == time.Month(month),
				Status:        status,
			}
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// DayDetail returns every record on one calendar day, any service type,
// ordered by service type. An empty slice means nothing happened that day.
func DayDetail(records []Record, date string) []Record {
	day := DayOf(date)
	out := make([]Record, 0)
	for _, r := range records {
		if r.Day() == day {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].ServiceType != out[b].ServiceType {
			return out[a].ServiceType < out[b].ServiceType
		}
		return out[a].ID < out[b].ID
	})
	return out
}
