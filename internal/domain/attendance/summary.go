package attendance

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary is a member's attendance tally over a pre-filtered window.
// INVARIANT: Present + Absent == Total; 0 <= Rate <= 100; Rate == 0 when Total == 0
type Summary struct {
	Total   int
	Present int
	Absent  int
	Rate    int // whole percent, rounded half-up
}

// Summarize tallies records that the caller has already filtered.
// PRE: records are already restricted to one member and one window
// POST: returns a Summary satisfying its invariants
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.IsPresent() {
			s.Present++
		}
	}
	s.Absent = s.Total - s.Present
	s.Rate = Rate(s.Present, s.Total)
	return s
}

// Rate returns present/total as a whole percentage rounded half-up,
// or 0 when total is 0.
func Rate(present, total int) int {
	if total <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(present)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(pct.IntPart())
}
