package attendance

import (
	"sort"
)

// StreakState holds consecutive-attendance runs for one member.
type StreakState struct {
	Current int // run ending at the most recent occurrence
	Best    int // longest run anywhere in scope
}

// Occurrence is one service instance as seen by a single member.
type Occurrence struct {
	Date        string
	ServiceType string
	Present     bool
}

// Occurrences collapses a member's records into one entry per (date, serviceType),
// ordered chronologically (service type breaks same-day ties).
// Duplicate records for one occurrence count as present if any of them is present.
func Occurrences(records []Record) []Occurrence {
	index := make(map[GroupKey]int, len(records))
	occ := make([]Occurrence, 0, len(records))
	for _, r := range records {
		key := KeyOf(r)
		if i, ok := index[key]; ok {
			occ[i].Present = occ[i].Present || r.IsPresent()
			continue
		}
		index[key] = len(occ)
		occ = append(occ, Occurrence{Date: key.Date, ServiceType: key.ServiceType, Present: r.IsPresent()})
	}
	sort.Slice(occ, func(a, b int) bool {
		if occ[a].Date != occ[b].Date {
			return occ[a].Date < occ[b].Date
		}
		return occ[a].ServiceType < occ[b].ServiceType
	})
	return occ
}

// Streaks computes current and best runs of consecutive present occurrences.
// Consecutive means adjacent in occurrence order, not adjacent calendar days:
// only an absent record breaks a run, a missing record does not.
// PRE: records belong to one member and one filter window
// POST: result is independent of input order
func Streaks(records []Record) StreakState {
	var state StreakState
	run := 0
	for _, o := range Occurrences(records) {
		if o.Present {
			run++
		} else {
			run = 0
		}
		if run > state.Best {
			state.Best = run
		}
	}
	state.Current = run
	return state
}
