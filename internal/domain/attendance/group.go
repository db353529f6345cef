package attendance

import (
	"sort"
	"strings"
)

// GroupKey identifies one service occurrence: a calendar day plus a service type.
type GroupKey struct {
	Date        string
	ServiceType string
}

// String renders the key as "date/serviceType".
func (k GroupKey) String() string {
	return k.Date + "/" + k.ServiceType
}

// KeyOf extracts the group key of a record. Dates are truncated to the
// calendar day; a missing service type becomes the empty string.
func KeyOf(r Record) GroupKey {
	return GroupKey{Date: r.Day(), ServiceType: r.ServiceType}
}

// Group is every member's record for one occurrence. Derived, never persisted.
// INVARIANT: PresentCount + AbsentCount == Total == len(Items)
type Group struct {
	Date         string
	ServiceType  string
	Items        []Record
	PresentCount int
	AbsentCount  int
	Total        int
}

// Key returns the group's composite key.
func (g Group) Key() GroupKey {
	return GroupKey{Date: g.Date, ServiceType: g.ServiceType}
}

// GroupRecords collapses flat records into occurrence groups.
// Groups are ordered by date descending, then service type ascending; items
// within a group by last name, first name (case-insensitive).
// PRE: none
// POST: input is not modified; output depends only on the multiset of input records
func GroupRecords(records []Record) []Group {
	index := make(map[GroupKey]int)
	var groups []Group

	for _, r := range records {
		key := KeyOf(r)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Date: key.Date, ServiceType: key.ServiceType})
		}
		groups[i].Items = append(groups[i].Items, r)
	}

	for i := range groups {
		g := &groups[i]
		sort.Slice(g.Items, func(a, b int) bool {
			return lessByName(g.Items[a], g.Items[b])
		})
		g.Total = len(g.Items)
		for _, item := range g.Items {
			if item.IsPresent() {
				g.PresentCount++
			}
		}
		g.AbsentCount = g.Total - g.PresentCount
	}

	sort.Slice(groups, func(a, b int) bool {
		if groups[a].Date != groups[b].Date {
			return groups[a].Date > groups[b].Date
		}
		return groups[a].ServiceType < groups[b].ServiceType
	})

	if groups == nil {
		return []Group{}
	}
	return groups
}

// lessByName orders records by (lastName, firstName) case-insensitively.
// Member and record ids break remaining ties so the order never depends on input order.
func lessByName(a, b Record) bool {
	al, bl := strings.ToLower(a.Member.LastName), strings.ToLower(b.Member.LastName)
	if al != bl {
		return al < bl
	}
	af, bf := strings.ToLower(a.Member.FirstName), strings.ToLower(b.Member.FirstName)
	if af != bf {
		return af < bf
	}
	if a.MemberID != b.MemberID {
		return a.MemberID < b.MemberID
	}
	return a.ID < b.ID
}

// MatchesKey reports whether a record belongs to the given occurrence.
func MatchesKey(r Record, key GroupKey) bool {
	return KeyOf(r) == key
}
