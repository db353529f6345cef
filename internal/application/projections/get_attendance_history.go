package projections

import (
	"context"
	"fmt"

	"congregation/internal/application/listutil"
	"congregation/internal/domain/attendance"
)

// HistoryQuery is the full state of one admin history view. Every request
// carries its own copy; nothing is kept between calls.
type HistoryQuery struct {
	Filter   attendance.Filter
	Page     int                  // 1-indexed; out-of-range pages are clamped
	PageSize int                  // groups per page
	Expanded *attendance.GroupKey // at most one group shown expanded
}

// Refilter returns the query for a new filter: back to page 1, nothing expanded.
func (q HistoryQuery) Refilter(filter attendance.Filter) HistoryQuery {
	return HistoryQuery{Filter: filter, Page: 1, PageSize: q.PageSize}
}

// Toggle expands key, or collapses it when it is already expanded.
func (q HistoryQuery) Toggle(key attendance.GroupKey) HistoryQuery {
	if q.Expanded != nil && *q.Expanded == key {
		q.Expanded = nil
		return q
	}
	q.Expanded = &key
	return q
}

// HistoryGroup is one occurrence group on a history page.
type HistoryGroup struct {
	attendance.Group
	Expanded bool
}

// HistoryResult carries one page of grouped history.
type HistoryResult struct {
	Groups       []HistoryGroup
	PageInfo     listutil.PageInfo
	TotalRecords int // records passing the filter, across every page
	Query        HistoryQuery
}

// HistoryDeps holds dependencies for QueryAttendanceHistory.
type HistoryDeps struct {
	AttendanceStore AttendanceStore
}

// QueryAttendanceHistory filters records, groups them by occurrence and returns
// one page of groups. Pages count groups, not records.
// PRE: query.Filter may be unvalidated
// POST: Returns a complete page or an error; an invalid filter never reaches the store
func QueryAttendanceHistory(ctx context.Context, query HistoryQuery, deps HistoryDeps) (HistoryResult, error) {
	groups, total, err := filteredGroups(ctx, query.Filter, deps.AttendanceStore)
	if err != nil {
		return HistoryResult{}, err
	}

	info := listutil.NewPageInfo(query.Page, query.PageSize, len(groups))
	query.Page = info.Page
	query.PageSize = info.PerPage

	page := listutil.Window(groups, info)
	result := HistoryResult{
		Groups:       make([]HistoryGroup, 0, len(page)),
		PageInfo:     info,
		TotalRecords: total,
		Query:        query,
	}
	for _, g := range page {
		expanded := query.Expanded != nil && *query.Expanded == g.Key()
		result.Groups = append(result.Groups, HistoryGroup{Group: g, Expanded: expanded})
	}
	return result, nil
}

// filteredGroups validates the filter, reads matching records and groups them.
func filteredGroups(ctx context.Context, filter attendance.Filter, store AttendanceStore) ([]attendance.Group, int, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter = filter.Normalized()

	records, err := store.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendance history: %w", err)
	}
	// Adapters may push down only part of the filter.
	records = filter.Apply(records)
	return attendance.GroupRecords(records), len(records), nil
}
