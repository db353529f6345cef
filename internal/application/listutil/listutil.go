package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// PageParams carries the requested page parsed from a request.
type PageParams struct {
	Page int // 1-indexed page number
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string            // free-text search query
	Filters map[string]string // named filters (e.g. from=2024-01-01)
}

// PageInfo carries pagination metadata for a paged listing.
type PageInfo struct {
	Page       int `json:"page"`        // current page (1-indexed)
	PerPage    int `json:"per_page"`    // items per page
	Total      int `json:"total"`       // total matching items
	TotalPages int `json:"total_pages"` // ceil(Total / PerPage), at least 1
}

// DefaultPerPage is the page size used when none is configured.
const DefaultPerPage = 10

// ParsePageParams extracts page from URL query values.
// PRE: none
// POST: returns PageParams with Page >= 1
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	return PageParams{Page: page}
}

// ParseFilterParams extracts search and named filters from URL query values.
// Values are trimmed; blank values are dropped.
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns FilterParams with only recognised keys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first item on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first item number on the current page.
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last item number on the current page.
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// HasNext reports whether a page follows the current one.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether a page precedes the current one.
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// Window returns the slice of items on the page described by p.
// The result shares the backing array of items.
// PRE: p was computed from len(items)
func Window[T any](items []T, p PageInfo) []T {
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := p.EndRow()
	if end > len(items) {
		end = len(items)
	}
	if end < start {
		end = start
	}
	return items[start:end]
}
