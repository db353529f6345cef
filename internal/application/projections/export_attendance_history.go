package projections

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"congregation/internal/domain/attendance"
)

// historyCSVHeader is the column layout of the history export.
var historyCSVHeader = []string{
	"date", "service_type", "group_present", "group_absent", "group_total",
	"last_name", "first_name", "congregation", "status", "notes",
}

// ExportHistoryResult reports what was written.
type ExportHistoryResult struct {
	Groups  int
	Records int
}

// QueryExportAttendanceHistory writes every group passing the filter as CSV,
// one row per record, in history order. Pagination does not apply.
// PRE: w is writable
// POST: On success the header and every row are flushed to w
func QueryExportAttendanceHistory(ctx context.Context, w io.Writer, filter attendance.Filter, deps HistoryDeps) (ExportHistoryResult, error) {
	groups, total, err := filteredGroups(ctx, filter, deps.AttendanceStore)
	if err != nil {
		return ExportHistoryResult{}, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(historyCSVHeader); err != nil {
		return ExportHistoryResult{}, err
	}
	for _, g := range groups {
		present, absent, size := strconv.Itoa(g.PresentCount), strconv.Itoa(g.AbsentCount), strconv.Itoa(g.Total)
		for _, r := range g.Items {
			if err := cw.Write([]string{
				g.Date, g.ServiceType, present, absent, size,
				r.Member.LastName, r.Member.FirstName, r.Member.Congregation, r.Status, r.Notes,
			}); err != nil {
				return ExportHistoryResult{}, err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ExportHistoryResult{}, err
	}
	return ExportHistoryResult{Groups: len(groups), Records: total}, nil
}
