package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"congregation/internal/application/listutil"
	"congregation/internal/application/orchestrators"
	"congregation/internal/application/projections"
	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
)

// handleListHistory handles GET /api/attendance/history
// PRE: from/to are YYYY-MM-DD when present; expand is "date/serviceType"
// POST: Returns one page of occurrence groups, newest first
func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	expanded, ok := parseGroupKey(r.URL.Query().Get("expand"))
	if !ok {
		writeDomainError(w, &attendance.FilterError{Field: "expand", Reason: "must be YYYY-MM-DD/serviceType"})
		return
	}

	query := projections.HistoryQuery{PageSize: h.cfg.HistoryPageSize}.Refilter(filterFromQuery(r))
	query.Page = listutil.ParsePageParams(r.URL.Query()).Page
	query.Expanded = expanded

	result, err := projections.QueryAttendanceHistory(r.Context(), query, projections.HistoryDeps{
		AttendanceStore: h.stores.AttendanceStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(result))
}

// handleExportHistory handles GET /api/attendance/history.csv
// PRE: same filter parameters as the history listing; page is ignored
// POST: Returns every filtered group as CSV, one row per record
func (h *Handler) handleExportHistory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	filter := filterFromQuery(r)
	result, err := projections.QueryExportAttendanceHistory(r.Context(), &buf, filter, projections.HistoryDeps{
		AttendanceStore: h.stores.AttendanceStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slog.Info("attendance_event", "event", "history_exported", "groups", result.Groups, "records", result.Records)
	metadata, _ := json.Marshal(toFilterDTO(filter))
	h.recordAudit(r, audit.NewEvent("", audit.CategoryAttendance, audit.ActionExport).
		WithResource(audit.ResourceAttendanceExport, r.URL.RawQuery).
		WithDescription(fmt.Sprintf("exported %d attendance records in %d groups", result.Records, result.Groups)).
		WithMetadata(string(metadata)))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-history.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("response_write_failed", "error", err)
	}
}

// handleRecordAttendance handles POST /api/attendance/records
// PRE: Body is JSON with member_id, date, status and optional service_type, notes
// POST: Returns 201 with the stored record; re-recording an occurrence updates it
func (h *Handler) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var input struct {
		MemberID    string `json:"member_id"`
		Date        string `json:"date"`
		ServiceType string `json:"service_type"`
		Status      string `json:"status"`
		Notes       string `json:"notes"`
	}
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := orchestrators.ExecuteRecordAttendance(r.Context(), orchestrators.RecordAttendanceInput{
		MemberID:    input.MemberID,
		Date:        input.Date,
		ServiceType: input.ServiceType,
		Status:      input.Status,
		Notes:       input.Notes,
		Meta:        requestMeta(r),
	}, orchestrators.RecordAttendanceDeps{
		AttendanceStore: h.stores.AttendanceStore,
		MemberStore:     h.stores.MemberStore,
		AuditStore:      h.stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(saved))
}

// handleDeleteRecord handles DELETE /api/attendance/records/{id}
// POST: Returns the number removed; a missing record is 0, not an error
func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	n, err := orchestrators.ExecuteDeleteAttendanceRecord(r.Context(), orchestrators.DeleteAttendanceRecordInput{
		RecordID: chi.URLParam(r, "id"),
		Meta:     requestMeta(r),
	}, orchestrators.DeleteAttendanceRecordDeps{
		AttendanceStore: h.stores.AttendanceStore,
		AuditStore:      h.stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteRecordResponse{Deleted: n})
}

// handleDeleteGroup handles DELETE /api/attendance/groups/{date}/{serviceType}
// The service type segment is path-escaped; the empty service type is "_".
// POST: Every record of the occurrence is gone, or 409 reports the partial counts
func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	serviceType, ok := serviceTypeParam(rawPathParam(r, "serviceType"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid service type")
		return
	}
	date, err := url.PathUnescape(rawPathParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	input := orchestrators.DeleteAttendanceGroupInput{
		Date:        date,
		ServiceType: serviceType,
		Meta:        requestMeta(r),
	}
	result, err := orchestrators.ExecuteDeleteAttendanceGroup(r.Context(), input, orchestrators.DeleteAttendanceGroupDeps{
		AttendanceStore: h.stores.AttendanceStore,
		AuditStore:      h.stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteGroupResponse{
		Date:        attendance.DayOf(input.Date),
		ServiceType: input.ServiceType,
		Deleted:     result.Deleted,
		NotFound:    result.NotFound,
	})
}
