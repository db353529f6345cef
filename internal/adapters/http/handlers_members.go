package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"congregation/internal/application/orchestrators"
	"congregation/internal/application/projections"
	"congregation/internal/domain/attendance"
)

func (h *Handler) memberDeps() projections.MemberAttendanceDeps {
	return projections.MemberAttendanceDeps{
		AttendanceStore: h.stores.AttendanceStore,
		MemberStore:     h.stores.MemberStore,
	}
}

// handleMemberSummary handles GET /api/members/{id}/attendance/summary
// POST: Returns total, present, absent and rate over the from/to/type window
func (h *Handler) handleMemberSummary(w http.ResponseWriter, r *http.Request) {
	query := projections.MemberAttendanceQuery{MemberID: chi.URLParam(r, "id"), Filter: filterFromQuery(r)}
	result, err := projections.QueryMemberAttendanceSummary(r.Context(), query, h.memberDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		MemberID: result.MemberID,
		Total:    result.Summary.Total,
		Present:  result.Summary.Present,
		Absent:   result.Summary.Absent,
		Rate:     result.Summary.Rate,
		Filter:   toFilterDTO(query.Filter.Normalized()),
	})
}

// handleMemberStreaks handles GET /api/members/{id}/attendance/streaks
// POST: Returns current and best runs over the from/to/type window
func (h *Handler) handleMemberStreaks(w http.ResponseWriter, r *http.Request) {
	query := projections.MemberAttendanceQuery{MemberID: chi.URLParam(r, "id"), Filter: filterFromQuery(r)}
	result, err := projections.QueryMemberStreaks(r.Context(), query, h.memberDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streaksResponse{
		MemberID:    result.MemberID,
		Current:     result.Streaks.Current,
		Best:        result.Streaks.Best,
		Occurrences: result.Occurrences,
		Filter:      toFilterDTO(query.Filter.Normalized()),
	})
}

// handleMemberCalendar handles GET /api/members/{id}/attendance/calendar?year&month
// Missing year or month default to the current UTC month.
// POST: Returns Sunday-first week rows of seven cells
func (h *Handler) handleMemberCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, err := intParam(r, "year", now.Year())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	month, err := intParam(r, "month", int(now.Month()))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := projections.QueryMemberCalendar(r.Context(), projections.MemberCalendarQuery{
		MemberID: chi.URLParam(r, "id"),
		Year:     year,
		Month:    month,
	}, h.memberDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(result))
}

// handleMemberDay handles GET /api/members/{id}/attendance/day/{date}
// POST: Returns every record of that day; an empty list means nothing happened
func (h *Handler) handleMemberDay(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryMemberDayDetail(r.Context(), projections.MemberDayQuery{
		MemberID: chi.URLParam(r, "id"),
		Date:     chi.URLParam(r, "date"),
	}, h.memberDeps())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{
		MemberID: result.MemberID,
		Date:     result.Date,
		Records:  toRecordDTOs(result.Records),
	})
}

// handleSendDigest handles POST /api/members/{id}/digest
// PRE: Optional JSON body with from, to and type
// POST: One digest email is sent to the member
func (h *Handler) handleSendDigest(w http.ResponseWriter, r *http.Request) {
	var input struct {
		From        string `json:"from"`
		To          string `json:"to"`
		ServiceType string `json:"type"`
	}
	if err := strictDecode(r, &input); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteSendAttendanceDigest(r.Context(), orchestrators.SendAttendanceDigestInput{
		MemberID: chi.URLParam(r, "id"),
		Filter:   attendance.Filter{DateFrom: input.From, DateTo: input.To, ServiceType: input.ServiceType},
		Meta:     requestMeta(r),
	}, orchestrators.SendAttendanceDigestDeps{
		MemberStore:     h.stores.MemberStore,
		AttendanceStore: h.stores.AttendanceStore,
		Sender:          h.sender,
		From:            h.cfg.MailFrom,
		AuditStore:      h.stores.AuditStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, digestResponse{
		MessageID:     result.MessageID,
		Total:         result.Summary.Total,
		Present:       result.Summary.Present,
		Absent:        result.Summary.Absent,
		Rate:          result.Summary.Rate,
		CurrentStreak: result.Streaks.Current,
		BestStreak:    result.Streaks.Best,
	})
}

// intParam reads an integer query parameter, falling back to def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &attendance.FilterError{Field: name, Reason: "must be a number"}
	}
	return n, nil
}
