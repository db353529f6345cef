package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"congregation/internal/adapters/http/middleware"
	"congregation/internal/application/listutil"
	"congregation/internal/application/orchestrators"
	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
	"congregation/internal/domain/member"
)

// filterKeys are the query parameters accepted as attendance filters.
var filterKeys = []string{"from", "to", "type"}

// emptyServiceType stands in for the empty service type in URL path segments.
const emptyServiceType = "_"

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// partialFailureResponse reports how far a group delete got.
type partialFailureResponse struct {
	Error       string `json:"error"`
	Date        string `json:"date"`
	ServiceType string `json:"service_type"`
	Expected    int    `json:"expected"`
	Deleted     int    `json:"deleted"`
	Remaining   int    `json:"remaining"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// internalError logs the real error and returns a generic 500.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeDomainError maps the attendance error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var partial *attendance.PartialFailureError
	var filterErr *attendance.FilterError
	switch {
	case errors.As(err, &partial):
		writeJSON(w, http.StatusConflict, partialFailureResponse{
			Error:       "attendance group was only partially deleted",
			Date:        partial.Date,
			ServiceType: partial.ServiceType,
			Expected:    partial.Expected,
			Deleted:     partial.Deleted,
			Remaining:   partial.Remaining(),
		})
	case errors.As(err, &filterErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: filterErr.Error(), Field: filterErr.Field})
	case errors.Is(err, attendance.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, member.ErrNotFound):
		writeError(w, http.StatusNotFound, "member not found")
	case errors.Is(err, attendance.ErrNotFound):
		writeError(w, http.StatusNotFound, "attendance record not found")
	case errors.Is(err, orchestrators.ErrMemberHasNoEmail):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, attendance.ErrAdapterUnavailable):
		slog.Warn("store_unavailable", "error", err.Error())
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "attendance store temporarily unavailable")
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// requestMeta identifies the caller for the audit trail.
func requestMeta(r *http.Request) orchestrators.RequestMeta {
	return orchestrators.RequestMeta{
		ActorID:   middleware.ActorFromContext(r.Context()),
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// recordAudit saves e with the request's actor when an audit store is configured.
// A failed write is logged and never fails the request.
func (h *Handler) recordAudit(r *http.Request, e audit.Event) {
	if h.stores.AuditStore == nil {
		return
	}
	meta := requestMeta(r)
	e.ActorID = meta.ActorID
	e = e.WithRequest(meta.IPAddress, meta.UserAgent)
	if err := h.stores.AuditStore.Save(r.Context(), e); err != nil {
		slog.Error("audit_event", "event", "audit_write_failed", "action", string(e.Action), "error", err)
	}
}

// filterFromQuery reads from/to/type/q into an attendance filter.
func filterFromQuery(r *http.Request) attendance.Filter {
	fp := listutil.ParseFilterParams(r.URL.Query(), filterKeys)
	return attendance.Filter{
		DateFrom:    fp.Filters["from"],
		DateTo:      fp.Filters["to"],
		ServiceType: fp.Filters["type"],
		Search:      fp.Search,
	}
}

// serviceTypeSegment encodes a service type as one URL path segment.
// The empty type is "_"; a literal "_" is escaped so it cannot be mistaken for it.
func serviceTypeSegment(serviceType string) string {
	switch serviceType {
	case "":
		return emptyServiceType
	case emptyServiceType:
		return "%5F"
	}
	return url.PathEscape(serviceType)
}

// serviceTypeParam decodes a segment produced by serviceTypeSegment.
func serviceTypeParam(segment string) (string, bool) {
	if segment == emptyServiceType {
		return "", true
	}
	v, err := url.PathUnescape(segment)
	if err != nil {
		return "", false
	}
	return v, true
}

// rawPathParam returns a chi URL parameter in its escaped form.
// chi matches against RawPath when the request carries one (an escaped "/"
// or "_") and against the decoded Path otherwise.
func rawPathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return url.PathEscape(v)
	}
	return v
}

// parseGroupKey reads "date/serviceType" as used by the expand parameter.
func parseGroupKey(v string) (*attendance.GroupKey, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, true
	}
	date, serviceType, ok := strings.Cut(v, "/")
	if !ok {
		return nil, false
	}
	if _, err := attendance.ParseDay(date); err != nil {
		return nil, false
	}
	st, ok := serviceTypeParam(serviceType)
	if !ok {
		return nil, false
	}
	return &attendance.GroupKey{Date: date, ServiceType: st}, true
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.cfg.HealthCheck != nil {
		if err := h.cfg.HealthCheck(r.Context()); err != nil {
			slog.Warn("health_check_failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
