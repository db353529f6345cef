package web

import (
	"net/http"
	"strconv"
	"time"

	auditStore "congregation/internal/adapters/storage/audit"
	auditDomain "congregation/internal/domain/audit"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
	defaultPerfWindow = 15 * time.Minute
	defaultPerfTop    = 10
)

// handleAdminAudit handles GET /api/admin/audit
// PRE: Optional category, action, severity, resource_id, from, to and limit parameters
// POST: Returns matching audit events, newest first
func (h *Handler) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if h.stores.AuditStore == nil {
		writeJSON(w, http.StatusOK, []auditDomain.Event{})
		return
	}

	q := r.URL.Query()
	filter := auditStore.Filter{}
	if category := q.Get("category"); category != "" {
		cat := auditDomain.Category(category)
		filter.Category = &cat
	}
	if action := q.Get("action"); action != "" {
		act := auditDomain.Action(action)
		filter.Action = &act
	}
	if severity := q.Get("severity"); severity != "" {
		sev := auditDomain.Severity(severity)
		filter.Severity = &sev
	}
	if resourceID := q.Get("resource_id"); resourceID != "" {
		filter.ResourceID = &resourceID
	}
	if fromDate := q.Get("from"); fromDate != "" {
		filter.FromDate = &fromDate
	}
	if toDate := q.Get("to"); toDate != "" {
		filter.ToDate = &toDate
	}

	limit := defaultAuditLimit
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= maxAuditLimit {
		limit = l
	}

	events, err := h.stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleAdminPerf handles GET /api/admin/perf?window=15m&top=10
// POST: Returns request and query timing aggregates over the window
func (h *Handler) handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if h.collector == nil {
		writeError(w, http.StatusNotFound, "performance collection is disabled")
		return
	}

	window := defaultPerfWindow
	if d, err := time.ParseDuration(r.URL.Query().Get("window")); err == nil && d > 0 {
		window = d
	}
	top := defaultPerfTop
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 {
		top = n
	}

	writeJSON(w, http.StatusOK, h.collector.Snapshot(time.Now().Add(-window), top))
}
