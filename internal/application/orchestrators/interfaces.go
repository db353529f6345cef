package orchestrators

import (
	"context"
	"log/slog"

	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
	"congregation/internal/domain/member"
)

// AttendanceStoreForDelete defines the store interface needed by the delete orchestrators.
type AttendanceStoreForDelete interface {
	GetByID(ctx context.Context, id string) (attendance.Record, error)
	Delete(ctx context.Context, id string) (int, error)
	DeleteGroup(ctx context.Context, key attendance.GroupKey) (int, error)
	List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error)
}

// AttendanceStoreForRecord defines the store interface needed to record attendance.
type AttendanceStoreForRecord interface {
	Save(ctx context.Context, r attendance.Record) (attendance.Record, error)
	List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error)
}

// AttendanceReader lists records for read-side work inside orchestrators.
type AttendanceReader interface {
	List(ctx context.Context, filter attendance.Filter) ([]attendance.Record, error)
}

// MemberLookup resolves members by id.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, e audit.Event) error
}

// RequestMeta identifies who triggered a mutation, for the audit trail.
type RequestMeta struct {
	ActorID   string
	IPAddress string
	UserAgent string
}

// recordAudit saves e when a recorder is configured. A failed write is logged
// and never fails the mutation it describes.
func recordAudit(ctx context.Context, rec AuditRecorder, meta RequestMeta, e audit.Event) {
	if rec == nil {
		return
	}
	e.ActorID = meta.ActorID
	e = e.WithRequest(meta.IPAddress, meta.UserAgent)
	if err := rec.Save(ctx, e); err != nil {
		slog.Error("audit_event", "event", "audit_write_failed", "action", string(e.Action), "resource_id", e.ResourceID, "error", err)
	}
}
