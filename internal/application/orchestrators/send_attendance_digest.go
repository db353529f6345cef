package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	emailAdapter "congregation/internal/adapters/email"
	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
	"congregation/internal/domain/member"
)

// ErrMemberHasNoEmail is returned when a digest is requested for a member without an address.
var ErrMemberHasNoEmail = errors.New("member has no email address")

// digestRecentAbsences caps the absences listed in a digest.
const digestRecentAbsences = 5

// mdRenderer renders digest markdown. Raw HTML in the source is escaped.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// SendAttendanceDigestInput carries the member and window to report on.
type SendAttendanceDigestInput struct {
	MemberID string
	Filter   attendance.Filter // date range and service type; search is ignored
	Meta     RequestMeta
}

// SendAttendanceDigestDeps holds dependencies for ExecuteSendAttendanceDigest.
type SendAttendanceDigestDeps struct {
	MemberStore     MemberLookup
	AttendanceStore AttendanceReader
	Sender          emailAdapter.Sender
	From            string
	AuditStore      AuditRecorder // optional
}

// SendAttendanceDigestResult reports what was sent.
type SendAttendanceDigestResult struct {
	MessageID string
	Summary   attendance.Summary
	Streaks   attendance.StreakState
}

// ExecuteSendAttendanceDigest emails a member their attendance summary and
// streaks for a window.
// PRE: member exists and has an email address
// POST: One email is handed to the sender; nothing is persisted except the audit event
func ExecuteSendAttendanceDigest(ctx context.Context, input SendAttendanceDigestInput, deps SendAttendanceDigestDeps) (SendAttendanceDigestResult, error) {
	filter := input.Filter
	filter.MemberID = strings.TrimSpace(input.MemberID)
	filter.Search = ""
	if filter.MemberID == "" {
		return SendAttendanceDigestResult{}, &attendance.FilterError{Field: "member_id", Reason: "is required"}
	}
	if err := filter.Validate(); err != nil {
		return SendAttendanceDigestResult{}, err
	}
	filter = filter.Normalized()

	m, err := deps.MemberStore.GetByID(ctx, filter.MemberID)
	if err != nil {
		return SendAttendanceDigestResult{}, fmt.Errorf("load member: %w", err)
	}
	if strings.TrimSpace(m.Email) == "" {
		return SendAttendanceDigestResult{}, ErrMemberHasNoEmail
	}

	records, err := deps.AttendanceStore.List(ctx, filter)
	if err != nil {
		return SendAttendanceDigestResult{}, fmt.Errorf("list member attendance: %w", err)
	}
	records = filter.Apply(records)

	summary := attendance.Summarize(records)
	streaks := attendance.Streaks(records)
	body := digestBody(m, filter, summary, streaks, records, plainText)

	var html bytes.Buffer
	markdown := digestBody(m, filter, summary, streaks, records, escapeMarkdown)
	if err := mdRenderer.Convert([]byte(markdown), &html); err != nil {
		return SendAttendanceDigestResult{}, fmt.Errorf("render digest: %w", err)
	}

	sent, err := deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{m.Email},
		From:    deps.From,
		Subject: "Your attendance summary",
		HTML:    html.String(),
		Text:    body,
		Tags:    map[string]string{"kind": "attendance_digest"},
	})
	if err != nil {
		return SendAttendanceDigestResult{}, fmt.Errorf("send digest: %w", err)
	}

	slog.Info("attendance_event", "event", "digest_sent", "member_id", m.ID, "message_id", sent.MessageID,
		"total", summary.Total, "rate", summary.Rate)
	recordAudit(ctx, deps.AuditStore, input.Meta,
		audit.NewEvent("", audit.CategoryMember, audit.ActionNotify).
			WithResource(audit.ResourceMember, m.ID).
			WithDescription("attendance digest sent"))

	return SendAttendanceDigestResult{MessageID: sent.MessageID, Summary: summary, Streaks: streaks}, nil
}

// digestBody builds the digest in markdown layout. Member-supplied text
// (names, service types, notes) passes through quote, which escapes it for
// markdown rendering or only flattens it for the plain-text part.
func digestBody(m member.Member, filter attendance.Filter, s attendance.Summary, st attendance.StreakState, records []attendance.Record, quote func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Attendance for %s\n\n", quote(m.FullName()))
	fmt.Fprintf(&b, "Period: %s\n\n", describeWindow(filter, quote))

	if s.Total == 0 {
		b.WriteString("No attendance was recorded in this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "**Attended %d of %d services (%d%%)**\n\n", s.Present, s.Total, s.Rate)
	fmt.Fprintf(&b, "- Current streak: %d\n", st.Current)
	fmt.Fprintf(&b, "- Best streak: %d\n", st.Best)

	var absences []attendance.Record
	for _, r := range records {
		if !r.IsPresent() {
			absences = append(absences, r)
		}
	}
	if len(absences) == 0 {
		return b.String()
	}
	sort.Slice(absences, func(i, j int) bool {
		if absences[i].Day() != absences[j].Day() {
			return absences[i].Day() > absences[j].Day()
		}
		return absences[i].ServiceType < absences[j].ServiceType
	})
	if len(absences) > digestRecentAbsences {
		absences = absences[:digestRecentAbsences]
	}

	b.WriteString("\n## Recent absences\n\n")
	for _, r := range absences {
		line := fmt.Sprintf("- %s %s", r.Day(), quote(serviceLabel(r.ServiceType)))
		if notes := quote(r.Notes); notes != "" {
			line += ": " + notes
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func describeWindow(f attendance.Filter, quote func(string) string) string {
	var window string
	switch {
	case f.DateFrom != "" && f.DateTo != "":
		window = f.DateFrom + " to " + f.DateTo
	case f.DateFrom != "":
		window = "since " + f.DateFrom
	case f.DateTo != "":
		window = "up to " + f.DateTo
	default:
		window = "all recorded services"
	}
	if f.ServiceType != "" {
		window += " (" + quote(serviceLabel(f.ServiceType)) + ")"
	}
	return window
}

func serviceLabel(serviceType string) string {
	if serviceType == "" {
		return "service"
	}
	return strings.ReplaceAll(serviceType, "_", " ")
}

// markdownEscaper backslash-escapes the ASCII punctuation that can open or close markdown syntax.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "{", `\{`, "}", `\}`,
	"[", `\[`, "]", `\]`, "<", `\<`, ">", `\>`, "(", `\(`, ")", `\)`,
	"#", `\#`, "+", `\+`, "-", `\-`, ".", `\.`, "!", `\!`, "|", `\|`,
	"~", `\~`, "&", `\&`, "=", `\=`,
)

// escapeMarkdown renders s as literal text inside a markdown line.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(plainText(s))
}

// plainText collapses whitespace so s cannot start a new line or block.
func plainText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
