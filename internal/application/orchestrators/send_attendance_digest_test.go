package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	emailAdapter "congregation/internal/adapters/email"
	"congregation/internal/domain/attendance"
	"congregation/internal/domain/audit"
	"congregation/internal/domain/member"
)

func digestDeps(sender emailAdapter.Sender) (SendAttendanceDigestDeps, *mockAuditStore) {
	auditStore := &mockAuditStore{}
	members := &mockMemberStore{members: map[string]member.Member{
		"m1": {ID: "m1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", Status: member.StatusActive},
		"m2": {ID: "m2", FirstName: "Bob", LastName: "Noemail", Status: member.StatusActive},
	}}
	store := newMockAttendanceStore(
		rec("r1", "m1", "2024-03-03", "worship", attendance.StatusPresent),
		rec("r2", "m1", "2024-03-06", "bible_study", attendance.StatusAbsent),
		rec("r3", "m1", "2024-03-10", "worship", attendance.StatusPresent),
		rec("r4", "m1", "2024-03-17", "worship", attendance.StatusPresent),
		rec("r5", "m2", "2024-03-03", "worship", attendance.StatusAbsent),
		rec("r6", "m1", "2024-04-07", "worship", attendance.StatusAbsent),
	)
	return SendAttendanceDigestDeps{
		MemberStore:     members,
		AttendanceStore: store,
		Sender:          sender,
		From:            "Portal <portal@example.org>",
		AuditStore:      auditStore,
	}, auditStore
}

// TestExecuteSendAttendanceDigest_SendsSummary verifies the email content and result tallies.
func TestExecuteSendAttendanceDigest_SendsSummary(t *testing.T) {
	sender := emailAdapter.NewNoopSender()
	deps, auditStore := digestDeps(sender)

	res, err := ExecuteSendAttendanceDigest(context.Background(), SendAttendanceDigestInput{
		MemberID: "m1",
		Filter:   attendance.Filter{DateFrom: "2024-03-01", DateTo: "2024-03-31", Search: "ignored"},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Summary != (attendance.Summary{Total: 4, Present: 3, Absent: 1, Rate: 75}) {
		t.Errorf("summary=%+v", res.Summary)
	}
	if res.Streaks != (attendance.StreakState{Current: 2, Best: 2}) {
		t.Errorf("streaks=%+v", res.Streaks)
	}
	if res.MessageID == "" {
		t.Error("expected a message id")
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent=%d want 1", len(sent))
	}
	msg := sent[0]
	if len(msg.To) != 1 || msg.To[0] != "ada@example.org" || msg.From != deps.From {
		t.Errorf("envelope=%v from=%q", msg.To, msg.From)
	}
	if !strings.Contains(msg.HTML, "<h1>Attendance for Ada Lovelace</h1>") {
		t.Errorf("html missing heading: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "(75%)") || !strings.Contains(msg.Text, "Attended 3 of 4 services") {
		t.Errorf("rate missing from body: %s", msg.Text)
	}
	if !strings.Contains(msg.Text, "2024-03-06 bible study") || strings.Contains(msg.Text, "2024-04-07") {
		t.Errorf("absences outside window or missing: %s", msg.Text)
	}
	if msg.Tags["kind"] != "attendance_digest" {
		t.Errorf("tags=%v", msg.Tags)
	}
	if len(auditStore.events) != 1 || auditStore.events[0].Action != audit.ActionNotify {
		t.Errorf("audit events=%+v", auditStore.events)
	}
}

// TestExecuteSendAttendanceDigest_NotesAreLiteral verifies markdown in member
// supplied text does not change the email layout.
func TestExecuteSendAttendanceDigest_NotesAreLiteral(t *testing.T) {
	sender := emailAdapter.NewNoopSender()
	deps, _ := digestDeps(sender)
	absent := rec("r9", "m1", "2024-03-20", "prayer_[night]", attendance.StatusAbsent)
	absent.Notes = "# Sick\n- see [doctor](http://example.org) **today** <b>x</b> & 1. rest"
	deps.AttendanceStore.(*mockAttendanceStore).records[absent.ID] = absent

	_, err := ExecuteSendAttendanceDigest(context.Background(), SendAttendanceDigestInput{
		MemberID: "m1",
		Filter:   attendance.Filter{DateFrom: "2024-03-01", DateTo: "2024-03-31"},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := sender.Sent()[0]
	for _, unwanted := range []string{"<h1>Sick", "<a ", "<strong>today", "<b>", "<li>see", "<ol>"} {
		if strings.Contains(msg.HTML, unwanted) {
			t.Errorf("html contains %q: %s", unwanted, msg.HTML)
		}
	}
	wantHTML := "2024-03-20 prayer [night]: # Sick - see [doctor](http://example.org) **today** &lt;b&gt;x&lt;/b&gt; &amp; 1. rest"
	if !strings.Contains(msg.HTML, wantHTML) {
		t.Errorf("html missing literal notes %q: %s", wantHTML, msg.HTML)
	}
	wantText := "- 2024-03-20 prayer [night]: # Sick - see [doctor](http://example.org) **today** <b>x</b> & 1. rest\n"
	if !strings.Contains(msg.Text, wantText) {
		t.Errorf("text missing plain notes %q: %s", wantText, msg.Text)
	}
	if strings.Count(msg.HTML, "<h1>") != 1 {
		t.Errorf("expected exactly one heading: %s", msg.HTML)
	}
}

// TestEscapeMarkdown verifies member text is flattened and escaped.
func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain words", "plain words"},
		{"  two\n\nlines  ", "two lines"},
		{"*bold* _it_", `\*bold\* \_it\_`},
		{"[a](b)", `\[a\]\(b\)`},
		{`back\slash`, `back\\slash`},
		{"# 1. <x>", `\# 1\. \<x\>`},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q)=%q want %q", tt.in, got, tt.want)
		}
	}
}

// TestExecuteSendAttendanceDigest_EmptyWindow verifies a window without records still sends.
func TestExecuteSendAttendanceDigest_EmptyWindow(t *testing.T) {
	sender := emailAdapter.NewNoopSender()
	deps, _ := digestDeps(sender)

	res, err := ExecuteSendAttendanceDigest(context.Background(), SendAttendanceDigestInput{
		MemberID: "m1",
		Filter:   attendance.Filter{DateFrom: "2025-01-01"},
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Summary.Total != 0 || res.Summary.Rate != 0 {
		t.Errorf("summary=%+v", res.Summary)
	}
	if text := sender.Sent()[0].Text; !strings.Contains(text, "No attendance was recorded") || !strings.Contains(text, "since 2025-01-01") {
		t.Errorf("text=%s", text)
	}
}

// TestExecuteSendAttendanceDigest_Errors verifies nothing is sent on failure.
func TestExecuteSendAttendanceDigest_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input SendAttendanceDigestInput
		want  error
	}{
		{"no email", SendAttendanceDigestInput{MemberID: "m2"}, ErrMemberHasNoEmail},
		{"unknown member", SendAttendanceDigestInput{MemberID: "ghost"}, member.ErrNotFound},
		{"missing member", SendAttendanceDigestInput{}, attendance.ErrInvalidFilter},
		{"inverted range", SendAttendanceDigestInput{MemberID: "m1", Filter: attendance.Filter{DateFrom: "2024-04-01", DateTo: "2024-03-01"}}, attendance.ErrInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := emailAdapter.NewNoopSender()
			deps, _ := digestDeps(sender)
			_, err := ExecuteSendAttendanceDigest(context.Background(), tt.input, deps)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want %v", err, tt.want)
			}
			if len(sender.Sent()) != 0 {
				t.Error("expected nothing sent")
			}
		})
	}
}
