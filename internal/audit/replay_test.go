package audit

import (
	"path/filepath"
	"testing"
	"time"
)

type classificationFields struct {
	Response struct {
		RequiresHumanReview bool    `json:"requires_human_review"`
		ReviewTicketID      *string `json:"review_ticket_id"`
	} `json:"response"`
}

func classificationPayload(ticketID string) classificationFields {
	var p classificationFields
	if ticketID != "" {
		p.Response.RequiresHumanReview = true
		p.Response.ReviewTicketID = &ticketID
	}
	return p
}

// writeTestLog creates a temp audit log with known events for testing.
func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit_trail.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)
	step := 0
	l.now = func() time.Time {
		ts := base.Add(time.Duration(step) * 2 * time.Second)
		step++
		return ts
	}

	appends := []struct {
		eventType string
		payload   any
	}{
		{EventClassification, classificationPayload("")},
		{EventClassification, classificationPayload("review_1_aaaaaaaa")},
		{EventClassification, classificationPayload("review_2_bbbbbbbb")},
		{EventReviewDecision, map[string]string{"review_id": "review_1_aaaaaaaa", "decision": "approved", "reviewer": "ana"}},
		{EventReviewDecision, map[string]string{"review_id": "review_2_bbbbbbbb", "decision": "rejected", "reviewer": "ben"}},
	}
	for _, a := range appends {
		if _, err := l.Append(a.eventType, a.payload); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func TestReplayAll(t *testing.T) {
	path := writeTestLog(t)

	result, err := Replay(path, ReplayFilter{})
	if err != nil {
		t.Fatal(err)
	}
	s := result.Summary
	if s.Total != 5 || s.Classifications != 3 || s.ReviewRequired != 2 || s.Approved != 1 || s.Rejected != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.FirstTimestamp != "2025-01-15T14:00:00.000Z" {
		t.Errorf("unexpected first timestamp %s", s.FirstTimestamp)
	}
	if s.LastTimestamp != "2025-01-15T14:00:08.000Z" {
		t.Errorf("unexpected last timestamp %s", s.LastTimestamp)
	}
}

func TestReplayFiltersByTicket(t *testing.T) {
	path := writeTestLog(t)

	result, err := Replay(path, ReplayFilter{TicketID: "review_1_aaaaaaaa"})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected classification + decision for ticket, got %d", len(result.Events))
	}
	if result.Events[0].EventType != EventClassification || result.Events[1].EventType != EventReviewDecision {
		t.Errorf("unexpected event order: %s, %s", result.Events[0].EventType, result.Events[1].EventType)
	}
}

func TestReplayFiltersByEventType(t *testing.T) {
	path := writeTestLog(t)

	result, err := Replay(path, ReplayFilter{EventType: EventReviewDecision})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Events) != 2 {
		t.Errorf("expected 2 decisions, got %d", len(result.Events))
	}
}

func TestReplayTimeRange(t *testing.T) {
	path := writeTestLog(t)

	from := time.Date(2025, 1, 15, 14, 0, 3, 0, time.UTC)
	to := time.Date(2025, 1, 15, 14, 0, 7, 0, time.UTC)
	result, err := Replay(path, ReplayFilter{From: from, To: to})
	if err != nil {
		t.Fatal(err)
	}
	// Events at :04 and :06
	if len(result.Events) != 2 {
		t.Errorf("expected 2 events in range, got %d", len(result.Events))
	}
}

func TestReplayMissingFile(t *testing.T) {
	result, err := Replay(filepath.Join(t.TempDir(), "missing.jsonl"), ReplayFilter{})
	if err != nil {
		t.Fatalf("expected missing log to replay as empty, got %v", err)
	}
	if len(result.Events) != 0 {
		t.Errorf("expected no events, got %d", len(result.Events))
	}
}
