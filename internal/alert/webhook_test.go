package alert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func init() {
	DefaultSender.Interval = 10 * time.Millisecond
}

func countingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var called atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &called
}

func TestDispatchMatchesEvents(t *testing.T) {
	srv, called := countingServer(t, http.StatusOK)

	d := NewDispatcher([]AlertConfig{
		{URL: srv.URL, Format: "generic", Events: []string{EventReviewRequired}},
	}, nil)

	d.Dispatch(AlertEvent{Type: EventReviewRequired, TicketID: "review_1_abcdef12"})
	d.Wait()

	if called.Load() != 1 {
		t.Errorf("expected 1 call, got %d", called.Load())
	}
}

func TestDispatchSkipsNonMatching(t *testing.T) {
	srv, called := countingServer(t, http.StatusOK)

	d := NewDispatcher([]AlertConfig{
		{URL: srv.URL, Format: "generic", Events: []string{EventReviewRequired}},
	}, nil)

	d.Dispatch(AlertEvent{Type: EventReviewDecision, TicketID: "review_1_abcdef12", Decision: "approved"})
	d.Wait()

	if called.Load() != 0 {
		t.Errorf("expected 0 calls for non-matching event, got %d", called.Load())
	}
}

func TestDispatchMultipleWebhooks(t *testing.T) {
	srv1, called1 := countingServer(t, http.StatusOK)
	srv2, called2 := countingServer(t, http.StatusOK)

	d := NewDispatcher([]AlertConfig{
		{URL: srv1.URL, Format: "generic", Events: []string{EventReviewDecision}},
		{URL: srv2.URL, Format: "slack", Events: []string{EventReviewRequired, EventReviewDecision}},
	}, nil)

	d.Dispatch(AlertEvent{Type: EventReviewDecision, TicketID: "review_1_abcdef12", Decision: "rejected"})
	d.Wait()

	if called1.Load()+called2.Load() != 2 {
		t.Errorf("expected 2 calls (both webhooks match), got %d", called1.Load()+called2.Load())
	}
}

func TestNilDispatcherIsNoop(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(AlertEvent{Type: EventReviewRequired})
	d.Wait()
}

func TestRetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := Send(AlertConfig{URL: srv.URL, Format: "generic"}, AlertEvent{Type: EventReviewRequired})
	if err != nil {
		t.Errorf("expected success after retries, got: %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestGivesUpAfterMaxRetries(t *testing.T) {
	srv, called := countingServer(t, http.StatusBadGateway)

	err := Send(AlertConfig{URL: srv.URL}, AlertEvent{Type: EventReviewRequired})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if int(called.Load()) != DefaultSender.Attempts {
		t.Errorf("expected %d attempts, got %d", DefaultSender.Attempts, called.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	srv, called := countingServer(t, http.StatusBadRequest)

	err := Send(AlertConfig{URL: srv.URL, Format: "generic"}, AlertEvent{Type: EventReviewRequired})
	if err == nil {
		t.Error("expected error on 400, got nil")
	}
	if called.Load() != 1 {
		t.Errorf("expected 1 attempt (no retry on 4xx), got %d", called.Load())
	}
}

func TestSendsConfiguredHeaders(t *testing.T) {
	var gotAuth, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := AlertConfig{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer x"}}
	if err := Send(cfg, AlertEvent{Type: EventReviewRequired}); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer x" || gotType != "application/json" {
		t.Errorf("unexpected headers: auth=%q content-type=%q", gotAuth, gotType)
	}
}

func TestSenderSingleAttempt(t *testing.T) {
	srv, called := countingServer(t, http.StatusServiceUnavailable)

	s := &Sender{Client: srv.Client(), Attempts: 1, Interval: time.Millisecond}
	if err := s.Send(context.Background(), AlertConfig{URL: srv.URL}, AlertEvent{Type: EventReviewRequired}); err == nil {
		t.Fatal("expected error on 503")
	}
	if called.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", called.Load())
	}
}

func TestSenderStopsOnCanceledContext(t *testing.T) {
	srv, called := countingServer(t, http.StatusBadGateway)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Sender{Client: srv.Client(), Attempts: 5, Interval: time.Millisecond}
	err := s.Send(ctx, AlertConfig{URL: srv.URL}, AlertEvent{Type: EventReviewRequired})
	if err == nil {
		t.Fatal("expected error with canceled context")
	}
	if called.Load() != 0 {
		t.Errorf("expected no request to reach the server, got %d", called.Load())
	}
}

func TestSenderSetsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	if err := Send(AlertConfig{URL: srv.URL}, AlertEvent{Type: EventReviewRequired}); err != nil {
		t.Fatal(err)
	}
	if ua != userAgent {
		t.Errorf("expected User-Agent %q, got %q", userAgent, ua)
	}
}

func TestSenderInvalidURLNotRetried(t *testing.T) {
	s := &Sender{Attempts: 3, Interval: time.Hour}
	start := time.Now()
	if err := s.Send(context.Background(), AlertConfig{URL: "://bad"}, AlertEvent{Type: EventReviewRequired}); err == nil {
		t.Fatal("expected error for malformed URL")
	}
	if time.Since(start) > time.Minute {
		t.Error("malformed URL must fail without waiting for a retry")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		retryable bool
	}{
		{http.StatusOK, false, false},
		{http.StatusNoContent, false, false},
		{http.StatusBadRequest, true, false},
		{http.StatusUnauthorized, true, false},
		{http.StatusInternalServerError, true, true},
		{http.StatusBadGateway, true, true},
	}
	for _, tt := range tests {
		err := classifyStatus(tt.code)
		if (err != nil) != tt.wantErr {
			t.Errorf("classifyStatus(%d) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			continue
		}
		if got := errors.Is(err, errRetryable); got != tt.retryable {
			t.Errorf("classifyStatus(%d) retryable = %v, want %v", tt.code, got, tt.retryable)
		}
	}
}

func TestFormatGenericJSON(t *testing.T) {
	event := AlertEvent{
		Timestamp:  "2025-01-15T14:00:00.000Z",
		Type:       EventReviewRequired,
		TicketID:   "review_1736949600_abcdef12",
		Product:    "short",
		Confidence: 0.542,
		Reasons:    []string{"Material composition is missing."},
	}

	data, err := FormatPayload("generic", event)
	if err != nil {
		t.Fatal(err)
	}

	var parsed AlertEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("generic format is not valid JSON: %v", err)
	}
	if parsed.TicketID != event.TicketID {
		t.Errorf("expected ticket_id %s, got %s", event.TicketID, parsed.TicketID)
	}
	if len(parsed.Reasons) != 1 {
		t.Errorf("expected 1 reason, got %v", parsed.Reasons)
	}
}

func TestFormatSlackBlockKit(t *testing.T) {
	event := AlertEvent{
		Type:               EventReviewRequired,
		TicketID:           "review_1_abcdef12",
		Product:            "short",
		OriginCountry:      "CN",
		DestinationCountry: "US",
		Confidence:         0.54,
		Reasons:            []string{"Material composition is missing."},
	}

	data, err := FormatPayload("slack", event)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("slack format is not valid JSON: %v", err)
	}

	blocks, ok := parsed["blocks"].([]any)
	if !ok || len(blocks) < 2 {
		t.Fatalf("expected at least 2 blocks, got %v", parsed["blocks"])
	}

	header, _ := blocks[0].(map[string]any)
	if header["type"] != "header" {
		t.Errorf("expected header block, got %s", header["type"])
	}

	section, _ := blocks[1].(map[string]any)
	fields, ok := section["fields"].([]any)
	if !ok || len(fields) != 5 {
		t.Errorf("expected 5 fields in section, got %v", fields)
	}
}

func TestFormatPagerDuty(t *testing.T) {
	event := AlertEvent{
		Type:     EventReviewDecision,
		TicketID: "review_1_abcdef12",
		Decision: "rejected",
		Reviewer: "ana",
	}

	data, err := FormatPayload("pagerduty", event)
	if err != nil {
		t.Fatal(err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("pagerduty format is not valid JSON: %v", err)
	}
	if parsed["event_action"] != "trigger" {
		t.Errorf("expected event_action trigger, got %v", parsed["event_action"])
	}

	payload, ok := parsed["payload"].(map[string]any)
	if !ok {
		t.Fatal("expected payload object")
	}
	if payload["severity"] != "warning" {
		t.Errorf("expected severity warning for rejection, got %v", payload["severity"])
	}
	if payload["source"] != "tariffwatch" {
		t.Errorf("expected source tariffwatch, got %v", payload["source"])
	}
}

func TestNewDispatcherNilOnEmpty(t *testing.T) {
	if d := NewDispatcher(nil, nil); d != nil {
		t.Error("expected nil dispatcher for empty configs")
	}
	if d := NewDispatcher([]AlertConfig{}, nil); d != nil {
		t.Error("expected nil dispatcher for zero-length configs")
	}
}
