package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Event Type Tests
// =============================================================================

func TestEventTypes(t *testing.T) {
	types := []EventType{
		EventBatchStarted,
		EventBatchCompleted,
		EventBatchFailed,
		EventVarResolved,
		EventVarUndefined,
		EventVarFailed,
	}

	seen := make(map[EventType]bool)
	for _, et := range types {
		if seen[et] {
			t.Errorf("duplicate event type: %s", et)
		}
		seen[et] = true
	}
}

// =============================================================================
// NopNotifier Tests
// =============================================================================

func TestNopNotifier(t *testing.T) {
	err := NopNotifier{}.Notify(context.Background(), Event{Type: EventBatchStarted})
	if err != nil {
		t.Errorf("NopNotifier.Notify() error = %v, want nil", err)
	}
}

// =============================================================================
// LogNotifier Tests
// =============================================================================

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n := NewLogNotifier(logger)
	err := n.Notify(context.Background(), Event{
		Type:      EventVarFailed,
		SessionID: "sess-123",
		Var:       "ntp_servers",
		Message:   "ambiguous variable type",
		Severity:  SeverityError,
	})
	if err != nil {
		t.Errorf("LogNotifier.Notify() error = %v", err)
	}

	output := buf.String()
	for _, want := range []string{"ambiguous variable type", "sess-123", "var=ntp_servers", "level=ERROR"} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q: %s", want, output)
		}
	}
}

func TestLogNotifier_Levels(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantLog string
	}{
		{"info", Event{Type: EventBatchStarted, Severity: SeverityInfo}, "level=INFO"},
		{"warning", Event{Type: EventBatchStarted, Severity: SeverityWarning}, "level=WARN"},
		{"error", Event{Type: EventVarFailed, Severity: SeverityError}, "level=ERROR"},
		{"resolved is debug", Event{Type: EventVarResolved, Severity: SeverityInfo}, "level=DEBUG"},
		{"undefined is debug", Event{Type: EventVarUndefined, Severity: SeverityInfo}, "level=DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			if err := NewLogNotifier(logger).Notify(context.Background(), tt.event); err != nil {
				t.Errorf("Notify() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log output = %q, want to contain %q", buf.String(), tt.wantLog)
			}
		})
	}
}

func TestLogNotifier_NilLogger(t *testing.T) {
	n := NewLogNotifier(nil)
	if n.Logger == nil {
		t.Error("NewLogNotifier should use default logger when nil")
	}
}

// =============================================================================
// WebhookNotifier Tests
// =============================================================================

func TestWebhookNotifier(t *testing.T) {
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", ct)
		}
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	event := Event{
		Type:      EventBatchCompleted,
		SessionID: "sess-123",
		Message:   "resolved 3 variables, 0 failed",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}

	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	var received Event
	if err := json.Unmarshal(receivedBody, &received); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if received.SessionID != "sess-123" {
		t.Errorf("session_id = %q, want %q", received.SessionID, "sess-123")
	}
	if received.Type != EventBatchCompleted {
		t.Errorf("type = %q, want %q", received.Type, EventBatchCompleted)
	}
}

func TestWebhookNotifier_CustomHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, map[string]string{"Authorization": "Bearer secret"})
	if err := n.Notify(context.Background(), Event{Type: EventBatchStarted}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	n.Client.RetryWaitMin = time.Millisecond
	n.Client.RetryWaitMax = 5 * time.Millisecond

	if err := n.Notify(context.Background(), Event{Type: EventVarFailed}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestWebhookNotifier_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, nil)
	err := n.Notify(context.Background(), Event{Type: EventBatchStarted})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Notify() error = %v, want status 400", err)
	}
}

func TestWebhookNotifier_NetworkError(t *testing.T) {
	n := NewWebhookNotifier("http://127.0.0.1:1/unreachable", nil)
	n.Client.RetryMax = 0

	if err := n.Notify(context.Background(), Event{Type: EventBatchStarted}); err == nil {
		t.Error("Notify() should fail for an unreachable URL")
	}
}

// =============================================================================
// MultiNotifier Tests
// =============================================================================

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiNotifier(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	m := NewMultiNotifier(a, nil, b)

	if len(m.Notifiers) != 2 {
		t.Fatalf("Notifiers = %d, want 2 (nil skipped)", len(m.Notifiers))
	}
	if err := m.Notify(context.Background(), Event{Type: EventVarResolved}); err != nil {
		t.Errorf("Notify() error = %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events = %d/%d, want 1/1", len(a.events), len(b.events))
	}
}

func TestMultiNotifier_ContinuesOnError(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	after := &recordingNotifier{}
	alsoFailing := &recordingNotifier{err: errors.New("bang")}
	m := NewMultiNotifier(failing, after, alsoFailing)

	err := m.Notify(context.Background(), Event{Type: EventVarFailed})
	if err == nil {
		t.Fatal("Notify() should return the failing notifiers' errors")
	}
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "bang") {
		t.Errorf("error = %q, want both failures", err)
	}
	if len(after.events) != 1 {
		t.Error("notifier after a failure should still be called")
	}
}

func TestOnlyTypes(t *testing.T) {
	rec := &recordingNotifier{}
	f := OnlyTypes(rec, EventBatchCompleted, EventVarFailed)

	for _, typ := range []EventType{EventBatchStarted, EventVarResolved, EventVarFailed, EventBatchCompleted} {
		if err := f.Notify(context.Background(), Event{Type: typ}); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}

	if len(rec.events) != 2 {
		t.Fatalf("forwarded %d events, want 2", len(rec.events))
	}
	if rec.events[0].Type != EventVarFailed || rec.events[1].Type != EventBatchCompleted {
		t.Errorf("forwarded %v, %v", rec.events[0].Type, rec.events[1].Type)
	}
}
