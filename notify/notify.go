package notify

import (
	"context"
	"time"
)

// =============================================================================
// Notification Types
// =============================================================================

// EventType represents the type of resolution event.
type EventType string

// Event type constants.
const (
	EventBatchStarted   EventType = "batch_started"
	EventBatchCompleted EventType = "batch_completed"
	EventBatchFailed    EventType = "batch_failed"
	EventVarResolved    EventType = "var_resolved"
	EventVarUndefined   EventType = "var_undefined"
	EventVarFailed      EventType = "var_failed"
)

// Severity constants.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes one resolution event.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Var       string         `json:"var,omitempty"`
	Kind      string         `json:"kind,omitempty"` // Value kind for per-variable events
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about resolution events.
type Notifier interface {
	// Notify sends a notification. Callers log failures and carry on;
	// a notification never changes a resolution outcome.
	Notify(ctx context.Context, event Event) error
}
