// Package notify reports resolution events.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: A batch or per-variable resolution event
//   - EventType: Type of event (batch started, variable failed, etc.)
//
// Implementations:
//   - LogNotifier: Logs events through slog
//   - WebhookNotifier: POSTs events as JSON, retrying transient failures
//   - MultiNotifier: Fans out to several notifiers, combining failures
//   - FilterNotifier: Forwards only selected event types (see OnlyTypes)
//   - NopNotifier: Discards events
//
// Example usage:
//
//	notifier := notify.NewMultiNotifier(
//	    notify.NewLogNotifier(logger),
//	    notify.NewWebhookNotifier("https://ci.example.com/hooks/hiera", nil),
//	)
//	err := notifier.Notify(ctx, notify.Event{
//	    Type:     notify.EventVarFailed,
//	    Var:      "ntp_servers",
//	    Severity: notify.SeverityError,
//	})
package notify
