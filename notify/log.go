package notify

import (
	"context"
	"log/slog"
)

// =============================================================================
// LogNotifier
// =============================================================================

// LogNotifier logs events through slog. Per-variable successes log at
// debug so a normal run stays quiet.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs to the given logger.
// If logger is nil, uses the default slog logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	level := slog.LevelInfo
	switch {
	case event.Severity == SeverityError:
		level = slog.LevelError
	case event.Severity == SeverityWarning:
		level = slog.LevelWarn
	case event.Type == EventVarResolved || event.Type == EventVarUndefined:
		level = slog.LevelDebug
	}

	attrs := []any{"type", event.Type, "session", event.SessionID}
	if event.Var != "" {
		attrs = append(attrs, "var", event.Var)
	}
	if event.Kind != "" {
		attrs = append(attrs, "kind", event.Kind)
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, "metadata", event.Metadata)
	}
	n.Logger.Log(ctx, level, event.Message, attrs...)
	return nil
}
