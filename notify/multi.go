package notify

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// MultiNotifier fans an event out to several notifiers. Every notifier is
// called even when an earlier one fails.
type MultiNotifier struct {
	Notifiers []Notifier
}

// NewMultiNotifier creates a MultiNotifier. Nil entries are skipped.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, n := range notifiers {
		if n != nil {
			m.Notifiers = append(m.Notifiers, n)
		}
	}
	return m
}

// Notify implements Notifier. Failures are combined into one error.
func (n *MultiNotifier) Notify(ctx context.Context, event Event) error {
	var errs *multierror.Error
	for _, notifier := range n.Notifiers {
		if err := notifier.Notify(ctx, event); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// FilterNotifier forwards only the listed event types.
type FilterNotifier struct {
	Next  Notifier
	Types map[EventType]bool
}

// OnlyTypes wraps next so it sees only events of the given types.
func OnlyTypes(next Notifier, types ...EventType) *FilterNotifier {
	f := &FilterNotifier{Next: next, Types: make(map[EventType]bool, len(types))}
	for _, t := range types {
		f.Types[t] = true
	}
	return f
}

// Notify implements Notifier.
func (f *FilterNotifier) Notify(ctx context.Context, event Event) error {
	if !f.Types[event.Type] {
		return nil
	}
	return f.Next.Notify(ctx, event)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Event) error {
	return nil
}
