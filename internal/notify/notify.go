// Package notify delivers raw create/remove notifications for a directory
// tree.
//
// Two backends exist: fsnotify for event-based watching, and a polling
// scanner for environments where fsnotify fails (network mounts, some
// container volumes). Both deliver the same RawEvent stream; neither
// interprets events. Write and chmod notifications are discarded here,
// before the classifier ever sees them.
//
// Delivery is best-effort and unordered across unrelated paths. The
// classifier is built to tolerate that: it never pairs a remove with a
// create.
package notify

import (
	"context"
	"time"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// Notifier delivers raw filesystem notifications for a watched tree.
type Notifier interface {
	// Start begins watching the given directory recursively.
	// It blocks until Stop is called or the context is cancelled.
	Start(ctx context.Context, path string) error

	// Stop stops the notifier and releases resources.
	// Safe to call multiple times.
	Stop() error

	// Events returns the channel of raw events.
	// The channel is closed when the notifier stops.
	Events() <-chan classify.RawEvent

	// Errors returns the channel of delivery errors.
	// Errors are non-fatal; the notifier keeps running.
	Errors() <-chan error

	// Backend reports which mechanism is delivering events
	// ("fsnotify" or "polling").
	Backend() string
}

// Options configures notifier behavior.
type Options struct {
	// PollInterval is the scan interval for the polling backend.
	// Default: 1s, matching a best-effort bounded delivery delay.
	PollInterval time.Duration

	// EventBufferSize is the size of the raw event channel buffer.
	// Default: 256
	EventBufferSize int

	// ForcePolling skips fsnotify and uses the polling backend directly.
	ForcePolling bool
}

// DefaultOptions returns the default notifier options.
func DefaultOptions() Options {
	return Options{
		PollInterval:    time.Second,
		EventBufferSize: 256,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.PollInterval == 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}

// New creates a notifier. fsnotify is tried first; if the watcher cannot be
// created the polling backend is used instead.
func New(opts Options) (Notifier, error) {
	opts = opts.WithDefaults()

	if !opts.ForcePolling {
		if n, err := newFSNotifier(opts); err == nil {
			return n, nil
		}
	}
	return newPollNotifier(opts), nil
}

// Merge folds the notifier's error channel into its event stream as
// KindError events, producing the single ordered sequence the classifier
// consumes. The returned channel closes when both source channels close or
// the context is cancelled.
func Merge(ctx context.Context, n Notifier) <-chan classify.RawEvent {
	out := make(chan classify.RawEvent)

	go func() {
		defer close(out)
		events, errs := n.Events(), n.Errors()
		for events != nil || errs != nil {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				select {
				case out <- classify.RawEvent{Kind: classify.KindError, Err: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
