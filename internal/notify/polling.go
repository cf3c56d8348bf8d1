package notify

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// PollNotifier detects creates and removes by periodically scanning the tree
// and diffing against the previous snapshot. Used when fsnotify is
// unavailable. Modifications are invisible to it on purpose: the classifier
// has no use for them.
type PollNotifier struct {
	interval time.Duration
	state    map[string]struct{}
	events   chan classify.RawEvent
	errors   chan error
	stopCh   chan struct{}
	rootPath string
	mu       sync.RWMutex
	stopped  bool
}

var _ Notifier = (*PollNotifier)(nil)

// newPollNotifier creates a polling notifier with the given options.
func newPollNotifier(opts Options) *PollNotifier {
	return &PollNotifier{
		interval: opts.PollInterval,
		state:    make(map[string]struct{}),
		events:   make(chan classify.RawEvent, opts.EventBufferSize),
		errors:   make(chan error, 10),
		stopCh:   make(chan struct{}),
	}
}

// Start establishes a baseline snapshot and then diffs on each tick.
func (p *PollNotifier) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	p.rootPath = absPath

	// Baseline: everything present now is already known, not "created"
	state, err := p.snapshot()
	if err != nil {
		return fmt.Errorf("perform initial scan: %w", err)
	}
	p.state = state

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			if err := p.detectChanges(); err != nil {
				p.emitError(err)
			}
		}
	}
}

// snapshot walks the tree and records every path, files included.
// Unreadable entries are skipped.
func (p *PollNotifier) snapshot() (map[string]struct{}, error) {
	state := make(map[string]struct{})
	err := filepath.WalkDir(p.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == p.rootPath {
			return nil
		}
		state[path] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", p.rootPath, err)
	}
	return state, nil
}

// detectChanges diffs the current tree against the previous snapshot and
// emits creates for new paths, then removes for vanished ones.
func (p *PollNotifier) detectChanges() error {
	current, err := p.snapshot()
	if err != nil {
		return err
	}

	for path := range current {
		if _, known := p.state[path]; !known {
			p.emit(classify.RawEvent{Kind: classify.KindCreate, Paths: []string{path}})
		}
	}
	for path := range p.state {
		if _, present := current[path]; !present {
			p.emit(classify.RawEvent{Kind: classify.KindRemove, Paths: []string{path}})
		}
	}

	p.state = current
	return nil
}

// emit sends a raw event, dropping it if the buffer is full.
// The read lock is held across the send so Stop cannot close the channel
// mid-send.
func (p *PollNotifier) emit(ev classify.RawEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return
	}

	select {
	case p.events <- ev:
	default:
		slog.Warn("poll event buffer full, dropping event",
			slog.String("kind", ev.Kind.String()),
			slog.Int("paths", len(ev.Paths)))
	}
}

// emitError sends a scan error, dropping it if the buffer is full.
func (p *PollNotifier) emitError(err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return
	}

	select {
	case p.errors <- err:
	default:
	}
}

// Stop stops the notifier and closes its channels.
func (p *PollNotifier) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	close(p.errors)
	return nil
}

// Events returns the raw event channel.
func (p *PollNotifier) Events() <-chan classify.RawEvent {
	return p.events
}

// Errors returns the scan error channel.
func (p *PollNotifier) Errors() <-chan error {
	return p.errors
}

// Backend reports the watch mechanism.
func (p *PollNotifier) Backend() string {
	return "polling"
}
