package notify

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// FSNotifier delivers raw events from fsnotify, watching every directory in
// the tree. New directories are added to the watch list as they appear.
type FSNotifier struct {
	watcher  *fsnotify.Watcher
	events   chan classify.RawEvent
	errors   chan error
	stopCh   chan struct{}
	rootPath string
	mu       sync.RWMutex
	stopped  bool
}

var _ Notifier = (*FSNotifier)(nil)

// newFSNotifier creates the fsnotify-backed notifier.
func newFSNotifier(opts Options) (*FSNotifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &FSNotifier{
		watcher: w,
		events:  make(chan classify.RawEvent, opts.EventBufferSize),
		errors:  make(chan error, 10),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching path recursively and blocks draining fsnotify.
func (n *FSNotifier) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	n.rootPath = absPath

	if err := n.addRecursive(absPath); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = n.Stop()
			return ctx.Err()
		case <-n.stopCh:
			return nil
		case event, ok := <-n.watcher.Events:
			if !ok {
				return nil
			}
			n.handleEvent(event)
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return nil
			}
			n.emitError(err)
		}
	}
}

// handleEvent maps one fsnotify event to a raw event.
// Renames arrive as "old path gone", which is exactly a remove here; the
// classifier resolves where the directory went. Writes and chmods never
// reach the classifier.
func (n *FSNotifier) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Create != 0:
		// Watch newly created directories so their children report too
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := n.watcher.Add(event.Name); err != nil {
				n.emitError(err)
			}
		}
		n.emit(classify.RawEvent{Kind: classify.KindCreate, Paths: []string{event.Name}})
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		n.emit(classify.RawEvent{Kind: classify.KindRemove, Paths: []string{event.Name}})
	}
}

// addRecursive adds all directories under root to the watch list.
// Unreadable directories are skipped.
func (n *FSNotifier) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := n.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			slog.Warn("failed to watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		return nil
	})
}

// emit sends a raw event, dropping it if the buffer is full.
// The read lock is held across the send so Stop cannot close the channel
// mid-send.
func (n *FSNotifier) emit(ev classify.RawEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return
	}

	select {
	case n.events <- ev:
	default:
		slog.Warn("raw event buffer full, dropping event",
			slog.String("kind", ev.Kind.String()),
			slog.Int("paths", len(ev.Paths)))
	}
}

// emitError sends an error, dropping it if the buffer is full.
func (n *FSNotifier) emitError(err error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return
	}

	select {
	case n.errors <- err:
	default:
	}
}

// Stop stops the notifier and closes its channels.
func (n *FSNotifier) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.stopped {
		return nil
	}
	n.stopped = true
	close(n.stopCh)
	_ = n.watcher.Close()
	close(n.events)
	close(n.errors)
	return nil
}

// Events returns the raw event channel.
func (n *FSNotifier) Events() <-chan classify.RawEvent {
	return n.events
}

// Errors returns the delivery error channel.
func (n *FSNotifier) Errors() <-chan error {
	return n.errors
}

// Backend reports the watch mechanism.
func (n *FSNotifier) Backend() string {
	return "fsnotify"
}
