// Package classify turns raw create/remove notifications into semantic
// directory events: created, removed, moved.
//
// The notification layer reports a rename/move only as "old path removed",
// with no linkage to the destination and no ordering guarantee relative to
// the destination's own create notification. The classifier therefore never
// pairs notifications: an ambiguous remove is resolved by re-scanning the
// tree for a surviving directory with the same base name. Correctness
// depends only on the tree state at the moment the remove is processed.
package classify

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dirsentry/dirsentry/internal/registry"
	"github.com/dirsentry/dirsentry/internal/resolver"
)

// DefaultPlaceholder is the default noise-suppressed directory name: the
// name Windows Explorer gives a freshly created, not-yet-renamed folder.
// Creates and removes of a placeholder directory still update tracking
// state, they just produce no report.
const DefaultPlaceholder = "New folder"

// Classifier consumes raw notifications and produces classified events.
// It owns the known-directory registry for the life of the watch loop.
type Classifier struct {
	root        string
	reg         *registry.Registry
	res         *resolver.Resolver
	placeholder string
}

// New creates a classifier for the given watch root.
// placeholder is the squelched directory name; empty disables squelching.
func New(root string, reg *registry.Registry, res *resolver.Resolver, placeholder string) *Classifier {
	return &Classifier{
		root:        filepath.Clean(root),
		reg:         reg,
		res:         res,
		placeholder: placeholder,
	}
}

// Registry returns the classifier's known-directory set.
func (c *Classifier) Registry() *registry.Registry {
	return c.reg
}

// Run drains raw events until the channel closes or the context is
// cancelled, passing each classified event to emit in order.
func (c *Classifier) Run(ctx context.Context, events <-chan RawEvent, emit func(Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-events:
			if !ok {
				return nil
			}
			for _, ev := range c.Apply(ctx, raw) {
				emit(ev)
			}
		}
	}
}

// Apply classifies a single raw event. Each carried path is processed
// independently and in order. Classification never fails: every path ends in
// either an emitted event or a silent no-op, and registry bookkeeping always
// proceeds regardless of squelching.
func (c *Classifier) Apply(ctx context.Context, raw RawEvent) []Event {
	switch raw.Kind {
	case KindError:
		return []Event{{Type: TypeWatchError, Err: raw.Err}}
	case KindCreate:
		var out []Event
		for _, path := range raw.Paths {
			if ev, ok := c.applyCreate(path); ok {
				out = append(out, ev)
			}
		}
		return out
	case KindRemove:
		var out []Event
		for _, path := range raw.Paths {
			if ev, ok := c.applyRemove(ctx, path); ok {
				out = append(out, ev)
			}
		}
		return out
	default:
		return nil
	}
}

// applyCreate handles one created path. Only directories whose parent is the
// watch root are tracked; everything else is ignored.
func (c *Classifier) applyCreate(path string) (Event, bool) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Event{}, false
	}
	if filepath.Dir(path) != c.root {
		return Event{}, false
	}

	c.reg.Insert(path)

	if c.squelched(filepath.Base(path)) {
		return Event{}, false
	}
	return Event{Type: TypeCreated, Path: path}, true
}

// applyRemove handles one removed path. Removes for untracked paths cover
// files, nested directories, and directories never observed as top-level;
// all are ignored.
func (c *Classifier) applyRemove(ctx context.Context, path string) (Event, bool) {
	path = filepath.Clean(path)

	if !c.reg.Contains(path) {
		return Event{}, false
	}

	name := filepath.Base(path)

	if newPath, ok := c.res.FindByName(ctx, name, c.root); ok {
		c.reg.Remove(path)
		// Directories moved below top level drop out of tracking
		if filepath.Dir(newPath) == c.root {
			c.reg.Insert(newPath)
		}
		// A move is reported even for the placeholder name: it is more
		// significant than a create and is never squelched.
		return Event{Type: TypeMoved, OldName: name, NewPath: newPath}, true
	}

	c.reg.Remove(path)

	if c.squelched(name) {
		return Event{}, false
	}
	return Event{Type: TypeRemoved, Path: path}, true
}

func (c *Classifier) squelched(name string) bool {
	return c.placeholder != "" && name == c.placeholder
}
