// Package resolver disambiguates raw remove notifications.
//
// A remove for a tracked top-level directory may mean true deletion or a
// rename/move that the notification layer reported only as "old path gone".
// The resolver re-scans the tree for a surviving directory with the same base
// name: a hit means the directory moved, a miss means it was deleted.
//
// The match is purely by base name and the first hit in traversal order wins.
// Directories sharing a base name, or a directory renamed while being moved,
// can therefore be misidentified; that is an accepted property of the
// heuristic, not something this package tries to repair.
package resolver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// Options bounds the recursive scan.
type Options struct {
	// FollowSymlinks descends through directory symlinks during the scan.
	// Visited directories are deduplicated by file identity so a symlink
	// cycle terminates instead of looping.
	FollowSymlinks bool

	// MaxDepth limits how deep the scan descends below the search root.
	// 0 means unbounded.
	MaxDepth int
}

// DefaultOptions returns the default scan options.
func DefaultOptions() Options {
	return Options{
		FollowSymlinks: true,
		MaxDepth:       0,
	}
}

// Resolver performs the recursive same-name search.
// It never mutates any tracking state; it only reads the tree.
type Resolver struct {
	opts Options
}

// New creates a resolver with the given options.
func New(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// FindByName returns the first directory under searchRoot whose base name
// equals name, in lexical traversal order. The search root itself is a
// candidate. Returns false if no such directory exists, the context is
// cancelled, or name is empty.
//
// Entries that cannot be read are skipped; a partial scan result is
// preferred over failing the classification step.
func (r *Resolver) FindByName(ctx context.Context, name, searchRoot string) (string, bool) {
	if name == "" {
		return "", false
	}

	root := filepath.Clean(searchRoot)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", false
	}
	if filepath.Base(root) == name {
		return root, true
	}

	visited := make(map[fileID]struct{})
	if id, ok := fileIDOf(info); ok {
		visited[id] = struct{}{}
	}
	return r.search(ctx, root, name, 1, visited)
}

// search walks dir depth-first in lexical order, checking each directory
// entry before descending into it.
func (r *Resolver) search(ctx context.Context, dir, name string, depth int, visited map[fileID]struct{}) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	default:
	}

	if r.opts.MaxDepth > 0 && depth > r.opts.MaxDepth {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false // unreadable, skip
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		if !isDir && r.opts.FollowSymlinks && entry.Type()&fs.ModeSymlink != 0 {
			// Symlinked directories count when following links
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				isDir = true
			}
		}
		if !isDir {
			continue
		}

		if entry.Name() == name {
			return path, true
		}

		if r.alreadyVisited(path, visited) {
			continue
		}
		if found, ok := r.search(ctx, path, name, depth+1, visited); ok {
			return found, true
		}
	}

	return "", false
}

// alreadyVisited records dir's file identity and reports whether it was seen
// before. Identity tracking is what keeps symlink cycles finite.
func (r *Resolver) alreadyVisited(dir string, visited map[fileID]struct{}) bool {
	info, err := os.Stat(dir)
	if err != nil {
		return true // vanished mid-scan, skip
	}
	id, ok := fileIDOf(info)
	if !ok {
		return false
	}
	if _, seen := visited[id]; seen {
		return true
	}
	visited[id] = struct{}{}
	return false
}
