// Package history keeps a bounded in-memory record of classified events for
// the shutdown summary. It is purely observational: the classifier never
// reads it, and nothing here persists.
package history

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// DefaultCapacity is the default number of recent events retained.
const DefaultCapacity = 128

// Entry is one recorded event with its arrival time and sequence number.
type Entry struct {
	Seq   uint64
	Time  time.Time
	Event classify.Event
}

// Log records classified events, keeping only the most recent ones.
// Counts are kept for the whole session regardless of eviction.
type Log struct {
	mu     sync.Mutex
	recent *lru.Cache[uint64, Entry]
	seq    uint64
	counts map[classify.EventType]int
	now    func() time.Time
}

// New creates a log retaining up to capacity recent events.
// A capacity below 1 uses DefaultCapacity.
func New(capacity int) (*Log, error) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[uint64, Entry](capacity)
	if err != nil {
		return nil, err
	}
	return &Log{
		recent: cache,
		counts: make(map[classify.EventType]int),
		now:    time.Now,
	}, nil
}

// Record adds one event.
func (l *Log) Record(ev classify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	l.counts[ev.Type]++
	l.recent.Add(l.seq, Entry{Seq: l.seq, Time: l.now(), Event: ev})
}

// Recent returns retained entries, oldest first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := l.recent.Keys() // oldest to newest
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if entry, ok := l.recent.Peek(k); ok {
			out = append(out, entry)
		}
	}
	return out
}

// Count returns how many events of the given type were recorded in total,
// including evicted ones.
func (l *Log) Count(t classify.EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[t]
}

// Total returns the total number of recorded events.
func (l *Log) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int(l.seq)
}
