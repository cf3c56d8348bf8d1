// Package report renders classified directory events to sinks.
//
// The classifier's events carry no timestamps; this package attaches wall
// clock time at render, keeping the core free of clock concerns. Sinks are
// append-only and written by a single producer, the watch loop.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// Reporter renders one classified event at a time, in classification order.
type Reporter interface {
	Report(ev classify.Event) error
	Close() error
}

// TimeFormat matches the original console output: date, time, numeric zone.
const TimeFormat = "2006-01-02 15:04:05 -0700"

// FixedOffset returns a fixed-offset location for rendering timestamps.
// offsetHours of -5 renders US-Eastern standard time, the tool's historical
// default; 0 means UTC.
func FixedOffset(offsetHours int) *time.Location {
	if offsetHours == 0 {
		return time.UTC
	}
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return time.FixedZone(name, offsetHours*3600)
}

// FormatLine renders one event as a log line with the given timestamp.
func FormatLine(ev classify.Event, ts time.Time) string {
	stamp := ts.Format(TimeFormat)
	switch ev.Type {
	case classify.TypeCreated:
		return fmt.Sprintf("New top-level directory created: %q, %s", ev.Path, stamp)
	case classify.TypeMoved:
		return fmt.Sprintf("Directory %q moved to: %q, %s", ev.OldName, ev.NewPath, stamp)
	case classify.TypeRemoved:
		return fmt.Sprintf("Directory removed: %q, %s", ev.Path, stamp)
	case classify.TypeWatchError:
		return fmt.Sprintf("Watch error: %v, %s", ev.Err, stamp)
	default:
		return fmt.Sprintf("Unknown event: %+v, %s", ev, stamp)
	}
}

// multiReporter fans each event out to every sink.
type multiReporter struct {
	sinks []Reporter
}

// Multi returns a reporter that forwards each event to all sinks.
// Errors from individual sinks are joined, not short-circuited, so one
// failing sink does not starve the others.
func Multi(sinks ...Reporter) Reporter {
	return &multiReporter{sinks: sinks}
}

func (m *multiReporter) Report(ev classify.Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Report(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiReporter) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
