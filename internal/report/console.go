package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/dirsentry/dirsentry/internal/classify"
)

// ANSI colors per event type. Moves get the loudest color since they are the
// signal this tool exists to surface.
const (
	colorReset  = "\x1b[0m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

// ConsoleReporter writes human-readable lines to a terminal or pipe.
type ConsoleReporter struct {
	w     io.Writer
	loc   *time.Location
	color bool
	now   func() time.Time
}

var _ Reporter = (*ConsoleReporter)(nil)

// NewConsole creates a console reporter writing to w with timestamps in the
// given fixed-offset zone. Color is enabled only when w is a terminal and
// NO_COLOR is unset.
func NewConsole(w io.Writer, offsetHours int) *ConsoleReporter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if os.Getenv("NO_COLOR") != "" {
		color = false
	}

	return &ConsoleReporter{
		w:     w,
		loc:   FixedOffset(offsetHours),
		color: color,
		now:   time.Now,
	}
}

// Report writes one event line.
func (c *ConsoleReporter) Report(ev classify.Event) error {
	line := FormatLine(ev, c.now().In(c.loc))
	if c.color {
		line = c.colorize(ev.Type) + line + colorReset
	}
	_, err := fmt.Fprintln(c.w, line)
	return err
}

// Close is a no-op; the console reporter does not own its writer.
func (c *ConsoleReporter) Close() error {
	return nil
}

func (c *ConsoleReporter) colorize(t classify.EventType) string {
	switch t {
	case classify.TypeCreated:
		return colorGreen
	case classify.TypeMoved:
		return colorYellow
	case classify.TypeRemoved, classify.TypeWatchError:
		return colorRed
	default:
		return ""
	}
}
