package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dirsentry/dirsentry/internal/classify"
	senerr "github.com/dirsentry/dirsentry/internal/errors"
)

// FileReporter appends plain event lines to a log file.
type FileReporter struct {
	mu   sync.Mutex
	file *os.File
	loc  *time.Location
	now  func() time.Time
}

var _ Reporter = (*FileReporter)(nil)

// NewFile opens (or creates) the log file for appending.
func NewFile(path string, offsetHours int) (*FileReporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, senerr.Wrap(senerr.ErrCodeSinkOpen, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, senerr.Wrap(senerr.ErrCodeSinkOpen, err)
	}

	return &FileReporter{
		file: f,
		loc:  FixedOffset(offsetHours),
		now:  time.Now,
	}, nil
}

// Report appends one event line.
func (r *FileReporter) Report(ev classify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := fmt.Fprintln(r.file, FormatLine(ev, r.now().In(r.loc)))
	return err
}

// Close closes the log file.
func (r *FileReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}
