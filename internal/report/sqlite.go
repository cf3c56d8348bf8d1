package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/dirsentry/dirsentry/internal/classify"
	senerr "github.com/dirsentry/dirsentry/internal/errors"
)

// SQLiteReporter records classified events in a SQLite audit table. Only the
// emitted event stream is persisted; the known-directory set itself never
// touches disk.
type SQLiteReporter struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

var _ Reporter = (*SQLiteReporter)(nil)

// NewSQLite opens (or creates) the audit database at path.
// An empty path creates an in-memory database for testing.
func NewSQLite(path string, offsetHours int) (*SQLiteReporter, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, senerr.Wrap(senerr.ErrCodeSinkOpen, err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, senerr.Wrap(senerr.ErrCodeSinkOpen, err)
	}

	// Single writer; WAL keeps readers (ad-hoc queries) from blocking it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, senerr.Wrap(senerr.ErrCodeSinkOpen, fmt.Errorf("set pragma: %w", err))
		}
	}

	r := &SQLiteReporter{
		db:  db,
		loc: FixedOffset(offsetHours),
		now: time.Now,
	}
	if err := r.initSchema(); err != nil {
		_ = db.Close()
		return nil, senerr.Wrap(senerr.ErrCodeSinkOpen, err)
	}
	return r, nil
}

func (r *SQLiteReporter) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS events (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		ts        TEXT NOT NULL,
		type      TEXT NOT NULL,
		path      TEXT,
		old_name  TEXT,
		new_path  TEXT,
		detail    TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Report inserts one event row.
func (r *SQLiteReporter) Report(ev classify.Event) error {
	detail := ""
	if ev.Err != nil {
		detail = ev.Err.Error()
	}

	_, err := r.db.Exec(
		`INSERT INTO events (ts, type, path, old_name, new_path, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.now().In(r.loc).Format(TimeFormat),
		ev.Type.String(),
		ev.Path,
		ev.OldName,
		ev.NewPath,
		detail,
	)
	return err
}

// Count returns the number of recorded events, optionally filtered by type.
// Pass nil for all events.
func (r *SQLiteReporter) Count(eventType *classify.EventType) (int, error) {
	var (
		n   int
		err error
	)
	if eventType == nil {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE type = ?`, eventType.String()).Scan(&n)
	}
	return n, err
}

// Close closes the database.
func (r *SQLiteReporter) Close() error {
	return r.db.Close()
}
