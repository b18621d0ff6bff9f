// Package sqlite mirrors durable samples into a SQLite database for ad-hoc
// querying. vmas only ever writes to it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/csvlog"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "metrics.db"

// Mirror appends samples to the samples table. Rows are tagged with a
// session ID that is new for each process start.
type Mirror struct {
	db        *sql.DB
	sessionID uuid.UUID
	logger    *slog.Logger
}

// Open opens (creating if needed) the database at path and migrates it. If
// logger is nil, a no-op logger is used.
func Open(path string, logger *slog.Logger) (*Mirror, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: database not responding: %w", err)
	}

	// A single writer goroutine; one connection avoids SQLITE_BUSY between
	// pooled connections.
	db.SetMaxOpenConns(1)

	if err := runMigration(db); err != nil {
		db.Close()
		return nil, err
	}

	m := &Mirror{db: db, sessionID: uuid.New(), logger: logger}
	logger.Info("sqlite mirror opened", "path", path, "session_id", m.sessionID)
	return m, nil
}

func runMigration(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY,
		session_id TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		cpu REAL NOT NULL,
		memory REAL NOT NULL,
		disk REAL NOT NULL,
		top_processes TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_samples_recorded_at ON samples(recorded_at);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("sqlite: migrate samples table: %w", err)
	}
	return nil
}

// SessionID returns the ID stamped on rows written by this Mirror.
func (m *Mirror) SessionID() uuid.UUID {
	return m.sessionID
}

// Insert stores s. The process list uses the same summary format as the
// CSV log.
func (m *Mirror) Insert(ctx context.Context, s collectors.Sample) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO samples (session_id, recorded_at, cpu, memory, disk, top_processes) VALUES (?, ?, ?, ?, ?, ?)`,
		m.sessionID.String(),
		s.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		s.CPU,
		s.Memory,
		s.Disk,
		csvlog.FormatProcessSummary(s.TopProcesses),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert sample: %w", err)
	}
	m.logger.Debug("sample mirrored", "recorded_at", s.Timestamp)
	return nil
}

// Count returns the number of rows, optionally limited to one session.
func (m *Mirror) Count(ctx context.Context, sessionID *uuid.UUID) (int64, error) {
	query := "SELECT COUNT(*) FROM samples"
	var args []any
	if sessionID != nil {
		query += " WHERE session_id = ?"
		args = append(args, sessionID.String())
	}

	var n int64
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count samples: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (m *Mirror) Close() error {
	return m.db.Close()
}
