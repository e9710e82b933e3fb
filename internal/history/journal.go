// Package history keeps a SQLite journal of launch attempts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the journal database inside the data directory.
const FileName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS launches (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id   TEXT    NOT NULL,
    path      TEXT    NOT NULL,
    kind      TEXT    NOT NULL,
    opened_at INTEGER NOT NULL,
    ok        INTEGER NOT NULL,
    error     TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS launches_opened_at ON launches (opened_at DESC);
`

// Entry is one recorded launch attempt.
type Entry struct {
	ID       int64     `json:"id"`
	ItemID   string    `json:"itemId"`
	Path     string    `json:"path"`
	Kind     string    `json:"kind"`
	OpenedAt time.Time `json:"openedAt"`
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
}

// Journal is the launch history. A nil *Journal is a valid disabled journal:
// every method is a no-op.
type Journal struct {
	db      *sql.DB
	maxRows int
}

// Open opens or creates the journal at path. maxRows > 0 bounds the table;
// older rows are pruned as new ones arrive.
func Open(path string, maxRows int) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(2000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// One writer; SQLite serialises anyway and this avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Journal{db: db, maxRows: maxRows}, nil
}

// Record appends e. OpenedAt defaults to now.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}
	if e.OpenedAt.IsZero() {
		e.OpenedAt = time.Now()
	}
	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO launches (item_id, path, kind, opened_at, ok, error) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ItemID, e.Path, e.Kind, e.OpenedAt.UnixMilli(), ok, e.Error)
	if err != nil {
		return fmt.Errorf("record launch: %w", err)
	}
	if j.maxRows > 0 {
		if _, err := j.Prune(ctx, j.maxRows); err != nil {
			slog.Warn("[WARN-HISTORY] prune after insert failed", "error", err)
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if j == nil {
		return []Entry{}, nil
	}
	if limit <= 0 {
		return []Entry{}, nil
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, item_id, path, kind, opened_at, ok, error
		   FROM launches
		  ORDER BY opened_at DESC, id DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e        Entry
			openedAt int64
			ok       int
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &e.Path, &e.Kind, &openedAt, &ok, &e.Error); err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		e.OpenedAt = time.UnixMilli(openedAt)
		e.OK = ok != 0
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launches: %w", err)
	}
	return out, nil
}

// Prune keeps the newest keep rows and reports how many were deleted.
func (j *Journal) Prune(ctx context.Context, keep int) (int64, error) {
	if j == nil {
		return 0, nil
	}
	if keep < 0 {
		return 0, errors.New("keep must not be negative")
	}
	res, err := j.db.ExecContext(ctx,
		`DELETE FROM launches
		  WHERE id NOT IN (SELECT id FROM launches ORDER BY opened_at DESC, id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune launches: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.db.Close()
}
