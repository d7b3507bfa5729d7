package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// QueryEntry is one logged cockpit filter selection.
type QueryEntry struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Degree    string `json:"degree,omitempty"`
	Exp       string `json:"exp,omitempty"`
	City      string `json:"city,omitempty"`
	Direction string `json:"direction,omitempty"`
	CreatedAt string `json:"created_at"`
}

// QueryLog records which filter combinations visitors explore, in SQLite.
type QueryLog struct {
	db *sql.DB
}

// OpenQueryLog opens (or creates) the query log database at path.
func OpenQueryLog(path string) (*QueryLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("querylog: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS user_queries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		degree     TEXT,
		exp        TEXT,
		city       TEXT,
		direction  TEXT,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("querylog: init schema: %w", err)
	}
	return &QueryLog{db: db}, nil
}

// Close releases the underlying database handle.
func (q *QueryLog) Close() error { return q.db.Close() }

// Record stores one filter selection. CreatedAt is assigned here.
func (q *QueryLog) Record(ctx context.Context, e QueryEntry) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO user_queries (session_id, degree, exp, city, direction, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Degree, e.Exp, e.City, e.Direction, now,
	)
	if err != nil {
		return 0, fmt.Errorf("querylog: insert: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// Recent returns the total entry count and the latest limit entries,
// newest first.
func (q *QueryLog) Recent(ctx context.Context, limit int) (int, []QueryEntry, error) {
	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_queries`).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("querylog: count: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT id, session_id, degree, exp, city, direction, created_at
		 FROM user_queries ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return 0, nil, fmt.Errorf("querylog: query: %w", err)
	}
	defer rows.Close()

	entries := []QueryEntry{}
	for rows.Next() {
		var e QueryEntry
		var degree, exp, city, direction sql.NullString
		if err := rows.Scan(&e.ID, &e.SessionID, &degree, &exp, &city, &direction, &e.CreatedAt); err != nil {
			return 0, nil, fmt.Errorf("querylog: scan: %w", err)
		}
		e.Degree = degree.String
		e.Exp = exp.String
		e.City = city.String
		e.Direction = direction.String
		entries = append(entries, e)
	}
	return total, entries, rows.Err()
}
