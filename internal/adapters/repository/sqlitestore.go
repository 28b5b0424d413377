package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the durable record store. It is not consulted for live
// ranking; the memory index is authoritative, and this store exists to
// reload it across restarts. Ordering falls out of the composite key: the
// primary key (partition, sort_key) gives ascending range scans the same
// order as the index.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leaderboard_records (
	partition    TEXT NOT NULL,
	sort_key     TEXT NOT NULL,
	id           TEXT NOT NULL,
	display_name TEXT NOT NULL,
	average_ms   REAL NOT NULL,
	submitted_at INTEGER NOT NULL,
	PRIMARY KEY (partition, sort_key)
)`

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create leaderboard schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Insert implements Store.Insert. Replays after a crash are absorbed by
// the primary key, so persisting the same record twice is harmless.
func (s *SQLiteStore) Insert(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO leaderboard_records
		 (partition, sort_key, id, display_name, average_ms, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Partition, rec.SortKey, rec.ID, rec.DisplayName, rec.AverageMs,
		rec.SubmittedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

// CountBefore implements Store.CountBefore with a range count on the
// primary key.
func (s *SQLiteStore) CountBefore(ctx context.Context, partition, sortKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard_records WHERE partition = ? AND sort_key < ?`,
		partition, sortKey,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records before key: %w", err)
	}
	return n, nil
}

// TopN implements Store.TopN with an ascending key-range scan.
func (s *SQLiteStore) TopN(ctx context.Context, partition string, n int) ([]Record, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT partition, sort_key, id, display_name, average_ms, submitted_at
		 FROM leaderboard_records WHERE partition = ? ORDER BY sort_key ASC LIMIT ?`,
		partition, n,
	)
	if err != nil {
		return nil, fmt.Errorf("query top records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Count implements Store.Count.
func (s *SQLiteStore) Count(ctx context.Context, partition string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard_records WHERE partition = ?`, partition,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count partition records: %w", err)
	}
	return n, nil
}

// Available reports whether the database answers a ping.
func (s *SQLiteStore) Available(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// All streams every stored record in (partition, sort_key) order. Used to
// rebuild the memory index at startup.
func (s *SQLiteStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT partition, sort_key, id, display_name, average_ms, submitted_at
		 FROM leaderboard_records ORDER BY partition, sort_key ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query all records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var submittedNanos int64
		err := rows.Scan(&rec.Partition, &rec.SortKey, &rec.ID, &rec.DisplayName,
			&rec.AverageMs, &submittedNanos)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.SubmittedAt = time.Unix(0, submittedNanos).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
