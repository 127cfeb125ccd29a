package kv

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// DatabaseFile is the SQLite file created inside the data directory.
const DatabaseFile = "docshelf.db"

// SQLiteStore keeps all keys in one SQLite table. The capacity check and
// the write run in one transaction, so a rejected write changes nothing.
type SQLiteStore struct {
	db       *sql.DB
	quota    int64
	interval time.Duration

	closeOnce sync.Once
	closeErr  error
}

// OpenSQLiteStore opens (or creates) dataDir/docshelf.db. interval is how
// often Watch polls for commits made by other processes.
func OpenSQLiteStore(dataDir string, quota int64, interval time.Duration) (*SQLiteStore, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return nil, err
	}
	// One pinned connection: PRAGMA data_version only moves for commits
	// made by other connections, which is exactly the external-change test.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &SQLiteStore{db: db, quota: quota, interval: interval}, nil
}

func (s *SQLiteStore) Read(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Write(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write %s: begin: %w", key, err)
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var used, oldSize int64
		err := tx.QueryRow(
			`SELECT COALESCE(SUM(CASE WHEN key <> ? THEN length(key) + length(value) END), 0),
			        COALESCE(SUM(CASE WHEN key = ? THEN length(key) + length(value) END), 0)
			   FROM kv`, key, key,
		).Scan(&used, &oldSize)
		if err != nil {
			return fmt.Errorf("write %s: usage: %w", key, err)
		}
		size := entrySize(key, value)
		need := used + size
		if exceeds(s.quota, need, oldSize, size) {
			return fullError(key, need, s.quota)
		}
	}

	_, err = tx.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write %s: commit: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Usage() (int64, error) {
	var used int64
	err := s.db.QueryRow("SELECT COALESCE(SUM(length(key) + length(value)), 0) FROM kv").Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("usage: %w", err)
	}
	return used, nil
}

func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// Watch polls PRAGMA data_version and calls fn with an empty key whenever
// another connection has committed. SQLite does not say which key moved.
func (s *SQLiteStore) Watch(ctx context.Context, fn func(key string)) error {
	version, err := s.dataVersion(ctx)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v, err := s.dataVersion(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if v != version {
				version = v
				fn("")
			}
		}
	}
}

func (s *SQLiteStore) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("data version: %w", err)
	}
	return v, nil
}
