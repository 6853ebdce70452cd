// Package sqlite is the default snapshot cache, a single sqlite file under
// the data directory.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/tally/internal/migration"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the database, creating it if needed, and applies pending migrations.
func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY
	db.SetMaxOpenConns(1)

	runner, err := newRunner(db)
	if err != nil {
		db.Close()
		return err
	}
	if _, err := runner.Apply(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	s.db = db
	return nil
}

func newRunner(db *sql.DB) (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(db, sub), nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) Put(kind storage.Kind, v interface{}, itemCount int, syncedAt time.Time) error {
	if s.db == nil {
		return fmt.Errorf("cache not initialized")
	}
	payload, err := sonic.MarshalString(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}
	at := syncedAt.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO snapshots (kind, payload, synced_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, synced_at = excluded.synced_at`,
		string(kind), payload, at)
	if err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", kind, err)
	}
	if _, err := tx.Exec(`INSERT INTO sync_log (kind, item_count, synced_at) VALUES (?, ?, ?)`, string(kind), itemCount, at); err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Get(kind storage.Kind, v interface{}) (time.Time, error) {
	if s.db == nil {
		return time.Time{}, fmt.Errorf("cache not initialized")
	}
	var payload, at string
	err := s.db.QueryRow("SELECT payload, synced_at FROM snapshots WHERE kind = ?", string(kind)).Scan(&payload, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read %s snapshot: %w", kind, err)
	}
	if err := sonic.UnmarshalString(payload, v); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode %s snapshot: %w", kind, err)
	}
	syncedAt, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s snapshot time: %w", kind, err)
	}
	return syncedAt, nil
}

func (s *Store) Clear() error {
	if s.db == nil {
		return fmt.Errorf("cache not initialized")
	}
	if _, err := s.db.Exec("DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM sync_log"); err != nil {
		return fmt.Errorf("failed to clear sync log: %w", err)
	}
	return nil
}

// SyncLog returns up to limit entries, newest first.
func (s *Store) SyncLog(limit int) ([]storage.SyncEntry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("cache not initialized")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query("SELECT kind, item_count, synced_at FROM sync_log ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync log: %w", err)
	}
	defer rows.Close()

	var out []storage.SyncEntry
	for rows.Next() {
		var kind, at string
		var e storage.SyncEntry
		if err := rows.Scan(&kind, &e.ItemCount, &at); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		e.Kind = storage.Kind(kind)
		if e.SyncedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("failed to parse sync time: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Path() string {
	return s.path
}

var _ storage.Provider = (*Store)(nil)

// SchemaVersion returns the applied migration version and fails when the
// cache was written by a newer release.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, errors.New("cache not initialized")
	}
	runner, err := newRunner(s.db)
	if err != nil {
		return 0, err
	}
	if err := runner.Validate(ctx); err != nil {
		return 0, err
	}
	return runner.CurrentVersion(ctx)
}
