// Package backup keeps timestamped copies of the offline snapshot cache so a
// cleared or damaged cache can be rolled back.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// MaxBackups is how many copies are retained after a new one is taken.
	MaxBackups = 7
	// DirName is created next to the cache file.
	DirName = "backups"
	// FilePrefix starts every backup file name.
	FilePrefix = "tally-cache-"

	stampLayout = "20060102-150405"
)

var ErrNoCache = errors.New("no cache file to back up")

// Info describes one backup on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager backs up a single cache file. The suffix of the cache path decides
// how copies are taken: .db files go through sqlite, anything else is copied.
type Manager struct {
	cachePath string
	dir       string
	suffix    string
	now       func() time.Time
}

func NewManager(cachePath string, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		cachePath: cachePath,
		dir:       filepath.Join(filepath.Dir(cachePath), DirName),
		suffix:    filepath.Ext(cachePath),
		now:       now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

func (m *Manager) isSQLite() bool {
	return m.suffix == ".db"
}

// Create copies the cache into the backup directory and prunes old copies.
func (m *Manager) Create() (Info, error) {
	return m.create(true)
}

func (m *Manager) create(rotate bool) (Info, error) {
	if _, err := os.Stat(m.cachePath); errors.Is(err, os.ErrNotExist) {
		return Info{}, ErrNoCache
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := m.now().UTC()
	path, err := m.uniquePath(stamp)
	if err != nil {
		return Info{}, err
	}

	if m.isSQLite() {
		err = vacuumInto(m.cachePath, path)
	} else {
		err = copyFile(m.cachePath, path)
	}
	if err != nil {
		return Info{}, fmt.Errorf("failed to back up cache: %w", err)
	}

	if rotate {
		if err := m.rotate(); err != nil {
			return Info{}, err
		}
	}

	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: path, Timestamp: stamp.Truncate(time.Second), Size: fi.Size()}, nil
}

func (m *Manager) uniquePath(stamp time.Time) (string, error) {
	base := FilePrefix + stamp.Format(stampLayout)
	path := filepath.Join(m.dir, base+m.suffix)
	for i := 1; fileExists(path); i++ {
		if i > 100 {
			return "", errors.New("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s-%d%s", base, i, m.suffix))
	}
	return path, nil
}

// List returns backups newest first. A missing directory yields no backups.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, m.suffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), m.suffix)
		// Drop the collision counter
		if len(stamp) > len(stampLayout) {
			stamp = stamp[:len(stampLayout)]
		}
		ts, err := time.Parse(stampLayout, stamp)
		if err != nil {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{Path: filepath.Join(m.dir, name), Timestamp: ts, Size: fi.Size()})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			// Higher collision counters are newer
			a, b := backups[i].Path, backups[j].Path
			if len(a) != len(b) {
				return len(a) > len(b)
			}
			return a > b
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the cache with the given backup. The cache must be closed.
// The current cache is backed up first without pruning, and its Info is returned.
func (m *Manager) Restore(path string) (Info, error) {
	if !fileExists(path) {
		return Info{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	if m.isSQLite() {
		if err := verify(path); err != nil {
			return Info{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
		}
	}

	var saved Info
	if fileExists(m.cachePath) {
		var err error
		if saved, err = m.create(false); err != nil {
			return Info{}, fmt.Errorf("failed to back up current cache before restore: %w", err)
		}
	}

	tmp := m.cachePath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.cachePath); err != nil {
		_ = os.Remove(tmp)
		return Info{}, fmt.Errorf("failed to restore cache: %w", err)
	}
	return saved, nil
}

// Latest returns the newest backup.
func (m *Manager) Latest() (Info, error) {
	backups, err := m.List()
	if err != nil {
		return Info{}, err
	}
	if len(backups) == 0 {
		return Info{}, errors.New("no backups found")
	}
	return backups[0], nil
}

func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := pingSchema(db); err != nil {
		return fmt.Errorf("cache database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		db.Close()
		return copyFile(src, dst)
	}
	return nil
}

func verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	return pingSchema(db)
}

func pingSchema(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
