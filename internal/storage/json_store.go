package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

const jsonStoreVersion = 1

type jsonEntry struct {
	Payload   json.RawMessage `json:"payload"`
	ItemCount int             `json:"item_count"`
	SyncedAt  time.Time       `json:"synced_at"`
}

type jsonFile struct {
	Version   int                `json:"version"`
	Snapshots map[Kind]jsonEntry `json:"snapshots"`
	Log       []SyncEntry        `json:"log"`
}

// maxJSONLog bounds the history kept in the JSON file.
const maxJSONLog = 100

// JSONStore keeps snapshots in a single JSON file. It is used when the
// sqlite cache is disabled.
type JSONStore struct {
	path string

	mu   sync.Mutex
	file *jsonFile
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Init loads the file, creating an empty one if it does not exist.
func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.file = &jsonFile{Version: jsonStoreVersion, Snapshots: map[Kind]jsonEntry{}}
		return s.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	f := &jsonFile{}
	if err := sonic.Unmarshal(data, f); err != nil {
		return fmt.Errorf("failed to parse cache: %w", err)
	}
	if f.Version > jsonStoreVersion {
		return fmt.Errorf("cache version (%d) is newer than supported version (%d) - please upgrade tally", f.Version, jsonStoreVersion)
	}
	if f.Snapshots == nil {
		f.Snapshots = map[Kind]jsonEntry{}
	}
	s.file = f
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) Put(kind Kind, v interface{}, itemCount int, syncedAt time.Time) error {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s snapshot: %w", kind, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("cache not initialized")
	}
	s.file.Snapshots[kind] = jsonEntry{Payload: payload, ItemCount: itemCount, SyncedAt: syncedAt.UTC()}
	s.file.Log = append(s.file.Log, SyncEntry{Kind: kind, ItemCount: itemCount, SyncedAt: syncedAt.UTC()})
	if len(s.file.Log) > maxJSONLog {
		s.file.Log = s.file.Log[len(s.file.Log)-maxJSONLog:]
	}
	return s.saveLocked()
}

func (s *JSONStore) Get(kind Kind, v interface{}) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return time.Time{}, fmt.Errorf("cache not initialized")
	}
	entry, ok := s.file.Snapshots[kind]
	if !ok {
		return time.Time{}, ErrNoSnapshot
	}
	if err := sonic.Unmarshal(entry.Payload, v); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode %s snapshot: %w", kind, err)
	}
	return entry.SyncedAt, nil
}

func (s *JSONStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = &jsonFile{Version: jsonStoreVersion, Snapshots: map[Kind]jsonEntry{}}
	return s.saveLocked()
}

// SyncLog returns up to limit entries, newest first.
func (s *JSONStore) SyncLog(limit int) ([]SyncEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil, fmt.Errorf("cache not initialized")
	}
	var out []SyncEntry
	for i := len(s.file.Log) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, s.file.Log[i])
	}
	return out, nil
}

func (s *JSONStore) Path() string {
	return s.path
}

// saveLocked writes the file atomically through a temp file.
func (s *JSONStore) saveLocked() error {
	data, err := sonic.ConfigStd.MarshalIndent(s.file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

var _ Provider = (*JSONStore)(nil)
