// Package storage keeps an offline snapshot of the last synced state.
// The API stays the source of truth; snapshots are only read when it
// cannot be reached or to show something before the first sync.
package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/tally/internal/models"
)

// Kind names one cached collection.
type Kind string

const (
	KindHabits  Kind = "habits"
	KindPublic  Kind = "public"
	KindPrivate Kind = "private"
	KindDrafts  Kind = "drafts"
	KindProfile Kind = "profile"
)

// ContentKind maps a note collection to its snapshot kind.
func ContentKind(vis models.Visibility) Kind {
	switch vis {
	case models.VisibilityPrivate:
		return KindPrivate
	case models.VisibilityDraft:
		return KindDrafts
	default:
		return KindPublic
	}
}

// ErrNoSnapshot is returned by Get when nothing is cached for a kind.
var ErrNoSnapshot = errors.New("no cached snapshot")

// SyncEntry is one line of the sync history.
type SyncEntry struct {
	Kind      Kind      `json:"kind"`
	ItemCount int       `json:"item_count"`
	SyncedAt  time.Time `json:"synced_at"`
}

type Provider interface {
	// Lifecycle
	Init() error
	Close() error

	// Snapshots; v is JSON-encoded
	Put(kind Kind, v interface{}, itemCount int, syncedAt time.Time) error
	Get(kind Kind, v interface{}) (time.Time, error)
	Clear() error

	// History
	SyncLog(limit int) ([]SyncEntry, error)

	// Utils
	Path() string
}
