// Package storagetest checks that a storage.Provider behaves like the others.
package storagetest

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
)

// Run exercises providers built by newProvider for a file path.
// newProvider must not call Init; Run does.
func Run(t *testing.T, newProvider func(path string) storage.Provider) {
	t.Helper()

	open := func(t *testing.T) storage.Provider {
		p := newProvider(filepath.Join(t.TempDir(), "cache"))
		require.NoError(t, p.Init())
		t.Cleanup(func() { _ = p.Close() })
		return p
	}

	t.Run("missing snapshot", func(t *testing.T) {
		p := open(t)
		_, _, err := storage.LoadHabits(p)
		assert.True(t, errors.Is(err, storage.ErrNoSnapshot), "got %v", err)
	})

	t.Run("habits round trip", func(t *testing.T) {
		p := open(t)
		at := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)
		habits := []models.Habit{{
			ID: "h1", Name: "Read", Color: "#3b82f6", IsActive: true,
			CreatedAt:     time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			Completions:   []models.Completion{{Date: "2025-01-01"}, {Date: "2025-01-02"}},
			CurrentStreak: 2, BestStreak: 7, TotalCompletions: 30,
		}}
		require.NoError(t, storage.SaveHabits(p, habits, at))

		got, syncedAt, err := storage.LoadHabits(p)
		require.NoError(t, err)
		assert.Equal(t, habits, got)
		assert.True(t, at.Equal(syncedAt))
	})

	t.Run("content kinds are separate", func(t *testing.T) {
		p := open(t)
		at := time.Now()
		require.NoError(t, storage.SaveContent(p, models.VisibilityPublic, []models.ContentItem{{ID: "p1", Title: "hello"}}, at))
		require.NoError(t, storage.SaveContent(p, models.VisibilityDraft, []models.ContentItem{{ID: "d1", IsDraft: true, Labels: []string{"idea"}}}, at))

		public, _, err := storage.LoadContent(p, models.VisibilityPublic)
		require.NoError(t, err)
		require.Len(t, public, 1)
		assert.Equal(t, "hello", public[0].Title)

		drafts, _, err := storage.LoadContent(p, models.VisibilityDraft)
		require.NoError(t, err)
		assert.Equal(t, []string{"idea"}, drafts[0].Labels)

		_, _, err = storage.LoadContent(p, models.VisibilityPrivate)
		assert.ErrorIs(t, err, storage.ErrNoSnapshot)
	})

	t.Run("put replaces", func(t *testing.T) {
		p := open(t)
		first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		second := first.Add(time.Hour)
		avatar := "/uploads/a.png"
		require.NoError(t, storage.SaveProfile(p, models.Profile{ID: "u1", Name: "Ada"}, first))
		require.NoError(t, storage.SaveProfile(p, models.Profile{ID: "u1", Name: "Grace", AvatarURL: &avatar}, second))

		got, at, err := storage.LoadProfile(p)
		require.NoError(t, err)
		assert.Equal(t, "Grace", got.Name)
		require.NotNil(t, got.AvatarURL)
		assert.Equal(t, avatar, *got.AvatarURL)
		assert.True(t, second.Equal(at))

		log, err := p.SyncLog(0)
		require.NoError(t, err)
		require.Len(t, log, 2)
		assert.True(t, second.Equal(log[0].SyncedAt), "newest first")

		log, err = p.SyncLog(1)
		require.NoError(t, err)
		assert.Len(t, log, 1)
	})

	t.Run("clear", func(t *testing.T) {
		p := open(t)
		require.NoError(t, storage.SaveHabits(p, nil, time.Now()))
		require.NoError(t, p.Clear())
		_, _, err := storage.LoadHabits(p)
		assert.ErrorIs(t, err, storage.ErrNoSnapshot)
		log, err := p.SyncLog(0)
		require.NoError(t, err)
		assert.Empty(t, log)
	})

	t.Run("survives reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache")
		p := newProvider(path)
		require.NoError(t, p.Init())
		require.NoError(t, storage.SaveHabits(p, []models.Habit{{ID: "h1"}}, time.Now()))
		require.NoError(t, p.Close())

		again := newProvider(path)
		require.NoError(t, again.Init())
		defer again.Close()
		got, _, err := storage.LoadHabits(again)
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, path, again.Path())
	})
}
