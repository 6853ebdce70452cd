package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/tally/internal/api"
	"github.com/julianstephens/tally/internal/config"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/storage"
	"github.com/julianstephens/tally/internal/storage/sqlite"
	"github.com/julianstephens/tally/internal/store"
	"github.com/julianstephens/tally/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx     context.Context
	Config  config.Config
	Clock   utils.Clock
	API     *api.Client
	Habits  *store.HabitStore
	Content *store.ContentStore
	Profile *store.ProfileEditor
	Confirm store.Confirmer
	In      io.Reader
	Out     io.Writer

	// Cache is nil when the offline snapshot is disabled.
	Cache storage.Provider
}

// New wires the API client, the stores and the snapshot cache from cfg.
func New(ctx context.Context, cfg config.Config, confirm store.Confirmer) (*Context, error) {
	clock, err := utils.NewClock(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.APIURL,
		api.WithTokenSource(cfg.TokenSource()),
		api.WithTimeout(cfg.Timeout),
	)

	c := &Context{
		Ctx:     ctx,
		Config:  cfg,
		Clock:   clock,
		API:     client,
		Habits:  store.NewHabitStore(client, clock),
		Content: store.NewContentStore(client),
		Profile: store.NewProfileEditor(client),
		Confirm: confirm,
		In:      os.Stdin,
		Out:     os.Stdout,
	}

	cache, err := OpenCache(cfg)
	if err != nil {
		// The cache only serves offline reads; run without it.
		logger.Warn("Snapshot cache unavailable", "error", err)
	}
	c.Cache = cache
	return c, nil
}

// OpenCache opens the configured snapshot provider, or returns nil when caching is off.
func OpenCache(cfg config.Config) (storage.Provider, error) {
	path := cfg.CachePath()
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	var p storage.Provider
	if cfg.Cache == config.CacheJSON {
		p = storage.NewJSONStore(path)
	} else {
		p = sqlite.NewStore(path)
	}
	if err := p.Init(); err != nil {
		return nil, err
	}
	return p, nil
}

// Close releases the snapshot cache.
func (c *Context) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// Printf writes to the command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

func (c *Context) offline(what string, at time.Time) {
	c.Printf("⚠ Offline: showing %s cached at %s\n", what, at.In(c.Clock.Time().Location()).Format("2006-01-02 15:04"))
}

// SyncHabits refreshes habits from the API. On a transport failure the last
// cached snapshot is shown instead.
func (c *Context) SyncHabits() error {
	err := c.Habits.Refresh(c.Ctx)
	if err == nil {
		c.SaveHabits()
		return nil
	}
	if !apperrors.IsTransport(err) || c.Cache == nil {
		return err
	}
	habits, at, cacheErr := storage.LoadHabits(c.Cache)
	if cacheErr != nil {
		logger.Debug("No cached habits", "error", cacheErr)
		return err
	}
	c.Habits.Hydrate(habits)
	c.offline("habits", at)
	return nil
}

// SyncContent loads all three note collections, falling back to the cache like SyncHabits.
func (c *Context) SyncContent() error {
	err := c.Content.Load(c.Ctx)
	if err == nil {
		c.SaveContent()
		return nil
	}
	if !apperrors.IsTransport(err) || c.Cache == nil {
		return err
	}

	lists := make(map[models.Visibility][]models.ContentItem, len(models.Visibilities))
	var at time.Time
	for _, vis := range models.Visibilities {
		items, syncedAt, cacheErr := storage.LoadContent(c.Cache, vis)
		if cacheErr != nil {
			logger.Debug("No cached notes", "visibility", vis, "error", cacheErr)
			return err
		}
		lists[vis] = items
		at = syncedAt
	}
	c.Content.Hydrate(lists[models.VisibilityPublic], lists[models.VisibilityPrivate], lists[models.VisibilityDraft])
	c.offline("notes", at)
	return nil
}

// SyncProfile loads the profile, falling back to the cache like SyncHabits.
func (c *Context) SyncProfile() error {
	_, err := c.Profile.Load(c.Ctx)
	if err == nil {
		c.SaveProfile()
		return nil
	}
	if !apperrors.IsTransport(err) || c.Cache == nil {
		return err
	}
	profile, at, cacheErr := storage.LoadProfile(c.Cache)
	if cacheErr != nil {
		logger.Debug("No cached profile", "error", cacheErr)
		return err
	}
	c.Profile.Hydrate(profile)
	c.offline("profile", at)
	return nil
}

// SaveHabits writes the current habit state to the cache. Failures are logged only.
func (c *Context) SaveHabits() {
	if c.Cache == nil {
		return
	}
	if err := storage.SaveHabits(c.Cache, c.Habits.Habits(), c.Clock.Time()); err != nil {
		logger.Warn("Failed to cache habits", "error", err)
	}
}

// SaveContent writes the three note collections to the cache.
func (c *Context) SaveContent() {
	if c.Cache == nil {
		return
	}
	now := c.Clock.Time()
	lists := map[models.Visibility][]models.ContentItem{
		models.VisibilityPublic:  c.Content.Public(),
		models.VisibilityPrivate: c.Content.Private(),
		models.VisibilityDraft:   c.Content.Drafts(),
	}
	for _, vis := range models.Visibilities {
		if err := storage.SaveContent(c.Cache, vis, lists[vis], now); err != nil {
			logger.Warn("Failed to cache notes", "visibility", vis, "error", err)
		}
	}
}

// SaveProfile writes the profile to the cache.
func (c *Context) SaveProfile() {
	if c.Cache == nil {
		return
	}
	if err := storage.SaveProfile(c.Cache, c.Profile.Profile(), c.Clock.Time()); err != nil {
		logger.Warn("Failed to cache profile", "error", err)
	}
}

// ResolveHabit finds a habit by id, or by a case-insensitive name when that is unambiguous.
func (c *Context) ResolveHabit(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if h, ok := c.Habits.Habit(ref); ok {
		return h, nil
	}

	var matches []models.Habit
	for _, h := range c.Habits.Habits() {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit name %q is ambiguous, use the id", ref)
	}
}

// ResolveNote finds a note by id, or by a unique id prefix.
func (c *Context) ResolveNote(ref string) (models.ContentItem, models.Visibility, error) {
	ref = strings.TrimSpace(ref)
	if item, vis, ok := c.Content.Item(ref); ok {
		return item, vis, nil
	}

	var (
		found   models.ContentItem
		foundIn models.Visibility
		count   int
	)
	for _, vis := range models.Visibilities {
		var list []models.ContentItem
		switch vis {
		case models.VisibilityPublic:
			list = c.Content.Public()
		case models.VisibilityPrivate:
			list = c.Content.Private()
		default:
			list = c.Content.Drafts()
		}
		for _, item := range list {
			if ref != "" && strings.HasPrefix(item.ID, ref) {
				found, foundIn = item, vis
				count++
			}
		}
	}
	switch count {
	case 0:
		return models.ContentItem{}, "", fmt.Errorf("note %q: %w", ref, apperrors.ErrNotFound)
	case 1:
		return found, foundIn, nil
	default:
		return models.ContentItem{}, "", fmt.Errorf("note id prefix %q is ambiguous", ref)
	}
}
