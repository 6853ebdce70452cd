// Package store holds the session's habits, notes and profile, and keeps
// them in step with the API.
//
// Stores never change local state before the API has accepted a mutation.
// Responses that arrive after the caller's context is done are dropped.
package store

import (
	"context"
	"strings"
	"sync"

	"github.com/julianstephens/tally/internal/async"
	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/projection"
	"github.com/julianstephens/tally/internal/utils"
	"github.com/julianstephens/tally/internal/validation"
)

// HabitBackend is the part of the API the HabitStore uses.
type HabitBackend interface {
	ListHabits(ctx context.Context) ([]models.Habit, error)
	CreateHabit(ctx context.Context, def models.HabitDefinition) (models.Habit, error)
	UpdateHabit(ctx context.Context, id string, def models.HabitDefinition) (models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, id, day string) (models.ToggleResult, error)
}

var habitMessages = validation.Messages{
	"name.required":   "Habit name is required",
	"name.max":        "Habit name must be 100 characters or less",
	"description.max": "Description must be 500 characters or less",
	"color.hexcolor":  "Color must be a hex color like #3b82f6",
	"color.required":  "Color is required",
}

// HabitStore owns the habit collection.
//
// Every toggle, edit or delete takes a per-habit sequence token; a response
// is merged only while its token is still the newest for that habit. Each
// Refresh takes a generation number, and a refresh older than the last
// applied one is discarded.
type HabitStore struct {
	backend HabitBackend
	clock   utils.Clock

	seq async.Sequencer

	mu         sync.RWMutex
	habits     []models.Habit
	refreshGen uint64
	appliedGen uint64
}

// NewHabitStore creates an empty store. clock decides what "today" is.
func NewHabitStore(backend HabitBackend, clock utils.Clock) *HabitStore {
	return &HabitStore{backend: backend, clock: clock}
}

// Today returns the current day key in the store's time zone.
func (s *HabitStore) Today() string {
	return s.clock.Today()
}

// Hydrate replaces the collection with cached habits.
func (s *HabitStore) Hydrate(habits []models.Habit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = normalizeHabits(habits)
}

// Habits returns a copy of the collection in store order.
func (s *HabitStore) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Habit, len(s.habits))
	for i, h := range s.habits {
		out[i] = h.Clone()
	}
	return out
}

// Habit returns a copy of one habit.
func (s *HabitStore) Habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.habits[i].Clone(), true
	}
	return models.Habit{}, false
}

// TodaysChecklist projects the active habits with today's completion state.
func (s *HabitStore) TodaysChecklist() []projection.ChecklistItem {
	return projection.Checklist(s.Habits(), s.clock.Today())
}

// Refresh reloads the collection from the API.
// Habits that were mutated while the request was in flight keep their local state.
func (s *HabitStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshGen++
	gen := s.refreshGen
	s.mu.Unlock()
	issued := s.seq.Snapshot()

	fetched, err := s.backend.ListHabits(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		logger.Debug("Dropping habit refresh for cancelled caller", "generation", gen)
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.appliedGen {
		logger.Debug("Discarding stale habit refresh", "generation", gen, "applied", s.appliedGen)
		return nil
	}
	s.appliedGen = gen

	moved := func(id string) bool { return s.seq.Current(id) != issued[id] }

	fetched = normalizeHabits(fetched)
	inFetched := make(map[string]bool, len(fetched))
	for _, h := range fetched {
		inFetched[h.ID] = true
	}

	merged := make([]models.Habit, 0, len(fetched))
	// Habits created during the refresh are not in its answer yet
	for _, h := range s.habits {
		if !inFetched[h.ID] && moved(h.ID) {
			merged = append(merged, h)
		}
	}
	for _, h := range fetched {
		if !moved(h.ID) {
			merged = append(merged, h)
			continue
		}
		if i := s.indexLocked(h.ID); i >= 0 {
			merged = append(merged, s.habits[i])
		}
	}
	s.habits = merged
	return nil
}

// CreateHabit validates def, creates the habit and prepends it to the collection.
func (s *HabitStore) CreateHabit(ctx context.Context, def models.HabitDefinition) (models.Habit, error) {
	def, err := normalizeDefinition(def)
	if err != nil {
		return models.Habit{}, err
	}
	h, err := s.backend.CreateHabit(ctx, def)
	if err != nil {
		return models.Habit{}, err
	}
	if ctx.Err() != nil {
		return h, ctx.Err()
	}
	h.Normalize()

	// Mark the id as moved so an in-flight refresh keeps it
	s.seq.Next(h.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(h.ID); i >= 0 {
		s.habits = append(s.habits[:i], s.habits[i+1:]...)
	}
	s.habits = append([]models.Habit{h.Clone()}, s.habits...)
	logger.Debug("Created habit", "id", h.ID, "name", h.Name)
	return h, nil
}

// EditHabit validates def and replaces the habit's record with the API's answer.
func (s *HabitStore) EditHabit(ctx context.Context, id string, def models.HabitDefinition) (models.Habit, error) {
	def, err := normalizeDefinition(def)
	if err != nil {
		return models.Habit{}, err
	}
	token := s.seq.Next(id)
	h, err := s.backend.UpdateHabit(ctx, id, def)
	if err != nil {
		return models.Habit{}, err
	}
	if ctx.Err() != nil {
		return h, ctx.Err()
	}
	h.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.IsCurrent(id, token) {
		logger.Debug("Discarding superseded habit edit", "id", id)
		return h, nil
	}
	if i := s.indexLocked(id); i >= 0 {
		s.habits[i] = h.Clone()
	}
	return h, nil
}

// SetActive archives or restores a habit through an edit.
func (s *HabitStore) SetActive(ctx context.Context, id string, active bool) (models.Habit, error) {
	h, ok := s.Habit(id)
	if !ok {
		return models.Habit{}, apperrors.ErrNotFound
	}
	return s.EditHabit(ctx, id, models.HabitDefinition{
		Name:        h.Name,
		Description: h.Description,
		Color:       h.Color,
		IsActive:    &active,
	})
}

// DeleteHabit removes a habit and all its completions.
func (s *HabitStore) DeleteHabit(ctx context.Context, id string) error {
	s.seq.Next(id)
	if err := s.backend.DeleteHabit(ctx, id); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		s.habits = append(s.habits[:i], s.habits[i+1:]...)
	}
	return nil
}

// ToggleCompletion flips the habit's completion on day (today if empty) and
// returns the API's resulting state. The record is then re-fetched so the
// streak counters match the API; a failure of that fetch is only logged.
func (s *HabitStore) ToggleCompletion(ctx context.Context, id, day string) (bool, error) {
	if day == "" {
		day = s.clock.Today()
	}
	token := s.seq.Next(id)
	res, err := s.backend.ToggleCompletion(ctx, id, day)
	if err != nil {
		return false, err
	}
	if ctx.Err() != nil {
		return res.Completed, ctx.Err()
	}

	s.mu.Lock()
	if s.seq.IsCurrent(id, token) {
		if i := s.indexLocked(id); i >= 0 {
			s.habits[i].SetCompleted(day, res.Completed)
		}
	}
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		logger.Warn("Failed to refresh habits after toggle", "id", id, "error", err)
	}
	return res.Completed, nil
}

func (s *HabitStore) indexLocked(id string) int {
	for i := range s.habits {
		if s.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func normalizeHabits(in []models.Habit) []models.Habit {
	out := make([]models.Habit, len(in))
	for i, h := range in {
		out[i] = h.Clone()
		out[i].Normalize()
	}
	return out
}

func normalizeDefinition(def models.HabitDefinition) (models.HabitDefinition, error) {
	def.Name = strings.TrimSpace(def.Name)
	def.Description = strings.TrimSpace(def.Description)
	def.Color = strings.TrimSpace(def.Color)
	if def.Color == "" {
		def.Color = constants.DefaultHabitColor
	}
	if err := validation.Struct(def, habitMessages); err != nil {
		return def, err
	}
	return def, nil
}
