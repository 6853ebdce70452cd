package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

var fixedClock = utils.Clock{
	Loc: time.UTC,
	Now: func() time.Time { return time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC) },
}

const today = "2025-01-02"

// fakeHabits is an in-memory habit API. Hooks run with no lock held and may block.
type fakeHabits struct {
	mu      sync.Mutex
	habits  []models.Habit
	nextID  int
	listErr error
	err     error
	calls   []string

	beforeListReturn func(call int)
	beforeToggleDone func(call int)
	beforeUpdateDone func()
	listCalls        int
	toggleCalls      int
}

func (f *fakeHabits) record(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return len(f.calls)
}

func (f *fakeHabits) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeHabits) snapshot() []models.Habit {
	out := make([]models.Habit, len(f.habits))
	for i, h := range f.habits {
		out[i] = h.Clone()
	}
	return out
}

func (f *fakeHabits) ListHabits(ctx context.Context) ([]models.Habit, error) {
	f.record("list")
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	err := f.listErr
	out := f.snapshot()
	hook := f.beforeListReturn
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeHabits) CreateHabit(ctx context.Context, def models.HabitDefinition) (models.Habit, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Habit{}, f.err
	}
	f.nextID++
	h := models.Habit{
		ID:          fmt.Sprintf("h%d", f.nextID),
		Name:        def.Name,
		Description: def.Description,
		Color:       def.Color,
		IsActive:    def.IsActive == nil || *def.IsActive,
		CreatedAt:   time.Date(2025, 1, f.nextID, 0, 0, 0, 0, time.UTC),
	}
	f.habits = append(f.habits, h)
	return h.Clone(), nil
}

func (f *fakeHabits) UpdateHabit(ctx context.Context, id string, def models.HabitDefinition) (models.Habit, error) {
	f.record("update")
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return models.Habit{}, f.err
	}
	i := f.index(id)
	if i < 0 {
		f.mu.Unlock()
		return models.Habit{}, &apperrors.BoundaryError{Status: 404, Message: "Habit not found"}
	}
	f.habits[i].Name = def.Name
	f.habits[i].Description = def.Description
	f.habits[i].Color = def.Color
	if def.IsActive != nil {
		f.habits[i].IsActive = *def.IsActive
	}
	h := f.habits[i].Clone()
	hook := f.beforeUpdateDone
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return h, nil
}

func (f *fakeHabits) DeleteHabit(ctx context.Context, id string) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if i := f.index(id); i >= 0 {
		f.habits = slices.Delete(f.habits, i, i+1)
	}
	return nil
}

func (f *fakeHabits) ToggleCompletion(ctx context.Context, id, day string) (models.ToggleResult, error) {
	f.record("toggle")
	f.mu.Lock()
	if f.err != nil {
		f.mu.Unlock()
		return models.ToggleResult{}, f.err
	}
	f.toggleCalls++
	call := f.toggleCalls
	i := f.index(id)
	if i < 0 {
		f.mu.Unlock()
		return models.ToggleResult{}, &apperrors.BoundaryError{Status: 404, Message: "Habit not found"}
	}
	h := &f.habits[i]
	completed := !h.CompletedOn(day)
	h.SetCompleted(day, completed)
	h.TotalCompletions = len(h.Completions)
	h.CurrentStreak = len(h.Completions)
	if h.CurrentStreak > h.BestStreak {
		h.BestStreak = h.CurrentStreak
	}
	hook := f.beforeToggleDone
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return models.ToggleResult{Completed: completed}, nil
}

func (f *fakeHabits) index(id string) int {
	for i := range f.habits {
		if f.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeHabits) rename(id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.habits[f.index(id)].Name = name
}

// fakeContent is an in-memory note API.
type fakeContent struct {
	mu      sync.Mutex
	lists   map[models.Visibility][]models.ContentItem
	feed    []models.ContentItem
	nextID  int
	err     error
	listErr map[models.Visibility]error
	calls   []string

	// privateOnPublish makes published drafts come back private.
	privateOnPublish bool
	lastUpdate       models.UpdateContentRequest
}

func newFakeContent() *fakeContent {
	return &fakeContent{lists: map[models.Visibility][]models.ContentItem{}, listErr: map[models.Visibility]error{}}
}

func (f *fakeContent) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeContent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeContent) ListContent(ctx context.Context, vis models.Visibility) ([]models.ContentItem, error) {
	f.record("list " + string(vis))
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[vis]; err != nil {
		return nil, err
	}
	return append([]models.ContentItem(nil), f.lists[vis]...), nil
}

func (f *fakeContent) PublicFeed(ctx context.Context) ([]models.ContentItem, error) {
	f.record("feed")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ContentItem(nil), f.feed...), nil
}

func (f *fakeContent) CreateContent(ctx context.Context, req models.CreateContentRequest) (models.ContentItem, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.ContentItem{}, f.err
	}
	f.nextID++
	return models.ContentItem{
		ID:        fmt.Sprintf("c%d", f.nextID),
		Title:     req.Title,
		Body:      req.Body,
		IsDraft:   req.IsDraft,
		IsPrivate: req.IsPrivate,
	}, nil
}

func (f *fakeContent) UpdateContent(ctx context.Context, id string, req models.UpdateContentRequest) (models.ContentItem, error) {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = req
	if f.err != nil {
		return models.ContentItem{}, f.err
	}
	item := models.ContentItem{ID: id, Title: req.Title, Body: req.Body, Labels: req.Labels}
	if req.IsDraft != nil && !*req.IsDraft {
		item.IsPrivate = f.privateOnPublish
	} else {
		item.IsDraft = req.IsDraft != nil && *req.IsDraft
	}
	return item, nil
}

func (f *fakeContent) DeleteContent(ctx context.Context, id string) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// fakeProfile is an in-memory profile API.
type fakeProfile struct {
	mu       sync.Mutex
	profile  models.Profile
	err      error
	calls    []string
	uploaded models.AvatarFile
}

func (f *fakeProfile) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeProfile) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeProfile) GetProfile(ctx context.Context) (models.Profile, error) {
	f.record("get")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, f.err
}

func (f *fakeProfile) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.Profile, error) {
	f.record("update")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Profile{}, f.err
	}
	f.profile.Name = req.Name
	return f.profile, nil
}

func (f *fakeProfile) UploadAvatar(ctx context.Context, file models.AvatarFile) (models.AvatarResponse, error) {
	f.record("upload")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.AvatarResponse{}, f.err
	}
	f.uploaded = file
	return models.AvatarResponse{AvatarURL: "/uploads/" + file.Name}, nil
}

func (f *fakeProfile) DeleteAvatar(ctx context.Context) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
