// Package clitest runs commands against an in-memory API served over HTTP.
package clitest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/store"
)

// Backend is the server-side state. Lock Mu before touching fields from a test
// while requests may be in flight.
type Backend struct {
	Mu      sync.Mutex
	Habits  []models.Habit
	Items   []models.ContentItem
	Feed    []models.ContentItem
	Profile models.Profile

	// RequireToken, when set, rejects requests without this bearer token.
	RequireToken string

	// FailNext makes the next mutating request answer 500 with this message.
	FailNext string

	nextID int
}

// NewBackend starts a server for a fresh Backend. It is closed when t ends.
func NewBackend(t *testing.T) (*Backend, *httptest.Server) {
	t.Helper()
	b := &Backend{Profile: models.Profile{ID: "u1", Name: "Test User", Email: "test@example.com"}}
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return b, srv
}

// NewContext builds a command context against srv with a JSON cache in a temp dir.
// Command output is captured in the returned buffer.
func NewContext(t *testing.T, srv *httptest.Server) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	cfg := config.Config{
		APIURL:   srv.URL,
		Token:    "test-token",
		Timezone: "UTC",
		DataDir:  t.TempDir(),
		Timeout:  5 * time.Second,
		Cache:    config.CacheJSON,
	}
	ctx, err := cli.New(context.Background(), cfg, cli.HuhConfirmer{AssumeYes: true})
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })

	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

// Answer is a confirmer that always gives the same answer.
func Answer(ok bool) store.Confirmer {
	return store.ConfirmFunc(func(context.Context, string) (bool, error) { return ok, nil })
}

func (b *Backend) id(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s%d", prefix, b.nextID)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		raw, _ := sonic.Marshal(v)
		_, _ = w.Write(raw)
	}
}

func readJSON(r *http.Request, v interface{}) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(raw, v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// failing consumes FailNext. Callers hold Mu.
func (b *Backend) failing(w http.ResponseWriter) bool {
	if b.FailNext == "" {
		return false
	}
	fail(w, http.StatusInternalServerError, b.FailNext)
	b.FailNext = ""
	return true
}

// Router exposes the backend's API.
func (b *Backend) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			b.Mu.Lock()
			defer b.Mu.Unlock()
			if b.RequireToken != "" && req.Header.Get("Authorization") != "Bearer "+b.RequireToken {
				fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Route("/api/habits", func(r chi.Router) {
		r.Get("/", b.listHabits)
		r.Post("/", b.createHabit)
		r.Put("/{id}", b.updateHabit)
		r.Delete("/{id}", b.deleteHabit)
		r.Post("/{id}/toggle", b.toggleHabit)
	})

	r.Get("/api/posts", b.feed)
	r.Post("/api/posts", b.createItem)
	r.Put("/api/posts/{id}", b.updateItem)
	r.Delete("/api/posts/{id}", b.deleteItem)
	r.Get("/api/posts/me", b.listItems(func(i models.ContentItem) bool { return !i.IsDraft && !i.IsPrivate }))
	r.Get("/api/private/me", b.listItems(func(i models.ContentItem) bool { return !i.IsDraft && i.IsPrivate }))
	r.Get("/api/drafts/me", b.listItems(func(i models.ContentItem) bool { return i.IsDraft }))

	r.Get("/api/auth/profile", func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, http.StatusOK, b.Profile) })
	r.Put("/api/auth/profile", b.updateProfile)
	r.Post("/api/auth/avatar", b.uploadAvatar)
	r.Delete("/api/auth/avatar", b.deleteAvatar)
	return r
}

func (b *Backend) habitIndex(id string) int {
	return slices.IndexFunc(b.Habits, func(h models.Habit) bool { return h.ID == id })
}

func (b *Backend) listHabits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, b.Habits)
}

func (b *Backend) createHabit(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	var def models.HabitDefinition
	if err := readJSON(r, &def); err != nil || def.Name == "" {
		fail(w, http.StatusBadRequest, "Name is required")
		return
	}
	h := models.Habit{
		ID:          b.id("h"),
		Name:        def.Name,
		Description: def.Description,
		Color:       def.Color,
		IsActive:    def.IsActive == nil || *def.IsActive,
		CreatedAt:   time.Now().UTC(),
		Completions: []models.Completion{},
	}
	b.Habits = append([]models.Habit{h}, b.Habits...)
	writeJSON(w, http.StatusCreated, h)
}

func (b *Backend) updateHabit(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	i := b.habitIndex(chi.URLParam(r, "id"))
	if i < 0 {
		fail(w, http.StatusNotFound, "Habit not found")
		return
	}
	var def models.HabitDefinition
	if err := readJSON(r, &def); err != nil {
		fail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	h := &b.Habits[i]
	h.Name, h.Description, h.Color = def.Name, def.Description, def.Color
	if def.IsActive != nil {
		h.IsActive = *def.IsActive
	}
	writeJSON(w, http.StatusOK, h)
}

func (b *Backend) deleteHabit(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	i := b.habitIndex(chi.URLParam(r, "id"))
	if i < 0 {
		fail(w, http.StatusNotFound, "Habit not found")
		return
	}
	b.Habits = slices.Delete(b.Habits, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

// toggleHabit flips the completion. Streak counters follow the completion count.
func (b *Backend) toggleHabit(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	i := b.habitIndex(chi.URLParam(r, "id"))
	if i < 0 {
		fail(w, http.StatusNotFound, "Habit not found")
		return
	}
	var body struct {
		Date string `json:"date"`
	}
	if err := readJSON(r, &body); err != nil || body.Date == "" {
		fail(w, http.StatusBadRequest, "Date is required")
		return
	}
	h := &b.Habits[i]
	completed := !h.CompletedOn(body.Date)
	h.SetCompleted(body.Date, completed)
	h.TotalCompletions = len(h.Completions)
	h.CurrentStreak = len(h.Completions)
	h.BestStreak = max(h.BestStreak, h.CurrentStreak)
	writeJSON(w, http.StatusOK, models.ToggleResult{Completed: completed})
}

func (b *Backend) listItems(keep func(models.ContentItem) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := []models.ContentItem{}
		for _, item := range b.Items {
			if keep(item) {
				out = append(out, item)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (b *Backend) feed(w http.ResponseWriter, _ *http.Request) {
	out := append([]models.ContentItem{}, b.Feed...)
	for _, item := range b.Items {
		if !item.IsDraft && !item.IsPrivate {
			out = append(out, item)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) itemIndex(id string) int {
	return slices.IndexFunc(b.Items, func(i models.ContentItem) bool { return i.ID == id })
}

func (b *Backend) createItem(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	var req models.CreateContentRequest
	if err := readJSON(r, &req); err != nil || req.Title == "" || req.Body == "" {
		fail(w, http.StatusBadRequest, "Title and body are required")
		return
	}
	item := models.ContentItem{
		ID:        b.id("p"),
		Title:     req.Title,
		Body:      req.Body,
		IsDraft:   req.IsDraft,
		IsPrivate: req.IsPrivate,
		CreatedAt: time.Now().UTC(),
		Owner:     b.Profile.Name,
	}
	b.Items = append([]models.ContentItem{item}, b.Items...)
	writeJSON(w, http.StatusCreated, item)
}

func (b *Backend) updateItem(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	i := b.itemIndex(chi.URLParam(r, "id"))
	if i < 0 {
		fail(w, http.StatusNotFound, "Post not found")
		return
	}
	var req models.UpdateContentRequest
	if err := readJSON(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid body")
		return
	}
	item := &b.Items[i]
	item.Title, item.Body = req.Title, req.Body
	if req.Labels != nil {
		item.Labels = req.Labels
	}
	if req.IsDraft != nil {
		item.IsDraft = *req.IsDraft
	}
	writeJSON(w, http.StatusOK, item)
}

func (b *Backend) deleteItem(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	i := b.itemIndex(chi.URLParam(r, "id"))
	if i < 0 {
		fail(w, http.StatusNotFound, "Post not found")
		return
	}
	b.Items = slices.Delete(b.Items, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	var req models.UpdateProfileRequest
	if err := readJSON(r, &req); err != nil || req.Name == "" {
		fail(w, http.StatusBadRequest, "Name is required")
		return
	}
	b.Profile.Name = req.Name
	writeJSON(w, http.StatusOK, b.Profile)
}

func (b *Backend) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	if b.failing(w) {
		return
	}
	if err := r.ParseMultipartForm(constants.MaxAvatarBytes + 1024); err != nil {
		fail(w, http.StatusBadRequest, "Invalid upload")
		return
	}
	_, header, err := r.FormFile(constants.AvatarFormField)
	if err != nil {
		fail(w, http.StatusBadRequest, "No file")
		return
	}
	url := "/uploads/" + header.Filename
	b.Profile.AvatarURL = &url
	writeJSON(w, http.StatusOK, models.AvatarResponse{AvatarURL: url})
}

func (b *Backend) deleteAvatar(w http.ResponseWriter, _ *http.Request) {
	if b.failing(w) {
		return
	}
	b.Profile.AvatarURL = nil
	w.WriteHeader(http.StatusNoContent)
}
