package store

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/tally/internal/async"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/validation"
)

// ProfileBackend is the part of the API the ProfileEditor uses.
type ProfileBackend interface {
	GetProfile(ctx context.Context) (models.Profile, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (models.Profile, error)
	UploadAvatar(ctx context.Context, file models.AvatarFile) (models.AvatarResponse, error)
	DeleteAvatar(ctx context.Context) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

var profileMessages = validation.Messages{
	"name.required": "Name is required",
	"name.max":      "Name must be 100 characters or less",
}

// StagedAvatar is an image chosen for upload and its pending preview.
type StagedAvatar struct {
	File    models.AvatarFile
	preview *async.Task[string]
}

// ProfileEditor holds the session profile and pending avatar changes.
type ProfileEditor struct {
	backend ProfileBackend

	mu      sync.RWMutex
	profile models.Profile
	editing bool
	staged  *StagedAvatar
}

func NewProfileEditor(backend ProfileBackend) *ProfileEditor {
	return &ProfileEditor{backend: backend}
}

// Load fetches the profile.
func (e *ProfileEditor) Load(ctx context.Context) (models.Profile, error) {
	p, err := e.backend.GetProfile(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	if ctx.Err() != nil {
		return p, ctx.Err()
	}
	e.mu.Lock()
	e.profile = p
	e.mu.Unlock()
	return p, nil
}

// Hydrate seeds the profile from cached state.
func (e *ProfileEditor) Hydrate(p models.Profile) {
	e.mu.Lock()
	e.profile = p
	e.mu.Unlock()
}

func (e *ProfileEditor) Profile() models.Profile {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.profile
}

func (e *ProfileEditor) Editing() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.editing
}

func (e *ProfileEditor) BeginEdit() {
	e.mu.Lock()
	e.editing = true
	e.mu.Unlock()
}

// CancelEdit leaves edit mode and drops any staged avatar.
func (e *ProfileEditor) CancelEdit() {
	e.mu.Lock()
	e.editing = false
	e.staged = nil
	e.mu.Unlock()
}

// StageAvatar validates file and starts building its data URI preview.
// The profile itself is not changed.
func (e *ProfileEditor) StageAvatar(file models.AvatarFile) error {
	mime, err := validation.Avatar(file)
	if err != nil {
		return err
	}
	file.MimeType = mime
	data := file.Data
	staged := &StagedAvatar{
		File: file,
		preview: async.Go(func() (string, error) {
			return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
		}),
	}
	e.mu.Lock()
	e.staged = staged
	e.mu.Unlock()
	return nil
}

// Staged returns the staged avatar file, if any.
func (e *ProfileEditor) Staged() (models.AvatarFile, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.staged == nil {
		return models.AvatarFile{}, false
	}
	return e.staged.File, true
}

// Preview waits for the staged avatar's data URI.
func (e *ProfileEditor) Preview(ctx context.Context) (string, error) {
	e.mu.RLock()
	staged := e.staged
	e.mu.RUnlock()
	if staged == nil {
		return "", fmt.Errorf("avatar preview: %w", apperrors.ErrNotFound)
	}
	return staged.preview.Await(ctx)
}

// CommitAvatar uploads the staged avatar and stores the new avatar URL.
func (e *ProfileEditor) CommitAvatar(ctx context.Context) (models.Profile, error) {
	e.mu.RLock()
	staged := e.staged
	e.mu.RUnlock()
	if staged == nil {
		return models.Profile{}, apperrors.NewValidation("avatar", "Please select an image file")
	}

	res, err := e.backend.UploadAvatar(ctx, staged.File)
	if err != nil {
		return models.Profile{}, err
	}
	if ctx.Err() != nil {
		return models.Profile{}, ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	url := res.AvatarURL
	e.profile.AvatarURL = &url
	if e.staged == staged {
		e.staged = nil
	}
	return e.profile, nil
}

// DiscardAvatar drops the staged avatar.
func (e *ProfileEditor) DiscardAvatar() {
	e.mu.Lock()
	e.staged = nil
	e.mu.Unlock()
}

// RemoveAvatar deletes the uploaded avatar once confirm approves.
// Declining returns errors.ErrCancelled without calling the API.
func (e *ProfileEditor) RemoveAvatar(ctx context.Context, confirm Confirmer) error {
	ok, err := confirm.Confirm(ctx, "Remove your profile picture?")
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCancelled
	}
	if err := e.backend.DeleteAvatar(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	e.mu.Lock()
	e.profile.AvatarURL = nil
	e.mu.Unlock()
	return nil
}

// SaveProfile validates and saves the display name. Edit mode ends only on success.
func (e *ProfileEditor) SaveProfile(ctx context.Context, name string) (models.Profile, error) {
	req := models.UpdateProfileRequest{Name: strings.TrimSpace(name)}
	if err := validation.Struct(req, profileMessages); err != nil {
		return models.Profile{}, err
	}
	p, err := e.backend.UpdateProfile(ctx, req)
	if err != nil {
		return models.Profile{}, err
	}
	if ctx.Err() != nil {
		return p, ctx.Err()
	}
	e.mu.Lock()
	e.profile = p
	e.editing = false
	e.mu.Unlock()
	return p, nil
}

// AvatarURL resolves the uploaded avatar against baseURL, or falls back to
// the Gravatar image for the profile's email.
func (e *ProfileEditor) AvatarURL(baseURL string, size int) string {
	p := e.Profile()
	if p.HasAvatar() {
		u := *p.AvatarURL
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "data:") {
			return u
		}
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(u, "/")
	}
	return GravatarURL(p.Email, size)
}

// GravatarURL builds the identicon-backed Gravatar URL for email.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=%d", hex.EncodeToString(sum[:]), size)
}
