package store

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func strPtr(s string) *string { return &s }

func newProfileEditor(t *testing.T) (*ProfileEditor, *fakeProfile) {
	t.Helper()
	fake := &fakeProfile{profile: models.Profile{ID: "u1", Name: "Ada", Email: "Test@Example.com "}}
	e := NewProfileEditor(fake)
	_, err := e.Load(context.Background())
	require.NoError(t, err)
	return e, fake
}

func TestStageAvatarValidation(t *testing.T) {
	tests := []struct {
		name    string
		file    models.AvatarFile
		wantMsg string
	}{
		{name: "declared non-image", file: models.AvatarFile{Name: "a.txt", MimeType: "text/plain", Data: pngHeader}, wantMsg: "Please select an image file"},
		{name: "content not an image", file: models.AvatarFile{Name: "a.png", MimeType: "image/png", Data: []byte("hello world")}, wantMsg: "Please select an image file"},
		{name: "too large", file: models.AvatarFile{Name: "a.png", MimeType: "image/png", Data: append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, constants.MaxAvatarBytes)...)}, wantMsg: "Image size must be less than 5MB"},
		{name: "empty", file: models.AvatarFile{Name: "a.png", MimeType: "image/png"}, wantMsg: "Please select an image file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, fake := newProfileEditor(t)
			err := e.StageAvatar(tt.file)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantMsg, apperrors.UserMessage(err))
			_, staged := e.Staged()
			assert.False(t, staged)
			assert.Equal(t, 1, fake.callCount())
		})
	}
}

func TestStageAndCommitAvatar(t *testing.T) {
	e, fake := newProfileEditor(t)
	ctx := context.Background()

	require.NoError(t, e.StageAvatar(models.AvatarFile{Name: "me.png", Data: pngHeader}))
	preview, err := e.Preview(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(preview, "data:image/png;base64,"), preview)
	assert.False(t, e.Profile().HasAvatar(), "staging does not touch the profile")

	p, err := e.CommitAvatar(ctx)
	require.NoError(t, err)
	require.NotNil(t, p.AvatarURL)
	assert.Equal(t, "/uploads/me.png", *p.AvatarURL)
	assert.Equal(t, "image/png", fake.uploaded.MimeType)
	_, staged := e.Staged()
	assert.False(t, staged)

	_, err = e.Preview(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCommitWithoutStagedAvatar(t *testing.T) {
	e, fake := newProfileEditor(t)
	_, err := e.CommitAvatar(context.Background())
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 1, fake.callCount())
}

func TestCommitFailureKeepsStagedAvatar(t *testing.T) {
	e, fake := newProfileEditor(t)
	require.NoError(t, e.StageAvatar(models.AvatarFile{Name: "me.png", MimeType: "image/png", Data: pngHeader}))
	fake.err = &apperrors.BoundaryError{Status: 413, Message: "File too large"}

	_, err := e.CommitAvatar(context.Background())
	require.Error(t, err)
	_, staged := e.Staged()
	assert.True(t, staged)
	assert.False(t, e.Profile().HasAvatar())
}

func TestDiscardAndCancelEdit(t *testing.T) {
	e, fake := newProfileEditor(t)
	require.NoError(t, e.StageAvatar(models.AvatarFile{Name: "me.png", Data: pngHeader}))
	e.DiscardAvatar()
	_, staged := e.Staged()
	assert.False(t, staged)

	e.BeginEdit()
	require.NoError(t, e.StageAvatar(models.AvatarFile{Name: "me.png", Data: pngHeader}))
	e.CancelEdit()
	assert.False(t, e.Editing())
	_, staged = e.Staged()
	assert.False(t, staged)
	assert.Equal(t, 1, fake.callCount())
}

func TestRemoveAvatarRequiresConfirmation(t *testing.T) {
	e, fake := newProfileEditor(t)
	e.Hydrate(models.Profile{ID: "u1", AvatarURL: strPtr("/uploads/me.png")})
	ctx := context.Background()

	decline := ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
	err := e.RemoveAvatar(ctx, decline)
	assert.ErrorIs(t, err, apperrors.ErrCancelled)
	assert.Equal(t, 1, fake.callCount())
	assert.True(t, e.Profile().HasAvatar())

	var prompt string
	accept := ConfirmFunc(func(_ context.Context, p string) (bool, error) { prompt = p; return true, nil })
	require.NoError(t, e.RemoveAvatar(ctx, accept))
	assert.NotEmpty(t, prompt)
	assert.False(t, e.Profile().HasAvatar())
}

func TestSaveProfile(t *testing.T) {
	e, fake := newProfileEditor(t)
	ctx := context.Background()
	e.BeginEdit()

	_, err := e.SaveProfile(ctx, "   ")
	assert.Equal(t, "Name is required", apperrors.UserMessage(err))
	_, err = e.SaveProfile(ctx, strings.Repeat("n", 101))
	assert.Equal(t, "Name must be 100 characters or less", apperrors.UserMessage(err))
	assert.True(t, e.Editing())

	fake.err = &apperrors.BoundaryError{Status: 500, Message: "server error (500)"}
	_, err = e.SaveProfile(ctx, "Grace")
	require.Error(t, err)
	assert.True(t, e.Editing(), "edit mode survives a failed save")
	assert.Equal(t, "Ada", e.Profile().Name)

	fake.err = nil
	p, err := e.SaveProfile(ctx, "  Grace ")
	require.NoError(t, err)
	assert.Equal(t, "Grace", p.Name)
	assert.False(t, e.Editing())
}

func TestAvatarURL(t *testing.T) {
	e, _ := newProfileEditor(t)
	assert.Equal(t,
		"https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?d=identicon&s=80",
		e.AvatarURL("http://api.local", 80))

	e.Hydrate(models.Profile{AvatarURL: strPtr("/uploads/me.png")})
	assert.Equal(t, "http://api.local/uploads/me.png", e.AvatarURL("http://api.local/", 80))

	e.Hydrate(models.Profile{AvatarURL: strPtr("https://cdn.example.com/me.png")})
	assert.Equal(t, "https://cdn.example.com/me.png", e.AvatarURL("http://api.local", 80))
}
