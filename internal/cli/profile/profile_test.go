package profile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/cli/clitest"
	apperrors "github.com/julianstephens/tally/internal/errors"
)

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestProfileShowUsesGravatar(t *testing.T) {
	_, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)

	require.NoError(t, (&ProfileShowCmd{Size: 80}).Run(ctx))
	assert.Contains(t, out.String(), "https://www.gravatar.com/avatar/55502f40dc8b7c769880b10874abc9d0?d=identicon&s=80")
}

func TestProfileSetName(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)

	require.NoError(t, (&ProfileSetNameCmd{Name: "  Ada  "}).Run(ctx))
	assert.Equal(t, "Ada", b.Profile.Name)
	assert.Contains(t, out.String(), "✓ Display name set to Ada")
	assert.False(t, ctx.Profile.Editing())

	err := (&ProfileSetNameCmd{Name: " "}).Run(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Ada", b.Profile.Name)
}

func TestAvatarSetAndRemove(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)

	require.NoError(t, (&AvatarSetCmd{Path: writePNG(t)}).Run(ctx))
	require.NotNil(t, b.Profile.AvatarURL)
	assert.Equal(t, "/uploads/me.png", *b.Profile.AvatarURL)
	assert.Contains(t, out.String(), srv.URL+"/uploads/me.png")
	_, staged := ctx.Profile.Staged()
	assert.False(t, staged)

	ctx.Confirm = clitest.Answer(false)
	assert.ErrorIs(t, (&AvatarRemoveCmd{}).Run(ctx), apperrors.ErrCancelled)
	assert.NotNil(t, b.Profile.AvatarURL)

	ctx.Confirm = clitest.Answer(true)
	require.NoError(t, (&AvatarRemoveCmd{}).Run(ctx))
	assert.Nil(t, b.Profile.AvatarURL)
	assert.False(t, ctx.Profile.Profile().HasAvatar())
}

func TestAvatarSetDeclined(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)
	ctx.Confirm = clitest.Answer(false)

	assert.ErrorIs(t, (&AvatarSetCmd{Path: writePNG(t)}).Run(ctx), apperrors.ErrCancelled)
	assert.Nil(t, b.Profile.AvatarURL)
	_, staged := ctx.Profile.Staged()
	assert.False(t, staged)
}

func TestAvatarSetRejectsNonImage(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("plain text ", 10)), 0o600))

	err := (&AvatarSetCmd{Path: path}).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, "Please select an image file", apperrors.UserMessage(err))
	assert.Nil(t, b.Profile.AvatarURL)
}

func TestAvatarURLPrintsOnlyURL(t *testing.T) {
	_, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)

	require.NoError(t, (&AvatarURLCmd{Size: 40}).Run(ctx))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "&s=40"))
}
