package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/cli/clitest"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
)

func TestNoteCreatePlacement(t *testing.T) {
	tests := []struct {
		name    string
		cmd     NoteCreateCmd
		wantVis models.Visibility
	}{
		{name: "public", cmd: NoteCreateCmd{Title: "Hello", Body: "world"}, wantVis: models.VisibilityPublic},
		{name: "private", cmd: NoteCreateCmd{Title: "Hello", Body: "world", Private: true}, wantVis: models.VisibilityPrivate},
		{name: "draft wins", cmd: NoteCreateCmd{Title: "Hello", Body: "world", Private: true, Draft: true}, wantVis: models.VisibilityDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, srv := clitest.NewBackend(t)
			ctx, out := clitest.NewContext(t, srv)

			require.NoError(t, tt.cmd.Run(ctx))
			require.Len(t, b.Items, 1)
			vis, ok := ctx.Content.Locate(b.Items[0].ID)
			require.True(t, ok)
			assert.Equal(t, tt.wantVis, vis)
			assert.Contains(t, out.String(), "✓ Saved \"Hello\"")
		})
	}
}

func TestNoteCreateBodyFromStdin(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)
	ctx.In = strings.NewReader("from stdin\n")

	require.NoError(t, (&NoteCreateCmd{Title: "Piped", BodyFile: "-"}).Run(ctx))
	require.Len(t, b.Items, 1)
	assert.Equal(t, "from stdin", b.Items[0].Body)
}

func TestNoteCreateValidation(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)

	err := (&NoteCreateCmd{Title: "No body", Body: "   "}).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, "Body is required", apperrors.UserMessage(err))
	assert.Empty(t, b.Items)
}

func TestNoteEditDraftAndPublish(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)
	require.NoError(t, (&NoteCreateCmd{Title: "Draft", Body: "wip", Draft: true}).Run(ctx))
	id := b.Items[0].ID

	body := "still wip"
	require.NoError(t, (&NoteEditCmd{Note: id, Body: &body}).Run(ctx))
	vis, _ := ctx.Content.Locate(id)
	assert.Equal(t, models.VisibilityDraft, vis, "editing a draft keeps it a draft")
	assert.True(t, b.Items[0].IsDraft)

	out.Reset()
	title := "Done"
	require.NoError(t, (&NoteEditCmd{Note: id, Title: &title, Publish: true}).Run(ctx))
	vis, _ = ctx.Content.Locate(id)
	assert.Equal(t, models.VisibilityPublic, vis)
	assert.False(t, b.Items[0].IsDraft)
	assert.Equal(t, "Done", b.Items[0].Title)
	assert.Empty(t, ctx.Content.Drafts())
}

func TestNoteEditPublishRejectsNonDraft(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)
	require.NoError(t, (&NoteCreateCmd{Title: "Hello", Body: "world"}).Run(ctx))

	err := (&NoteEditCmd{Note: b.Items[0].ID, Publish: true}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only drafts")
}

func TestNotePublishDraft(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)
	require.NoError(t, (&NoteCreateCmd{Title: "Draft", Body: "wip", Draft: true}).Run(ctx))
	id := b.Items[0].ID

	require.NoError(t, (&NotePublishCmd{Note: id[:2]}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Published \"Draft\" to public")
	vis, _ := ctx.Content.Locate(id)
	assert.Equal(t, models.VisibilityPublic, vis)
}

func TestNotePublishFailureKeepsDraft(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)
	require.NoError(t, (&NoteCreateCmd{Title: "Draft", Body: "wip", Draft: true}).Run(ctx))
	id := b.Items[0].ID

	b.Mu.Lock()
	b.FailNext = "Publishing is disabled"
	b.Mu.Unlock()
	// The list refresh is a GET, so the failure lands on the publish.
	err := (&NotePublishCmd{Note: id}).Run(ctx)
	require.Error(t, err)
	assert.Equal(t, "Publishing is disabled", apperrors.UserMessage(err))
	vis, _ := ctx.Content.Locate(id)
	assert.Equal(t, models.VisibilityDraft, vis)
}

func TestNoteDelete(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)
	require.NoError(t, (&NoteCreateCmd{Title: "Hello", Body: "world", Private: true}).Run(ctx))
	id := b.Items[0].ID

	ctx.Confirm = clitest.Answer(false)
	assert.ErrorIs(t, (&NoteDeleteCmd{Note: id}).Run(ctx), apperrors.ErrCancelled)
	assert.Len(t, b.Items, 1)

	ctx.Confirm = clitest.Answer(true)
	require.NoError(t, (&NoteDeleteCmd{Note: id}).Run(ctx))
	assert.Empty(t, b.Items)
	assert.Empty(t, ctx.Content.Private())
}

func TestNoteListAndFeed(t *testing.T) {
	b, srv := clitest.NewBackend(t)
	b.Feed = []models.ContentItem{{ID: "x1", Title: "Someone else", Body: "hi", Owner: "Ada"}}
	ctx, out := clitest.NewContext(t, srv)
	require.NoError(t, (&NoteCreateCmd{Title: "Mine", Body: "text"}).Run(ctx))
	require.NoError(t, (&NoteCreateCmd{Title: "Secret", Body: "text", Private: true}).Run(ctx))

	out.Reset()
	require.NoError(t, (&NoteListCmd{Visibility: "private"}).Run(ctx))
	assert.Contains(t, out.String(), "Secret")
	assert.NotContains(t, out.String(), "Mine")

	assert.Error(t, (&NoteListCmd{Visibility: "secret"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&NoteFeedCmd{Limit: 1}).Run(ctx))
	assert.Contains(t, out.String(), "Someone else")
	assert.NotContains(t, out.String(), "Mine")
}
