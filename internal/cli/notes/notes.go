package notes

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/cli"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/render"
	"github.com/julianstephens/tally/internal/store"
)

type NoteCmd struct {
	List    NoteListCmd    `cmd:"" default:"1" help:"List your notes."`
	Feed    NoteFeedCmd    `cmd:"" help:"Show the community feed."`
	Show    NoteShowCmd    `cmd:"" help:"Show one note."`
	Create  NoteCreateCmd  `cmd:"" help:"Write a new note."`
	Edit    NoteEditCmd    `cmd:"" help:"Edit a note."`
	Publish NotePublishCmd `cmd:"" help:"Publish a draft as is."`
	Delete  NoteDeleteCmd  `cmd:"" help:"Delete a note."`
}

type NoteListCmd struct {
	Visibility string `short:"v" help:"Only show one collection: public, private or draft."`
}

func (c *NoteListCmd) Run(ctx *cli.Context) error {
	var only models.Visibility
	if c.Visibility != "" {
		vis, ok := models.ParseVisibility(c.Visibility)
		if !ok {
			return fmt.Errorf("unknown collection %q (expected public, private or draft)", c.Visibility)
		}
		only = vis
	}
	if err := ctx.SyncContent(); err != nil {
		return err
	}
	lists := map[models.Visibility][]models.ContentItem{
		models.VisibilityPublic:  ctx.Content.Public(),
		models.VisibilityPrivate: ctx.Content.Private(),
		models.VisibilityDraft:   ctx.Content.Drafts(),
	}
	first := true
	for _, vis := range models.Visibilities {
		if only != "" && vis != only {
			continue
		}
		if !first {
			ctx.Println()
		}
		first = false
		ctx.Println(render.Notes(render.VisibilityHeading(vis), lists[vis]))
	}
	return nil
}

type NoteFeedCmd struct {
	Limit int `short:"n" help:"Maximum number of notes." default:"${feed_limit}"`
}

func (c *NoteFeedCmd) Run(ctx *cli.Context) error {
	items, err := ctx.Content.PublicFeed(ctx.Ctx, c.Limit)
	if err != nil {
		return err
	}
	ctx.Println(render.Feed(items))
	return nil
}

type NoteShowCmd struct {
	Note string `arg:"" help:"Note id or id prefix."`
}

func (c *NoteShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncContent(); err != nil {
		return err
	}
	item, vis, err := ctx.ResolveNote(c.Note)
	if err != nil {
		return err
	}
	ctx.Println(render.Note(item, vis))
	return nil
}

type NoteCreateCmd struct {
	Title    string `arg:"" optional:"" help:"Title. Omit to fill in a form."`
	Body     string `short:"b" help:"Body text."`
	BodyFile string `name:"body-file" help:"Read the body from a file, or '-' for stdin."`
	Private  bool   `short:"p" help:"Publish to your private collection."`
	Draft    bool   `short:"d" help:"Save as a draft instead of publishing."`
}

func (c *NoteCreateCmd) Run(ctx *cli.Context) error {
	title, body := c.Title, c.Body
	if c.BodyFile != "" {
		b, err := readBody(ctx, c.BodyFile)
		if err != nil {
			return err
		}
		body = b
	}

	private, draft := c.Private, c.Draft
	if strings.TrimSpace(title) == "" {
		if err := noteForm(&title, &body, &private, &draft, true); err != nil {
			return err
		}
	}

	session := store.NewNote()
	var (
		item models.ContentItem
		err  error
	)
	if draft {
		item, err = session.SaveDraft(ctx.Ctx, ctx.Content, title, body)
	} else {
		item, err = session.Submit(ctx.Ctx, ctx.Content, title, body, private)
	}
	if err != nil {
		return err
	}
	ctx.SaveContent()

	vis, _ := ctx.Content.Locate(item.ID)
	ctx.Printf("✓ Saved %q to %s (ID: %s)\n", item.Title, strings.ToLower(render.VisibilityHeading(vis)), item.ID)
	return nil
}

type NoteEditCmd struct {
	Note     string  `arg:"" help:"Note id or id prefix."`
	Title    *string `help:"New title."`
	Body     *string `short:"b" help:"New body."`
	BodyFile string  `name:"body-file" help:"Read the new body from a file, or '-' for stdin."`
	Publish  bool    `help:"Publish the draft after editing."`
}

func (c *NoteEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncContent(); err != nil {
		return err
	}
	item, vis, err := ctx.ResolveNote(c.Note)
	if err != nil {
		return err
	}
	if c.Publish && vis != models.VisibilityDraft {
		return fmt.Errorf("only drafts can be published, %q is %s", item.Title, vis)
	}

	title, body := item.Title, item.Body
	if c.BodyFile != "" {
		b, err := readBody(ctx, c.BodyFile)
		if err != nil {
			return err
		}
		body = b
	}
	if c.Title == nil && c.Body == nil && c.BodyFile == "" {
		private, draft := false, false
		if err := noteForm(&title, &body, &private, &draft, false); err != nil {
			return err
		}
	}
	if c.Title != nil {
		title = *c.Title
	}
	if c.Body != nil {
		body = *c.Body
	}

	session := store.EditItem(item, vis)
	var updated models.ContentItem
	if c.Publish {
		updated, err = session.Submit(ctx.Ctx, ctx.Content, title, body, false)
	} else {
		updated, err = ctx.Content.Edit(ctx.Ctx, item.ID, store.Changes{Title: title, Body: body}, session.Origin())
	}
	if err != nil {
		return err
	}
	ctx.SaveContent()

	now, _ := ctx.Content.Locate(updated.ID)
	ctx.Printf("✓ Updated %q (%s)\n", updated.Title, strings.ToLower(render.VisibilityHeading(now)))
	return nil
}

type NotePublishCmd struct {
	Note string `arg:"" help:"Draft id or id prefix."`
}

func (c *NotePublishCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncContent(); err != nil {
		return err
	}
	item, vis, err := ctx.ResolveNote(c.Note)
	if err != nil {
		return err
	}
	if vis != models.VisibilityDraft {
		return fmt.Errorf("%q is not a draft", item.Title)
	}
	published, err := ctx.Content.PublishDraft(ctx.Ctx, item)
	if err != nil {
		return err
	}
	ctx.SaveContent()
	ctx.Printf("✓ Published %q to %s\n", published.Title, strings.ToLower(render.VisibilityHeading(published.PublishedVisibility())))
	return nil
}

type NoteDeleteCmd struct {
	Note string `arg:"" help:"Note id or id prefix."`
}

func (c *NoteDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncContent(); err != nil {
		return err
	}
	item, vis, err := ctx.ResolveNote(c.Note)
	if err != nil {
		return err
	}
	ok, err := ctx.Confirm.Confirm(ctx.Ctx, fmt.Sprintf("Delete %q?", item.Title))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCancelled
	}
	if err := ctx.Content.Delete(ctx.Ctx, item.ID, vis); err != nil {
		return err
	}
	ctx.SaveContent()
	ctx.Printf("Deleted note: %s (ID: %s)\n", item.Title, item.ID)
	return nil
}

func readBody(ctx *cli.Context, path string) (string, error) {
	var r io.Reader = ctx.In
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open body file: %w", err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(b), nil
}

// noteForm edits title and body interactively. The privacy and draft
// questions are only asked for new notes.
func noteForm(title, body *string, private, draft *bool, creating bool) error {
	fields := []huh.Field{
		huh.NewInput().Title("Title").Value(title),
		huh.NewText().Title("Body").Lines(8).Value(body),
	}
	if creating {
		fields = append(fields,
			huh.NewConfirm().Title("Keep it private?").Value(private),
			huh.NewConfirm().Title("Save as draft?").Value(draft),
		)
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return apperrors.ErrCancelled
		}
		return err
	}
	return nil
}
