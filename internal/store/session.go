package store

import (
	"context"
	"fmt"

	"github.com/julianstephens/tally/internal/models"
)

// EditMode says what the note editor is doing.
type EditMode int

const (
	ModeCreate EditMode = iota
	ModeEditNote
	ModeEditDraft
	ModeEditPrivate
)

func (m EditMode) String() string {
	switch m {
	case ModeEditNote:
		return "edit-note"
	case ModeEditDraft:
		return "edit-draft"
	case ModeEditPrivate:
		return "edit-private"
	default:
		return "create"
	}
}

// EditSession is the state of the note editor: a mode and, for edits, the item.
type EditSession struct {
	Mode EditMode
	Item models.ContentItem
}

// NewNote starts a session for a new note.
func NewNote() EditSession {
	return EditSession{Mode: ModeCreate}
}

// EditItem starts a session for an item held in vis.
func EditItem(item models.ContentItem, vis models.Visibility) EditSession {
	mode := ModeEditNote
	switch vis {
	case models.VisibilityDraft:
		mode = ModeEditDraft
	case models.VisibilityPrivate:
		mode = ModeEditPrivate
	}
	return EditSession{Mode: mode, Item: item}
}

// Origin is the collection the edited item comes from.
func (e EditSession) Origin() models.Visibility {
	switch e.Mode {
	case ModeEditDraft:
		return models.VisibilityDraft
	case ModeEditPrivate:
		return models.VisibilityPrivate
	default:
		return models.VisibilityPublic
	}
}

// Submit saves the editor contents. New notes are published directly,
// with isPrivate choosing the collection; submitting a draft publishes it.
func (e EditSession) Submit(ctx context.Context, s *ContentStore, title, body string, isPrivate bool) (models.ContentItem, error) {
	if e.Mode == ModeCreate {
		return s.Create(ctx, title, body, CreateOptions{IsPrivate: isPrivate})
	}
	return s.Edit(ctx, e.Item.ID, Changes{
		Title:   title,
		Body:    body,
		Publish: e.Mode == ModeEditDraft,
	}, e.Origin())
}

// SaveDraft stores a new note as a draft. Only valid when creating.
func (e EditSession) SaveDraft(ctx context.Context, s *ContentStore, title, body string) (models.ContentItem, error) {
	if e.Mode != ModeCreate {
		return models.ContentItem{}, fmt.Errorf("cannot save a draft while in %s mode", e.Mode)
	}
	return s.Create(ctx, title, body, CreateOptions{IsDraft: true})
}
