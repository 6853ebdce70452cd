package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tally/internal/logger"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/store"
)

// syncedMsg reports a finished Refresh or Load.
type syncedMsg struct {
	what string
	err  error
}

// changedMsg reports a finished mutation.
type changedMsg struct {
	status string
	err    error
}

func (m Model) syncHabits() tea.Cmd {
	habits, ctx := m.deps.Habits, m.ctx
	return func() tea.Msg {
		return syncedMsg{what: "habits", err: habits.Refresh(ctx)}
	}
}

func (m Model) syncContent() tea.Cmd {
	content, ctx := m.deps.Content, m.ctx
	return func() tea.Msg {
		return syncedMsg{what: "notes", err: content.Load(ctx)}
	}
}

func (m Model) toggleHabit(id, name string) tea.Cmd {
	habits, ctx := m.deps.Habits, m.ctx
	return func() tea.Msg {
		completed, err := habits.ToggleCompletion(ctx, id, "")
		if err != nil {
			return changedMsg{err: err}
		}
		if completed {
			return changedMsg{status: fmt.Sprintf("✓ %s done", name)}
		}
		return changedMsg{status: fmt.Sprintf("○ %s not done", name)}
	}
}

func (m Model) createHabit(def models.HabitDefinition) tea.Cmd {
	habits, ctx := m.deps.Habits, m.ctx
	return func() tea.Msg {
		h, err := habits.CreateHabit(ctx, def)
		if err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{status: "Added habit: " + h.Name}
	}
}

func (m Model) archiveHabit(id, name string) tea.Cmd {
	habits, ctx := m.deps.Habits, m.ctx
	return func() tea.Msg {
		if _, err := habits.SetActive(ctx, id, false); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{status: "Archived habit: " + name}
	}
}

func (m Model) deleteHabit(id, name string) tea.Cmd {
	habits, ctx := m.deps.Habits, m.ctx
	return func() tea.Msg {
		if err := habits.DeleteHabit(ctx, id); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{status: "Deleted habit: " + name}
	}
}

func (m Model) createNote(fm NoteFormModel) tea.Cmd {
	content, ctx := m.deps.Content, m.ctx
	return func() tea.Msg {
		session := store.NewNote()
		var (
			item models.ContentItem
			err  error
		)
		if fm.Draft {
			item, err = session.SaveDraft(ctx, content, fm.Title, fm.Body)
		} else {
			item, err = session.Submit(ctx, content, fm.Title, fm.Body, fm.Private)
		}
		if err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{status: "Saved note: " + item.Title}
	}
}

func (m Model) publishDraft(draft models.ContentItem) tea.Cmd {
	content, ctx := m.deps.Content, m.ctx
	return func() tea.Msg {
		item, err := content.PublishDraft(ctx, draft)
		if err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{status: "Published: " + item.Title}
	}
}

func (m Model) deleteNote(item models.ContentItem, vis models.Visibility) tea.Cmd {
	content, ctx := m.deps.Content, m.ctx
	return func() tea.Msg {
		if err := content.Delete(ctx, item.ID, vis); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{status: "Deleted note: " + item.Title}
	}
}

func logFailure(what string, err error) {
	logger.Warn("Dashboard action failed", "action", what, "error", err)
}
