package notes

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/render"
)

type NewNoteMsg struct{}

type PublishDraftMsg struct {
	Item models.ContentItem
}

type DeleteNoteMsg struct {
	Item       models.ContentItem
	Visibility models.Visibility
}

type Item struct {
	Note       models.ContentItem
	Visibility models.Visibility
}

func (i Item) Title() string {
	switch i.Visibility {
	case models.VisibilityDraft:
		return "[draft] " + i.Note.Title
	case models.VisibilityPrivate:
		return "[private] " + i.Note.Title
	}
	return i.Note.Title
}

func (i Item) Description() string {
	return render.Excerpt(i.Note.Body, 60)
}

func (i Item) FilterValue() string { return i.Note.Title }

type KeyMap struct {
	New     key.Binding
	Publish key.Binding
	Delete  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		Publish: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "publish draft"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Notes"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("note", "notes")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.New, keys.Publish}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.New, keys.Publish, keys.Delete}
	}
	return Model{list: l, keys: keys}
}

// SetContent lists drafts first, then public and private notes.
func (m *Model) SetContent(public, private, drafts []models.ContentItem) {
	items := make([]list.Item, 0, len(public)+len(private)+len(drafts))
	for _, n := range drafts {
		items = append(items, Item{Note: n, Visibility: models.VisibilityDraft})
	}
	for _, n := range public {
		items = append(items, Item{Note: n, Visibility: models.VisibilityPublic})
	}
	for _, n := range private {
		items = append(items, Item{Note: n, Visibility: models.VisibilityPrivate})
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.New):
			return m, func() tea.Msg { return NewNoteMsg{} }
		case key.Matches(msg, m.keys.Publish):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Visibility == models.VisibilityDraft {
				return m, func() tea.Msg { return PublishDraftMsg{Item: i.Note} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteNoteMsg{Item: i.Note, Visibility: i.Visibility} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}
