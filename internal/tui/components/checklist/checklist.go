package checklist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/tally/internal/projection"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID   string
	Name string
}

type ArchiveHabitMsg struct {
	ID   string
	Name string
}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

type Item struct {
	Entry projection.ChecklistItem
}

func (i Item) Title() string {
	if i.Entry.CompletedToday {
		return "✓ " + i.Entry.Habit.Name
	}
	return "○ " + i.Entry.Habit.Name
}

func (i Item) Description() string {
	h := i.Entry.Habit
	state := "not completed today"
	if i.Entry.CompletedToday {
		state = "completed today"
	}
	if h.CurrentStreak > 0 {
		return fmt.Sprintf("%s · 🔥 %d day streak (best %d)", state, h.CurrentStreak, h.BestStreak)
	}
	return state
}

func (i Item) FilterValue() string { return i.Entry.Habit.Name }

type KeyMap struct {
	Toggle  key.Binding
	Add     key.Binding
	Archive key.Binding
	Delete  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "m"),
			key.WithHelp("space/m", "toggle"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
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
	done int
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetStatusBarItemName("habit", "habits")

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Archive, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

// SetItems replaces the checklist, keeping the cursor where it was.
func (m *Model) SetItems(entries []projection.ChecklistItem) {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	m.done = projection.CompletedCount(entries)
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

// Progress returns how many of the listed habits are done today.
func (m Model) Progress() (done, total int) {
	return m.done, len(m.list.Items())
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				h := i.Entry.Habit
				return m, func() tea.Msg { return ToggleHabitMsg{ID: h.ID, Name: h.Name} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok {
				h := i.Entry.Habit
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: h.ID, Name: h.Name} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				h := i.Entry.Habit
				return m, func() tea.Msg { return DeleteHabitMsg{ID: h.ID, Name: h.Name} }
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
