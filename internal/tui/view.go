package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/projection"
	"github.com/julianstephens/tally/internal/render"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = m.viewToday()
	case StateWeek:
		content = m.viewWeek()
	case StateCalendar:
		content = m.viewCalendar()
	case StateNotes:
		content = docStyle.Render(m.notes.View())
	case StateAddHabit, StateAddNote:
		content = docStyle.Render(m.form.View())
	case StateConfirm:
		content = m.viewConfirm()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewToday() string {
	done, total := m.checklist.Progress()
	header := render.TitleStyle.Render(fmt.Sprintf("%s  %d/%d done", m.deps.Habits.Today(), done, total))
	if total == 0 {
		return docStyle.Render(header + "\n\n" + render.MutedStyle.Render("No active habits. Press 'a' to add one."))
	}
	return docStyle.Render(header + "\n" + m.checklist.View())
}

func (m Model) viewWeek() string {
	week := projection.WeeklyGrid(m.deps.Habits.Habits(), m.deps.Clock.Time(), 0)
	return docStyle.Render(render.WeekGrid(week))
}

func (m Model) viewCalendar() string {
	grid := projection.MonthGrid(m.month, m.deps.Habits.Habits(), m.deps.Habits.Today())
	return docStyle.Render(render.Calendar(grid))
}

func (m Model) viewConfirm() string {
	prompt := ""
	if m.pending != nil {
		prompt = m.pending.prompt
	}
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(prompt),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewStatus() string {
	switch {
	case m.err != nil:
		return warningStyle.Render("⚠ " + apperrors.UserMessage(m.err))
	case m.loading > 0:
		return render.MutedStyle.Render("Syncing...")
	case m.status != "":
		return statusStyle.Render(m.status)
	}
	return ""
}
