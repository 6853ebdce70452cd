// Package render formats habits, notes and profiles as terminal text.
// Both the command line and the TUI draw through it.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/projection"
)

const (
	markDone    = "✓"
	markMissing = "·"
)

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	MutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	DoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StreakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	todayStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	fullStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// Swatch is a dot in the habit's color.
func Swatch(hex string) string {
	if hex == "" {
		hex = constants.DefaultHabitColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

func mark(done bool) string {
	if done {
		return DoneStyle.Render(markDone)
	}
	return MutedStyle.Render(markMissing)
}

// ShortID trims an id for tables.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// HabitTable lists habits with today's state and their streak counters.
func HabitTable(habits []models.Habit, today string) string {
	if len(habits) == 0 {
		return MutedStyle.Render("No habits found")
	}
	t := newTable("ID", "", "Name", "Today", "Streak", "Best", "Total", "Status")
	for _, h := range habits {
		status := "active"
		if !h.IsActive {
			status = "archived"
		}
		t.Row(
			ShortID(h.ID),
			Swatch(h.Color),
			h.Name,
			mark(h.CompletedOn(today)),
			fmt.Sprintf("%d", h.CurrentStreak),
			fmt.Sprintf("%d", h.BestStreak),
			fmt.Sprintf("%d", h.TotalCompletions),
			status,
		)
	}
	return t.Render()
}

// Habit is the detail view of one habit.
func Habit(h models.Habit, today string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Swatch(h.Color), TitleStyle.Render(h.Name))
	if h.Description != "" {
		fmt.Fprintf(&b, "  %s\n", h.Description)
	}
	fmt.Fprintf(&b, "  ID:      %s\n", h.ID)
	status := "active"
	if !h.IsActive {
		status = "archived"
	}
	fmt.Fprintf(&b, "  Status:  %s\n", status)
	fmt.Fprintf(&b, "  Today:   %s\n", mark(h.CompletedOn(today)))
	fmt.Fprintf(&b, "  Streak:  %s (best %d, %d total)\n", StreakStyle.Render(fmt.Sprintf("%d", h.CurrentStreak)), h.BestStreak, h.TotalCompletions)
	if !h.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "  Created: %s\n", h.CreatedAt.Format(constants.DateFormat))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Checklist renders today's active habits.
func Checklist(items []projection.ChecklistItem) string {
	if len(items) == 0 {
		return MutedStyle.Render("No active habits. Add one with 'tally habit add'.")
	}
	var b strings.Builder
	for _, it := range items {
		box := "[ ]"
		if it.CompletedToday {
			box = DoneStyle.Render("[" + markDone + "]")
		}
		line := fmt.Sprintf("%s %s %s", box, Swatch(it.Habit.Color), it.Habit.Name)
		if it.Habit.CurrentStreak > 0 {
			line += " " + StreakStyle.Render(fmt.Sprintf("🔥%d", it.Habit.CurrentStreak))
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\n%d/%d done today", projection.CompletedCount(items), len(items))
	return b.String()
}

// WeekGrid renders the weekly progress grid.
func WeekGrid(w projection.Week) string {
	if len(w.Rows) == 0 {
		return MutedStyle.Render("No active habits")
	}
	headers := append([]string{"Habit"}, w.Labels[:]...)
	t := newTable(headers...)
	for _, row := range w.Rows {
		cells := []string{Swatch(row.Habit.Color) + " " + row.Habit.Name}
		for _, d := range row.Days {
			cells = append(cells, mark(d.Completed))
		}
		t.Row(cells...)
	}
	var dates []string
	if len(w.Dates) > 0 {
		dates = []string{w.Dates[0].Date, w.Dates[len(w.Dates)-1].Date}
	}
	out := t.Render()
	if len(dates) == 2 {
		out += "\n" + MutedStyle.Render(fmt.Sprintf("%s to %s", dates[0], dates[1]))
	}
	return out
}

// Calendar renders a month grid. Fully completed days are green, partial days amber.
func Calendar(g projection.Grid) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(g.YearMonth.String()) + "\n")
	for _, wd := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("%4s", wd)))
	}
	b.WriteString("\n")
	for _, week := range g.Weeks() {
		for _, c := range week {
			b.WriteString(calendarCell(c))
		}
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render("green: all done  amber: some done"))
	return b.String()
}

func calendarCell(c projection.Cell) string {
	s := fmt.Sprintf("%4d", c.Day)
	if !c.InMonth {
		return MutedStyle.Render(s)
	}
	style := lipgloss.NewStyle()
	switch {
	case c.FullyCompleted:
		style = fullStyle
	case c.HasCompletions:
		style = partialStyle
	}
	if c.IsToday {
		num := fmt.Sprintf("%d", c.Day)
		return strings.Repeat(" ", 4-len(num)) + style.Inherit(todayStyle).Render(num)
	}
	return style.Render(s)
}

// DayDetail lists each active habit's state on day.
func DayDetail(day string, entries []projection.DayEntry) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(day) + "\n")
	if len(entries) == 0 {
		b.WriteString(MutedStyle.Render("No active habits"))
		return b.String()
	}
	done := 0
	for _, e := range entries {
		if e.Completed {
			done++
		}
		fmt.Fprintf(&b, "%s %s %s\n", mark(e.Completed), Swatch(e.Habit.Color), e.Habit.Name)
	}
	fmt.Fprintf(&b, "\n%d/%d completed", done, len(entries))
	return b.String()
}
