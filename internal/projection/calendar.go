package projection

import (
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Next returns the following month, rolling December into January.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Prev returns the preceding month, rolling January into December.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%s %d", ym.Month, ym.Year)
}

// Cell is one day of a month grid.
type Cell struct {
	Date           string
	Day            int
	Weekday        time.Weekday
	InMonth        bool
	IsToday        bool
	Completed      int
	Total          int
	HasCompletions bool
	FullyCompleted bool
}

// Grid is a month laid out in whole Sunday-to-Saturday weeks.
type Grid struct {
	YearMonth
	Cells []Cell
}

// Weeks splits the grid into rows of seven cells.
func (g Grid) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(g.Cells)/7)
	for i := 0; i+7 <= len(g.Cells); i += 7 {
		weeks = append(weeks, g.Cells[i:i+7])
	}
	return weeks
}

// MonthGrid builds the calendar for ym. Only active habits are counted.
// today is the YYYY-MM-DD key of the current day.
func MonthGrid(ym YearMonth, habits []models.Habit, today string) Grid {
	// Calendar arithmetic in UTC avoids DST gaps; cells are keyed by date only
	first := time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	total := 0
	counts := make(map[string]int)
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		total++
		seen := make(map[string]bool, len(h.Completions))
		for _, c := range h.Completions {
			if !seen[c.Date] {
				seen[c.Date] = true
				counts[c.Date]++
			}
		}
	}

	grid := Grid{YearMonth: ym}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(constants.DateFormat)
		done := counts[key]
		grid.Cells = append(grid.Cells, Cell{
			Date:           key,
			Day:            d.Day(),
			Weekday:        d.Weekday(),
			InMonth:        d.Month() == ym.Month,
			IsToday:        key == today,
			Completed:      done,
			Total:          total,
			HasCompletions: done > 0,
			FullyCompleted: total > 0 && done == total,
		})
	}
	return grid
}

// DayEntry is a habit's state on one day.
type DayEntry struct {
	Habit     models.Habit
	Completed bool
}

// DayDetail lists the active habits and whether each was completed on day.
func DayDetail(habits []models.Habit, day string) []DayEntry {
	var entries []DayEntry
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		entries = append(entries, DayEntry{Habit: h.Clone(), Completed: h.CompletedOn(day)})
	}
	return entries
}
