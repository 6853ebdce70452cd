package projection

import (
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/utils"
)

// WeekdayLabels is the fixed header of the weekly grid. The columns are the
// last seven days ending at the reference date, so the labels only line up
// with the real weekdays when the reference date is a Sunday; each DayMark
// carries its true weekday for renderers that want it.
var WeekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DayMark is one day of a habit's weekly vector.
type DayMark struct {
	Date      string
	Weekday   time.Weekday
	Completed bool
}

// WeekDates returns the seven calendar days ending at ref, oldest first.
func WeekDates(ref time.Time) []DayMark {
	ref = utils.StartOfDay(ref)
	days := make([]DayMark, 7)
	for i := range days {
		d := utils.AddDays(ref, i-6)
		days[i] = DayMark{Date: utils.DayKey(d), Weekday: d.Weekday()}
	}
	return days
}

// WeekVector marks the habit's completions over the seven days ending at ref.
func WeekVector(h models.Habit, ref time.Time) []DayMark {
	days := WeekDates(ref)
	for i := range days {
		days[i].Completed = h.CompletedOn(days[i].Date)
	}
	return days
}

// WeekRow is one habit of the weekly grid.
type WeekRow struct {
	Habit models.Habit
	Days  []DayMark
}

// Week is the multi-habit weekly progress grid.
type Week struct {
	Labels [7]string
	Dates  []DayMark
	Rows   []WeekRow
}

// WeeklyGrid builds rows for the first limit active habits in store order.
// A non-positive limit uses the default of six rows.
func WeeklyGrid(habits []models.Habit, ref time.Time, limit int) Week {
	if limit <= 0 {
		limit = constants.WeeklyGridRows
	}
	w := Week{Labels: WeekdayLabels, Dates: WeekDates(ref)}
	for _, h := range habits {
		if len(w.Rows) == limit {
			break
		}
		if !h.IsActive {
			continue
		}
		w.Rows = append(w.Rows, WeekRow{Habit: h.Clone(), Days: WeekVector(h, ref)})
	}
	return w
}
