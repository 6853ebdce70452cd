package projection

import "github.com/julianstephens/tally/internal/models"

// ChecklistItem is an active habit with its completion state for today.
type ChecklistItem struct {
	Habit          models.Habit
	CompletedToday bool
}

// Checklist projects the active habits in store order for the day key today.
func Checklist(habits []models.Habit, today string) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(habits))
	for _, h := range habits {
		if !h.IsActive {
			continue
		}
		items = append(items, ChecklistItem{Habit: h.Clone(), CompletedToday: h.CompletedOn(today)})
	}
	return items
}

// CompletedCount returns how many checklist items are done.
func CompletedCount(items []ChecklistItem) int {
	n := 0
	for _, it := range items {
		if it.CompletedToday {
			n++
		}
	}
	return n
}
