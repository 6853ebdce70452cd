// Package projection derives read-only views from habit snapshots.
// Every function here is pure and returns fresh slices.
package projection

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/julianstephens/tally/internal/models"
)

// Filter selects a subset of habits for the listing view.
type Filter string

const (
	FilterAll            Filter = "all"
	FilterCompletedToday Filter = "completed-today"
	FilterNotCompleted   Filter = "not-completed"
	FilterActive         Filter = "active"
	FilterArchived       Filter = "archived"
)

// Filters lists the accepted filter names.
var Filters = []Filter{FilterAll, FilterCompletedToday, FilterNotCompleted, FilterActive, FilterArchived}

// SortKey orders the habit listing.
type SortKey string

const (
	SortName          SortKey = "name"
	SortCurrentStreak SortKey = "current-streak"
	SortCreated       SortKey = "created"
)

// SortKeys lists the accepted sort key names.
var SortKeys = []SortKey{SortName, SortCurrentStreak, SortCreated}

// ParseFilter maps a flag value to a Filter. Unknown values mean FilterAll.
func ParseFilter(s string) Filter {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Filters, f) {
		return f
	}
	return FilterAll
}

// ParseSortKey maps a flag value to a SortKey. Unknown values mean SortName.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, k) {
		return k
	}
	return SortName
}

func (f Filter) match(h models.Habit, today string) bool {
	switch f {
	case FilterCompletedToday:
		return h.CompletedOn(today)
	case FilterNotCompleted:
		return !h.CompletedOn(today)
	case FilterActive:
		return h.IsActive
	case FilterArchived:
		return !h.IsActive
	default:
		return true
	}
}

// Apply filters habits and sorts the result stably by key.
// today is the YYYY-MM-DD key used by the completion filters.
func Apply(habits []models.Habit, filter Filter, key SortKey, today string) []models.Habit {
	out := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if filter.match(h, today) {
			out = append(out, h.Clone())
		}
	}

	switch key {
	case SortCurrentStreak:
		slices.SortStableFunc(out, func(a, b models.Habit) int {
			return b.CurrentStreak - a.CurrentStreak
		})
	case SortCreated:
		slices.SortStableFunc(out, func(a, b models.Habit) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	default:
		// collate.Collator is not safe for concurrent use
		c := collate.New(language.Und, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b models.Habit) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
	return out
}
