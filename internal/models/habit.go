package models

import "time"

// Habit represents a recurring practice tracked per calendar day.
// The streak counters are supplied by the backend and are never derived locally.
type Habit struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
	Color            string       `json:"color"`
	IsActive         bool         `json:"is_active"`
	CreatedAt        time.Time    `json:"created_at"`
	Completions      []Completion `json:"completions"`
	CurrentStreak    int          `json:"current_streak"`
	BestStreak       int          `json:"best_streak"`
	TotalCompletions int          `json:"total_completions"`
}

// Completion records that a habit was performed on a day.
type Completion struct {
	Date string `json:"date"` // YYYY-MM-DD format
}

// HabitDefinition is the editable part of a habit.
type HabitDefinition struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"required,hexcolor"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// CompletedOn reports whether the habit has a completion for day.
func (h Habit) CompletedOn(day string) bool {
	for _, c := range h.Completions {
		if c.Date == day {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with h.
func (h Habit) Clone() Habit {
	out := h
	if h.Completions != nil {
		out.Completions = append([]Completion(nil), h.Completions...)
	}
	return out
}

// Normalize drops duplicate completion dates, keeping the first occurrence.
func (h *Habit) Normalize() {
	if len(h.Completions) < 2 {
		return
	}
	seen := make(map[string]bool, len(h.Completions))
	kept := h.Completions[:0:0]
	for _, c := range h.Completions {
		if seen[c.Date] {
			continue
		}
		seen[c.Date] = true
		kept = append(kept, c)
	}
	h.Completions = kept
}

// SetCompleted adds or removes the completion for day.
func (h *Habit) SetCompleted(day string, completed bool) {
	if completed {
		if !h.CompletedOn(day) {
			h.Completions = append(h.Completions, Completion{Date: day})
		}
		return
	}
	kept := h.Completions[:0:0]
	for _, c := range h.Completions {
		if c.Date != day {
			kept = append(kept, c)
		}
	}
	h.Completions = kept
}

// ToggleResult is the backend's answer to a completion toggle.
type ToggleResult struct {
	Completed bool `json:"completed"`
}
