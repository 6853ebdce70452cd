package export

import (
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

// Summary holds the figures shown on the progress image.
type Summary struct {
	ActiveCount        int
	TotalCurrentStreak int
	MaxBestStreak      int
	// Streaking lists habits with a running streak in store order, at most eight.
	Streaking []models.Habit
}

// Summarize computes the image figures. Streaks are the API's counters.
func Summarize(habits []models.Habit) Summary {
	var s Summary
	for _, h := range habits {
		if h.IsActive {
			s.ActiveCount++
		}
		s.TotalCurrentStreak += h.CurrentStreak
		if h.BestStreak > s.MaxBestStreak {
			s.MaxBestStreak = h.BestStreak
		}
		if h.CurrentStreak > 0 && len(s.Streaking) < constants.SummaryStreakRows {
			s.Streaking = append(s.Streaking, h.Clone())
		}
	}
	return s
}
