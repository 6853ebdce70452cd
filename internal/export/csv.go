// Package export writes habit data as CSV and as a summary image.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

var csvHeader = []string{"Habit Name", "Date", "Completed", "Current Streak", "Best Streak"}

// WriteCSV writes one row per completion in store order. A habit with no
// completions gets a single "No completions" row.
func WriteCSV(w io.Writer, habits []models.Habit) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, h := range habits {
		current := strconv.Itoa(h.CurrentStreak)
		best := strconv.Itoa(h.BestStreak)
		if len(h.Completions) == 0 {
			if err := cw.Write([]string{h.Name, constants.NoCompletionSentinel, "No", current, best}); err != nil {
				return fmt.Errorf("writing csv row for %s: %w", h.ID, err)
			}
			continue
		}
		for _, c := range h.Completions {
			if err := cw.Write([]string{h.Name, c.Date, "Yes", current, best}); err != nil {
				return fmt.Errorf("writing csv row for %s: %w", h.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename is the download name of a CSV export made at now.
func CSVFilename(now time.Time) string {
	return "habits-export-" + now.Format(constants.DateFormat) + ".csv"
}

// ImageFilename is the download name of a summary image made at now.
func ImageFilename(now time.Time) string {
	return "habit-progress-" + now.Format(constants.DateFormat) + ".png"
}
