package render

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/projection"
)

func habit(id, name string, active bool, days ...string) models.Habit {
	h := models.Habit{ID: id, Name: name, IsActive: active, Color: "#10b981"}
	for _, d := range days {
		h.Completions = append(h.Completions, models.Completion{Date: d})
	}
	return h
}

func TestHabitTable(t *testing.T) {
	habits := []models.Habit{
		habit("0123456789", "Read", true, "2025-01-02"),
		habit("abc", "Run", false),
	}
	out := HabitTable(habits, "2025-01-02")
	for _, want := range []string{"01234567", "Read", "Run", "archived", "active", "✓"} {
		if !strings.Contains(out, want) {
			t.Errorf("HabitTable() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789") {
		t.Errorf("HabitTable() should shorten ids")
	}
}

func TestHabitTableEmpty(t *testing.T) {
	if out := HabitTable(nil, "2025-01-02"); !strings.Contains(out, "No habits") {
		t.Errorf("HabitTable(nil) = %q", out)
	}
}

func TestChecklistCounts(t *testing.T) {
	items := projection.Checklist([]models.Habit{
		habit("1", "Read", true, "2025-01-02"),
		habit("2", "Run", true),
		habit("3", "Old", false),
	}, "2025-01-02")
	out := Checklist(items)
	if !strings.Contains(out, "1/2 done today") {
		t.Errorf("Checklist() = %q", out)
	}
	if strings.Contains(out, "Old") {
		t.Errorf("Checklist() should skip archived habits")
	}
}

func TestCalendarHasAllWeeks(t *testing.T) {
	g := projection.MonthGrid(projection.YearMonth{Year: 2025, Month: time.February}, nil, "2025-02-14")
	out := Calendar(g)
	if !strings.HasPrefix(out, "February 2025") {
		t.Errorf("Calendar() title = %q", strings.SplitN(out, "\n", 2)[0])
	}
	lines := strings.Split(out, "\n")
	// title + weekday header + weeks + legend
	if want := 2 + len(g.Weeks()) + 1; len(lines) != want {
		t.Errorf("Calendar() has %d lines, want %d", len(lines), want)
	}
	for _, line := range lines[2 : 2+len(g.Weeks())] {
		if w := len([]rune(line)); w != 28 {
			t.Errorf("week line %q has width %d, want 28", line, w)
		}
	}
}

func TestWeekGridRows(t *testing.T) {
	ref := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	w := projection.WeeklyGrid([]models.Habit{habit("1", "Read", true, "2025-01-02")}, ref, 0)
	out := WeekGrid(w)
	for _, want := range []string{"Habit", "Mon", "Sun", "Read", "2024-12-27 to 2025-01-02"} {
		if !strings.Contains(out, want) {
			t.Errorf("WeekGrid() missing %q in:\n%s", want, out)
		}
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		body string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"first line\nsecond", 20, "first line"},
		{"abcdefghij", 5, "abcd…"},
		{"  padded  ", 10, "padded"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.body, tt.n); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.body, tt.n, got, tt.want)
		}
	}
}

func TestProfileAvatarSource(t *testing.T) {
	url := "/uploads/a.png"
	out := Profile(models.Profile{Name: "Ada", Email: "ada@example.com", AvatarURL: &url}, "http://x/uploads/a.png")
	if !strings.Contains(out, "uploaded") || !strings.Contains(out, "ada@example.com") {
		t.Errorf("Profile() = %q", out)
	}
	out = Profile(models.Profile{Email: "ada@example.com"}, "https://www.gravatar.com/avatar/x")
	if !strings.Contains(out, "gravatar") || !strings.Contains(out, "(no name)") {
		t.Errorf("Profile() = %q", out)
	}
}
