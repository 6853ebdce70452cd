package projection

import (
	"testing"
	"time"

	"github.com/julianstephens/tally/internal/models"
)

func habit(id, name string, active bool, days ...string) models.Habit {
	h := models.Habit{ID: id, Name: name, IsActive: active}
	for _, d := range days {
		h.Completions = append(h.Completions, models.Completion{Date: d})
	}
	return h
}

func ids(habits []models.Habit) []string {
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyFilters(t *testing.T) {
	today := "2025-03-10"
	habits := []models.Habit{
		habit("1", "b", true, today),
		habit("2", "a", true),
		habit("3", "c", false, today),
		habit("4", "d", false, "2025-03-09"),
	}

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterCompletedToday, []string{"1", "3"}},
		{FilterNotCompleted, []string{"2", "4"}},
		{FilterActive, []string{"1", "2"}},
		{FilterArchived, []string{"3", "4"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := ids(Apply(habits, tt.filter, SortCreated, today))
			if !equalIDs(got, tt.want) {
				t.Errorf("Apply(%s) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestApplyAllIsIdentityUnderEqualKeys(t *testing.T) {
	habits := []models.Habit{habit("3", "x", true), habit("1", "y", false), habit("2", "z", true)}
	// All created at the zero time, so the stable created sort keeps input order
	got := ids(Apply(habits, FilterAll, SortCreated, "2025-01-01"))
	if !equalIDs(got, []string{"3", "1", "2"}) {
		t.Errorf("Apply(all) = %v, want input order", got)
	}
}

func TestApplyNotCompletedExample(t *testing.T) {
	today := "2025-06-01"
	habits := []models.Habit{habit("1", "one", true, today), habit("2", "two", true)}
	got := ids(Apply(habits, FilterNotCompleted, SortName, today))
	if !equalIDs(got, []string{"2"}) {
		t.Errorf("Apply(not-completed) = %v, want [2]", got)
	}
}

func TestApplySortName(t *testing.T) {
	habits := []models.Habit{
		habit("1", "walk", true),
		habit("2", "Read", true),
		habit("3", "read", true),
		habit("4", "Écrire", true),
		habit("5", "apple", true),
	}
	got := ids(Apply(habits, FilterAll, SortName, ""))
	want := []string{"5", "4", "2", "3", "1"}
	if !equalIDs(got, want) {
		t.Errorf("Apply(name) = %v, want %v", got, want)
	}
}

func TestApplySortNameStableForDuplicates(t *testing.T) {
	habits := []models.Habit{habit("b", "Same", true), habit("x", "Other", true), habit("a", "Same", true)}
	got := ids(Apply(habits, FilterAll, SortName, ""))
	want := []string{"x", "b", "a"}
	if !equalIDs(got, want) {
		t.Errorf("Apply(name) = %v, want %v", got, want)
	}
}

func TestApplySortStreakAndCreated(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	habits := []models.Habit{
		{ID: "1", CurrentStreak: 2, CreatedAt: base},
		{ID: "2", CurrentStreak: 5, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "3", CurrentStreak: 2, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "4", CreatedAt: base.Add(24 * time.Hour)},
	}

	if got := ids(Apply(habits, FilterAll, SortCurrentStreak, "")); !equalIDs(got, []string{"2", "1", "3", "4"}) {
		t.Errorf("Apply(current-streak) = %v", got)
	}
	if got := ids(Apply(habits, FilterAll, SortCreated, "")); !equalIDs(got, []string{"2", "3", "4", "1"}) {
		t.Errorf("Apply(created) = %v", got)
	}
}

func TestApplyDoesNotAliasInput(t *testing.T) {
	habits := []models.Habit{habit("1", "a", true, "2025-01-01")}
	out := Apply(habits, FilterAll, SortName, "")
	out[0].Completions[0].Date = "changed"
	if habits[0].Completions[0].Date != "2025-01-01" {
		t.Error("Apply() result shares completions with its input")
	}
}

func TestParseFilterAndSortKey(t *testing.T) {
	tests := []struct {
		in         string
		wantFilter Filter
		wantSort   SortKey
	}{
		{"archived", FilterArchived, SortName},
		{" Completed-Today ", FilterCompletedToday, SortName},
		{"current-streak", FilterAll, SortCurrentStreak},
		{"created", FilterAll, SortCreated},
		{"bogus", FilterAll, SortName},
		{"", FilterAll, SortName},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFilter(tt.in); got != tt.wantFilter {
				t.Errorf("ParseFilter(%q) = %q, want %q", tt.in, got, tt.wantFilter)
			}
			if got := ParseSortKey(tt.in); got != tt.wantSort {
				t.Errorf("ParseSortKey(%q) = %q, want %q", tt.in, got, tt.wantSort)
			}
		})
	}
}

func TestMonthGridSpan(t *testing.T) {
	for year := 2023; year <= 2026; year++ {
		for m := time.January; m <= time.December; m++ {
			ym := YearMonth{Year: year, Month: m}
			g := MonthGrid(ym, nil, "")
			if len(g.Cells)%7 != 0 {
				t.Fatalf("%s: %d cells, not a multiple of 7", ym, len(g.Cells))
			}
			if g.Cells[0].Weekday != time.Sunday {
				t.Errorf("%s: first cell is %s", ym, g.Cells[0].Weekday)
			}
			if g.Cells[len(g.Cells)-1].Weekday != time.Saturday {
				t.Errorf("%s: last cell is %s", ym, g.Cells[len(g.Cells)-1].Weekday)
			}
			first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
			last := first.AddDate(0, 1, -1)
			inMonth := 0
			for _, c := range g.Cells {
				if c.InMonth {
					inMonth++
				}
			}
			if inMonth != last.Day() {
				t.Errorf("%s: %d in-month cells, want %d", ym, inMonth, last.Day())
			}
			if len(g.Weeks()) != len(g.Cells)/7 {
				t.Errorf("%s: Weeks() returned %d rows", ym, len(g.Weeks()))
			}
		}
	}
}

func TestMonthGridCounts(t *testing.T) {
	habits := []models.Habit{
		habit("1", "a", true, "2025-02-03", "2025-02-04"),
		habit("2", "b", true, "2025-02-03"),
		habit("3", "c", false, "2025-02-04", "2025-02-05"),
	}
	g := MonthGrid(YearMonth{Year: 2025, Month: time.February}, habits, "2025-02-04")

	byDate := map[string]Cell{}
	for _, c := range g.Cells {
		byDate[c.Date] = c
	}

	full := byDate["2025-02-03"]
	if full.Completed != 2 || full.Total != 2 || !full.FullyCompleted || !full.HasCompletions {
		t.Errorf("2025-02-03 = %+v, want fully completed 2/2", full)
	}
	partial := byDate["2025-02-04"]
	if partial.Completed != 1 || partial.FullyCompleted || !partial.HasCompletions || !partial.IsToday {
		t.Errorf("2025-02-04 = %+v, want 1/2 today", partial)
	}
	archivedOnly := byDate["2025-02-05"]
	if archivedOnly.Completed != 0 || archivedOnly.HasCompletions {
		t.Errorf("2025-02-05 = %+v, archived habits must not count", archivedOnly)
	}
	// February 2025 starts on a Saturday, so the grid opens in January
	if g.Cells[0].Date != "2025-01-26" || g.Cells[0].InMonth {
		t.Errorf("first cell = %+v, want 2025-01-26 outside the month", g.Cells[0])
	}
}

func TestMonthGridNoActiveHabits(t *testing.T) {
	g := MonthGrid(YearMonth{Year: 2025, Month: time.March}, []models.Habit{habit("1", "a", false, "2025-03-01")}, "")
	for _, c := range g.Cells {
		if c.FullyCompleted || c.Total != 0 {
			t.Fatalf("cell %s = %+v, want empty", c.Date, c)
		}
	}
}

func TestYearMonthNavigation(t *testing.T) {
	dec := YearMonth{Year: 2024, Month: time.December}
	if got := dec.Next(); got != (YearMonth{Year: 2025, Month: time.January}) {
		t.Errorf("Next() = %v", got)
	}
	jan := YearMonth{Year: 2025, Month: time.January}
	if got := jan.Prev(); got != dec {
		t.Errorf("Prev() = %v", got)
	}
	if got := (YearMonth{Year: 2025, Month: time.June}).Next().Prev(); got.Month != time.June {
		t.Errorf("Next().Prev() = %v", got)
	}
	if got := jan.String(); got != "January 2025" {
		t.Errorf("String() = %q", got)
	}
}

func TestDayDetail(t *testing.T) {
	habits := []models.Habit{habit("1", "a", true, "2025-01-01"), habit("2", "b", false, "2025-01-01"), habit("3", "c", true)}
	got := DayDetail(habits, "2025-01-01")
	if len(got) != 2 {
		t.Fatalf("DayDetail() returned %d entries, want 2", len(got))
	}
	if !got[0].Completed || got[1].Completed {
		t.Errorf("DayDetail() = %+v", got)
	}
}

func TestWeekVectorExample(t *testing.T) {
	h := habit("1", "Read", true, "2025-01-01", "2025-01-02")
	ref := time.Date(2025, 1, 2, 15, 30, 0, 0, time.UTC)

	got := WeekVector(h, ref)
	if len(got) != 7 {
		t.Fatalf("WeekVector() len = %d, want 7", len(got))
	}
	if got[0].Date != "2024-12-27" || got[6].Date != "2025-01-02" {
		t.Errorf("WeekVector() spans %s..%s, want 2024-12-27..2025-01-02", got[0].Date, got[6].Date)
	}
	for i, d := range got {
		want := i >= 5
		if d.Completed != want {
			t.Errorf("day %d (%s) completed = %v, want %v", i, d.Date, d.Completed, want)
		}
	}
	if got[6].Weekday != time.Thursday {
		t.Errorf("last weekday = %s, want Thursday", got[6].Weekday)
	}
}

func TestWeekVectorAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	ref := time.Date(2025, 3, 12, 0, 30, 0, 0, loc)
	got := WeekDates(ref)
	want := []string{"2025-03-06", "2025-03-07", "2025-03-08", "2025-03-09", "2025-03-10", "2025-03-11", "2025-03-12"}
	for i := range want {
		if got[i].Date != want[i] {
			t.Errorf("WeekDates()[%d] = %s, want %s", i, got[i].Date, want[i])
		}
	}
}

func TestWeeklyGridLimit(t *testing.T) {
	var habits []models.Habit
	habits = append(habits, habit("archived", "z", false))
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		habits = append(habits, habit(id, id, true))
	}
	ref := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	w := WeeklyGrid(habits, ref, 0)
	if len(w.Rows) != 6 {
		t.Fatalf("WeeklyGrid() rows = %d, want 6", len(w.Rows))
	}
	if w.Rows[0].Habit.ID != "1" || w.Rows[5].Habit.ID != "6" {
		t.Errorf("WeeklyGrid() rows start %s end %s", w.Rows[0].Habit.ID, w.Rows[5].Habit.ID)
	}
	if w.Labels[0] != "Mon" || w.Labels[6] != "Sun" {
		t.Errorf("Labels = %v", w.Labels)
	}
	if len(WeeklyGrid(habits, ref, 2).Rows) != 2 {
		t.Error("WeeklyGrid() ignored explicit limit")
	}
}

func TestChecklist(t *testing.T) {
	today := "2025-01-02"
	items := Checklist([]models.Habit{habit("1", "a", true, today), habit("2", "b", false, today), habit("3", "c", true)}, today)
	if len(items) != 2 {
		t.Fatalf("Checklist() len = %d, want 2", len(items))
	}
	if !items[0].CompletedToday || items[1].CompletedToday {
		t.Errorf("Checklist() = %+v", items)
	}
	if CompletedCount(items) != 1 {
		t.Errorf("CompletedCount() = %d, want 1", CompletedCount(items))
	}
}
