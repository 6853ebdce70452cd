package constants

import "time"

const (
	AppName            = "tally"
	DefaultKeyringUser = "api-token"
	DefaultDataDir     = "~/.config/tally"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Snapshot cache
	CacheFileName = "tally.db"
	LogFileName   = "tally.log"

	// Boundary defaults
	DefaultAPIURL      = "http://localhost:8080"
	DefaultHTTPTimeout = 15 * time.Second

	// Habit form
	DefaultHabitColor      = "#3b82f6"
	MaxHabitNameLen        = 100
	MaxHabitDescriptionLen = 500

	// Profile form
	MaxProfileNameLen = 100
	MaxAvatarBytes    = 5 * 1024 * 1024
	AvatarFormField   = "avatar"

	// Projections
	WeeklyGridRows       = 6
	SummaryStreakRows    = 8
	PublicFeedLimit      = 6
	NoCompletionSentinel = "No completions"
)

// HabitColors is the palette offered by the habit form, in display order.
var HabitColors = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#06b6d4",
	"#f97316",
	"#84cc16",
	"#ec4899",
	"#6b7280",
}
