package constants

const (
	// Environment variables read by the CLI (after .env files are loaded)
	EnvAPIURL   = "TALLY_API_URL"
	EnvToken    = "TALLY_TOKEN"
	EnvTimezone = "TALLY_TIMEZONE"
	EnvDataDir  = "TALLY_DATA_DIR"
	EnvDebug    = "TALLY_DEBUG"
	EnvTimeout  = "TALLY_TIMEOUT"

	DefaultTimezone = "Local" // Use system local timezone by default
)
