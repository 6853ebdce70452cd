// Package config holds the global flags and the .env loading that runs
// before they are parsed.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/utils"
)

// Cache backends for the offline snapshot.
const (
	CacheSQLite = "sqlite"
	CacheJSON   = "json"
	CacheNone   = "none"
)

// Config is embedded in the kong CLI; every field can come from the environment.
type Config struct {
	APIURL   string        `name:"api-url" help:"Base URL of the tally API." env:"TALLY_API_URL" default:"http://localhost:8080"`
	Token    string        `help:"API token (overrides the keyring)." env:"TALLY_TOKEN"`
	Timezone string        `help:"IANA time zone used for 'today'." env:"TALLY_TIMEZONE" default:"Local"`
	DataDir  string        `help:"Directory for logs and the offline cache." env:"TALLY_DATA_DIR" default:"~/.config/tally" type:"path"`
	Debug    bool          `help:"Log debug output to stderr." env:"TALLY_DEBUG"`
	Timeout  time.Duration `help:"Per-request API timeout." env:"TALLY_TIMEOUT" default:"15s"`
	Cache    string        `help:"Offline cache backend (sqlite, json, none)." env:"TALLY_CACHE" enum:"sqlite,json,none" default:"sqlite"`
}

// LoadDotEnv loads ./.env and <data dir>/.env. Variables already set in the
// environment win, and missing files are ignored.
func LoadDotEnv() error {
	dataDir := os.Getenv(constants.EnvDataDir)
	if dataDir == "" {
		dataDir = constants.DefaultDataDir
	}
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return err
	}

	for _, path := range []string{".env", filepath.Join(dataDir, ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Validate normalizes the config and checks values kong cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API URL %q (expected http(s)://host[:port])", c.APIURL)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	dir, err := ExpandHome(c.DataDir)
	if err != nil {
		return err
	}
	c.DataDir = dir
	return nil
}

// CachePath is the snapshot file for the configured backend, or "" when caching is off.
func (c Config) CachePath() string {
	switch c.Cache {
	case CacheJSON:
		return filepath.Join(c.DataDir, "cache.json")
	case CacheNone:
		return ""
	default:
		return filepath.Join(c.DataDir, constants.CacheFileName)
	}
}

// TokenSource prefers the --token flag and falls back to the keyring.
func (c Config) TokenSource() keyring.TokenSource {
	return keyring.TokenSource{Explicit: c.Token}
}
