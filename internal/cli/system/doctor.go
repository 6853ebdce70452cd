package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tally/internal/cli"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/keyring"
	"github.com/julianstephens/tally/internal/utils"
)

type DoctorCmd struct{}

type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (int, error)
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	report := func(name string, err error) {
		if err != nil {
			ctx.Printf("❌ %s: FAIL\n", name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			return
		}
		ctx.Printf("✓ %s: OK\n", name)
	}
	warn := func(name string, err error) {
		if err != nil {
			ctx.Printf("⚠ %s: WARNING\n", name)
			ctx.Printf("   %v\n", err)
			return
		}
		ctx.Printf("✓ %s: OK\n", name)
	}

	// Check 1: timezone resolves
	report("Clock/timezone", checkTimezone(ctx.Config.Timezone))

	// Check 2: a token is configured (warning only; the API decides)
	warn("API token", checkToken(ctx))

	// Check 3: API reachable and the token accepted
	apiErr := checkAPI(ctx)
	report("API reachable", apiErr)

	// Check 4: offline cache
	if ctx.Cache == nil {
		ctx.Printf("⊘ Offline cache: SKIPPED (disabled)\n")
	} else {
		report("Offline cache", checkCache(ctx))
	}

	if hasError {
		ctx.Println()
		return errors.New("one or more checks failed")
	}
	ctx.Println()
	ctx.Println("All checks passed")
	return nil
}

func checkTimezone(tz string) error {
	clock, err := utils.NewClock(tz)
	if err != nil {
		return err
	}
	now := clock.Time()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkToken(ctx *cli.Context) error {
	token, err := ctx.Config.TokenSource().Token()
	if err != nil {
		return err
	}
	if token == "" {
		if !keyring.IsAvailable() {
			return errors.New("no token configured and the OS keyring is unavailable")
		}
		return errors.New("no token configured. Use 'tally auth login' or TALLY_TOKEN")
	}
	return nil
}

func checkAPI(ctx *cli.Context) error {
	_, err := ctx.API.GetProfile(ctx.Ctx)
	if err == nil {
		return nil
	}
	if apperrors.IsTransport(err) {
		return fmt.Errorf("%s unreachable: %w", ctx.Config.APIURL, err)
	}
	return fmt.Errorf("%s", apperrors.UserMessage(err))
}

func checkCache(ctx *cli.Context) error {
	if v, ok := ctx.Cache.(schemaVersioner); ok {
		if _, err := v.SchemaVersion(ctx.Ctx); err != nil {
			return err
		}
	}
	if _, err := ctx.Cache.SyncLog(1); err != nil {
		return fmt.Errorf("sync log unreadable: %w", err)
	}
	return nil
}
