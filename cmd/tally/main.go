package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/cli/exports"
	"github.com/julianstephens/tally/internal/cli/habits"
	"github.com/julianstephens/tally/internal/cli/notes"
	"github.com/julianstephens/tally/internal/cli/profile"
	"github.com/julianstephens/tally/internal/cli/system"
	"github.com/julianstephens/tally/internal/config"
	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/logger"
)

type App struct {
	Version kong.VersionFlag
	Config  config.Config `embed:""`
	Yes     bool          `short:"y" help:"Answer yes to every confirmation."`

	Tui     system.TuiCmd      `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Habit   habits.HabitCmd    `cmd:"" help:"Manage habits and completions."`
	Note    notes.NoteCmd      `cmd:"" help:"Manage notes and drafts."`
	Profile profile.ProfileCmd `cmd:"" help:"Manage your profile and avatar."`
	Export  exports.ExportCmd  `cmd:"" help:"Export habit data."`
	Auth    system.AuthCmd     `cmd:"" help:"Manage the stored API token."`
	Cache   system.CacheCmd    `cmd:"" help:"Inspect, back up and restore the offline cache."`
	Doctor  system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var app App
	parser, err := newParser(&app)
	if err != nil {
		apperrors.Fatal(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cfg := app.Config
	kctx.FatalIfErrorf(cfg.Validate())

	if err := logger.Init(logger.Config{Debug: cfg.Debug, DataDir: cfg.DataDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	appCtx, err := cli.New(ctx, cfg, cli.HuhConfirmer{AssumeYes: app.Yes})
	if err != nil {
		stop()
		apperrors.Fatal(err)
	}

	err = kctx.Run(appCtx)
	appCtx.Close()
	stop()

	if errors.Is(err, apperrors.ErrCancelled) {
		fmt.Println("Cancelled.")
		return
	}
	apperrors.Fatal(err)
}

func newParser(app *App, extra ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Habit and note tracking from the terminal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":       constants.Version,
			"default_color": constants.DefaultHabitColor,
			"weekly_rows":   strconv.Itoa(constants.WeeklyGridRows),
			"feed_limit":    strconv.Itoa(constants.PublicFeedLimit),
		},
	}
	return kong.New(app, append(opts, extra...)...)
}
