package exports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/export"
)

type ExportCmd struct {
	CSV   ExportCSVCmd   `cmd:"" name:"csv" help:"Export every completion as CSV."`
	Image ExportImageCmd `cmd:"" help:"Render a progress summary PNG."`
}

type ExportCSVCmd struct {
	Output string `short:"o" help:"Output file, or '-' for stdout. Defaults to habits-export-<date>.csv."`
}

func (c *ExportCSVCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	path := c.Output
	if path == "" {
		path = export.CSVFilename(ctx.Clock.Time())
	}
	return write(ctx, path, func(w io.Writer) error {
		return export.WriteCSV(w, ctx.Habits.Habits())
	})
}

type ExportImageCmd struct {
	Output string `short:"o" help:"Output file, or '-' for stdout. Defaults to habit-progress-<date>.png."`
}

func (c *ExportImageCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	if err := ctx.SyncProfile(); err != nil {
		return err
	}
	path := c.Output
	if path == "" {
		path = export.ImageFilename(ctx.Clock.Time())
	}
	now := ctx.Clock.Time()
	return write(ctx, path, func(w io.Writer) error {
		return export.RenderSummaryPNG(w, ctx.Profile.Profile(), ctx.Habits.Habits(), now)
	})
}

// write renders into path atomically, or straight to the command output for "-".
func write(ctx *cli.Context, path string, render func(io.Writer) error) error {
	if path == "-" {
		return render(ctx.Out)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tally-export-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	ctx.Printf("✓ Exported to %s\n", path)
	return nil
}
