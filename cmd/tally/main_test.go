package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/cli/clitest"
)

// runArgs parses args with the real command tree and runs the result against ctx.
func runArgs(t *testing.T, ctx *cli.Context, args ...string) error {
	t.Helper()
	var app App
	help := &bytes.Buffer{}
	parser, err := newParser(&app, kong.Writers(help, help), kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kctx.Run(ctx)
}

func TestEndToEndWorkflow(t *testing.T) {
	_, srv := clitest.NewBackend(t)
	ctx, out := clitest.NewContext(t, srv)

	require.NoError(t, runArgs(t, ctx, "habit", "add", "Read", "-c", "#10b981", "-d", "20 pages"))
	assert.Contains(t, out.String(), "✓ Added habit: Read")

	require.NoError(t, runArgs(t, ctx, "habit", "add", "Run"))
	require.NoError(t, runArgs(t, ctx, "habit", "toggle", "read"))
	assert.Contains(t, out.String(), "✓ Read done for")

	out.Reset()
	require.NoError(t, runArgs(t, ctx, "habit"))
	assert.Contains(t, out.String(), "Read")
	assert.Contains(t, out.String(), "Run")

	out.Reset()
	require.NoError(t, runArgs(t, ctx, "habit", "list", "--filter", "completed-today"))
	assert.Contains(t, out.String(), "Read")
	assert.NotContains(t, out.String(), "Run")

	require.NoError(t, runArgs(t, ctx, "habit", "archive", "Run"))
	assert.Contains(t, out.String(), "✓ Habit Run is now")

	require.NoError(t, runArgs(t, ctx, "note", "create", "Hello", "-b", "First post"))
	require.NoError(t, runArgs(t, ctx, "note", "create", "Later", "-b", "Not yet", "--draft"))
	out.Reset()
	require.NoError(t, runArgs(t, ctx, "note", "list"))
	assert.Contains(t, out.String(), "Hello")
	assert.Contains(t, out.String(), "Later")

	csvPath := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, runArgs(t, ctx, "export", "csv", "-o", csvPath))
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Read")

	out.Reset()
	require.NoError(t, runArgs(t, ctx, "cache"))
	assert.Contains(t, out.String(), "habits")
}

func TestParseErrors(t *testing.T) {
	_, srv := clitest.NewBackend(t)
	ctx, _ := clitest.NewContext(t, srv)

	assert.Error(t, runArgs(t, ctx, "habit", "frobnicate"))
	assert.Error(t, runArgs(t, ctx, "habit", "show"))
	assert.Error(t, runArgs(t, ctx, "--cache", "redis", "habit"))
}

func TestDefaultsFromVars(t *testing.T) {
	var app App
	parser, err := newParser(&app, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"habit", "add", "Read"})
	require.NoError(t, err)
	assert.NotEmpty(t, app.Habit.Add.Color)

	_, err = parser.Parse([]string{"note", "feed"})
	require.NoError(t, err)
	assert.Positive(t, app.Note.Feed.Limit)
}
