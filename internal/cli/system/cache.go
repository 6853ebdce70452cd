package system

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/tally/internal/backup"
	"github.com/julianstephens/tally/internal/cli"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/render"
)

const syncLogLimit = 10

type CacheCmd struct {
	Status  CacheStatusCmd  `cmd:"" default:"1" help:"Show the offline cache and its recent syncs."`
	Clear   CacheClearCmd   `cmd:"" help:"Back up, then delete every cached snapshot."`
	Backup  CacheBackupCmd  `cmd:"" help:"Copy the offline cache into the backups directory."`
	Backups CacheBackupsCmd `cmd:"" help:"List cache backups."`
	Restore CacheRestoreCmd `cmd:"" help:"Replace the offline cache with a backup."`
}

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	path := ctx.Config.CachePath()
	if ctx.Cache == nil || path == "" {
		return nil, errors.New("offline cache is disabled")
	}
	return backup.NewManager(path, ctx.Clock.Time), nil
}

type CacheStatusCmd struct{}

func (cmd *CacheStatusCmd) Run(ctx *cli.Context) error {
	if ctx.Cache == nil {
		ctx.Println("ℹ Offline cache is disabled (TALLY_CACHE=none)")
		return nil
	}
	ctx.Printf("Backend: %s\n", ctx.Config.Cache)
	ctx.Printf("Path:    %s\n", ctx.Cache.Path())

	entries, err := ctx.Cache.SyncLog(syncLogLimit)
	if err != nil {
		return fmt.Errorf("failed to read sync log: %w", err)
	}
	if len(entries) == 0 {
		ctx.Println("No syncs recorded yet")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(render.MutedStyle).
		Headers("Snapshot", "Items", "Synced")
	loc := ctx.Clock.Time().Location()
	for _, e := range entries {
		t.Row(string(e.Kind), fmt.Sprintf("%d", e.ItemCount), e.SyncedAt.In(loc).Format("2006-01-02 15:04:05"))
	}
	ctx.Println(t.Render())
	return nil
}

type CacheClearCmd struct{}

func (cmd *CacheClearCmd) Run(ctx *cli.Context) error {
	if ctx.Cache == nil {
		return errors.New("offline cache is disabled")
	}
	ok, err := ctx.Confirm.Confirm(ctx.Ctx, "Delete every cached snapshot?")
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCancelled
	}
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create()
	if err != nil && !errors.Is(err, backup.ErrNoCache) {
		return fmt.Errorf("refusing to clear cache without a backup: %w", err)
	}
	if err == nil {
		ctx.Printf("✓ Backed up to %s\n", info.Path)
	}
	if err := ctx.Cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	ctx.Println("✓ Offline cache cleared")
	return nil
}

type CacheBackupCmd struct{}

func (cmd *CacheBackupCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	info, err := mgr.Create()
	if err != nil {
		return err
	}
	ctx.Printf("✓ Backed up to %s (%s)\n", info.Path, humanize.Bytes(uint64(info.Size)))
	return nil
}

type CacheBackupsCmd struct{}

func (cmd *CacheBackupsCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		ctx.Println("No backups found")
		return nil
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(render.MutedStyle).
		Headers("Backup", "Taken", "Size")
	loc := ctx.Clock.Time().Location()
	for _, b := range backups {
		t.Row(filepath.Base(b.Path), b.Timestamp.In(loc).Format("2006-01-02 15:04:05"), humanize.Bytes(uint64(b.Size)))
	}
	ctx.Println(t.Render())
	ctx.Printf("%s\n", render.MutedStyle.Render(mgr.Dir()))
	return nil
}

type CacheRestoreCmd struct {
	Backup string `arg:"" optional:"" help:"Backup file name or path. Defaults to the newest backup."`
}

func (cmd *CacheRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}

	var path string
	switch {
	case cmd.Backup == "":
		latest, err := mgr.Latest()
		if err != nil {
			return err
		}
		path = latest.Path
	case filepath.Base(cmd.Backup) == cmd.Backup:
		path = filepath.Join(mgr.Dir(), cmd.Backup)
	default:
		path = cmd.Backup
	}

	ok, err := ctx.Confirm.Confirm(ctx.Ctx, fmt.Sprintf("Replace the offline cache with %s?", filepath.Base(path)))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCancelled
	}

	if err := ctx.Cache.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	saved, restoreErr := mgr.Restore(path)

	// Reopen whatever is on disk, restored or not
	cache, err := cli.OpenCache(ctx.Config)
	ctx.Cache = cache
	if restoreErr != nil {
		return restoreErr
	}
	if err != nil {
		return fmt.Errorf("restored cache failed to open: %w", err)
	}
	if saved.Path != "" {
		ctx.Printf("ℹ Previous cache saved to %s\n", saved.Path)
	}
	ctx.Printf("✓ Restored offline cache from %s\n", filepath.Base(path))
	return nil
}
