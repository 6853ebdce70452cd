package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tally/internal/cli"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/render"
)

const defaultAvatarSize = 80

type ProfileCmd struct {
	Show    ProfileShowCmd    `cmd:"" default:"1" help:"Show your profile."`
	SetName ProfileSetNameCmd `cmd:"" name:"set-name" help:"Change your display name."`
	Avatar  AvatarCmd         `cmd:"" help:"Manage your profile picture."`
}

type ProfileShowCmd struct {
	Size int `help:"Avatar size in pixels for Gravatar URLs." default:"80"`
}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncProfile(); err != nil {
		return err
	}
	ctx.Println(render.Profile(ctx.Profile.Profile(), ctx.Profile.AvatarURL(ctx.API.BaseURL(), c.Size)))
	return nil
}

type ProfileSetNameCmd struct {
	Name string `arg:"" help:"New display name."`
}

func (c *ProfileSetNameCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncProfile(); err != nil {
		return err
	}
	ctx.Profile.BeginEdit()
	p, err := ctx.Profile.SaveProfile(ctx.Ctx, c.Name)
	if err != nil {
		ctx.Profile.CancelEdit()
		return err
	}
	ctx.SaveProfile()
	ctx.Printf("✓ Display name set to %s\n", p.Name)
	return nil
}

type AvatarCmd struct {
	Set    AvatarSetCmd    `cmd:"" help:"Upload a new profile picture."`
	Remove AvatarRemoveCmd `cmd:"" help:"Remove your profile picture."`
	URL    AvatarURLCmd    `cmd:"" name:"url" help:"Print the URL of your current avatar."`
}

type AvatarSetCmd struct {
	Path string `arg:"" type:"existingfile" help:"Image file to upload (max 5MB)."`
}

func (c *AvatarSetCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if err := ctx.SyncProfile(); err != nil {
		return err
	}

	file := models.AvatarFile{Name: filepath.Base(c.Path), Data: data}
	if err := ctx.Profile.StageAvatar(file); err != nil {
		return err
	}
	staged, _ := ctx.Profile.Staged()
	preview, err := ctx.Profile.Preview(ctx.Ctx)
	if err != nil {
		ctx.Profile.DiscardAvatar()
		return err
	}
	ctx.Printf("Staged %s (%s, %d bytes, %d byte preview)\n", staged.Name, staged.MimeType, staged.Size(), len(preview))

	ok, err := ctx.Confirm.Confirm(ctx.Ctx, fmt.Sprintf("Upload %s as your profile picture?", staged.Name))
	if err != nil {
		ctx.Profile.DiscardAvatar()
		return err
	}
	if !ok {
		ctx.Profile.DiscardAvatar()
		return apperrors.ErrCancelled
	}

	if _, err := ctx.Profile.CommitAvatar(ctx.Ctx); err != nil {
		return err
	}
	ctx.SaveProfile()
	ctx.Printf("✓ Avatar updated: %s\n", ctx.Profile.AvatarURL(ctx.API.BaseURL(), defaultAvatarSize))
	return nil
}

type AvatarRemoveCmd struct{}

func (c *AvatarRemoveCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncProfile(); err != nil {
		return err
	}
	if !ctx.Profile.Profile().HasAvatar() {
		ctx.Println("No uploaded avatar; Gravatar is already in use")
		return nil
	}
	if err := ctx.Profile.RemoveAvatar(ctx.Ctx, ctx.Confirm); err != nil {
		return err
	}
	ctx.SaveProfile()
	ctx.Println("✓ Avatar removed, falling back to Gravatar")
	return nil
}

type AvatarURLCmd struct {
	Size int `help:"Size in pixels for Gravatar URLs." default:"80"`
}

func (c *AvatarURLCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncProfile(); err != nil {
		return err
	}
	ctx.Println(ctx.Profile.AvatarURL(ctx.API.BaseURL(), c.Size))
	return nil
}
