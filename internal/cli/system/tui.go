package system

import (
	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/tui"
)

type TuiCmd struct{}

func (cmd *TuiCmd) Run(ctx *cli.Context) error {
	return tui.Run(ctx.Ctx, tui.Deps{
		Habits:  ctx.Habits,
		Content: ctx.Content,
		Clock:   ctx.Clock,
		Saved: func() {
			ctx.SaveHabits()
			ctx.SaveContent()
		},
	})
}
