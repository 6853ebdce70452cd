package cli

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// HuhConfirmer asks yes/no questions in the terminal.
type HuhConfirmer struct {
	// AssumeYes skips the prompt and confirms.
	AssumeYes bool
}

// Confirm implements store.Confirmer. Aborting the prompt counts as declining.
func (h HuhConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if h.AssumeYes {
		return true, nil
	}

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
