package system

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/api"
	"github.com/julianstephens/tally/internal/cli"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/keyring"
)

type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Store an API token in the OS keyring."`
	Logout AuthLogoutCmd `cmd:"" help:"Remove the stored API token."`
	Status AuthStatusCmd `cmd:"" help:"Show where the API token comes from."`
}

// AuthLoginCmd stores the bearer token in the OS keyring
type AuthLoginCmd struct {
	Token    string `arg:"" optional:"" help:"API token. Omit to be prompted."`
	NoVerify bool   `name:"no-verify" help:"Store the token without checking it against the API."`
}

func (cmd *AuthLoginCmd) Run(ctx *cli.Context) error {
	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&token),
		)).RunWithContext(ctx.Ctx)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return apperrors.ErrCancelled
			}
			return err
		}
		token = strings.TrimSpace(token)
	}
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if !cmd.NoVerify {
		if err := verifyToken(ctx, token); err != nil {
			return err
		}
	}

	if err := keyring.SetToken(token); err != nil {
		return err
	}
	ctx.Println("✓ Token stored successfully in OS keyring")
	return nil
}

// verifyToken loads the profile with token. Only an auth rejection fails;
// an unreachable API is reported and the token is kept.
func verifyToken(ctx *cli.Context, token string) error {
	client := api.New(ctx.Config.APIURL,
		api.WithTokenSource(api.StaticToken(token)),
		api.WithTimeout(ctx.Config.Timeout),
	)
	p, err := client.GetProfile(ctx.Ctx)
	if err == nil {
		ctx.Printf("✓ Authenticated as %s\n", p.Email)
		return nil
	}
	var be *apperrors.BoundaryError
	if errors.As(err, &be) && (be.Status == http.StatusUnauthorized || be.Status == http.StatusForbidden) {
		return fmt.Errorf("token rejected by the API: %s", be.Message)
	}
	ctx.Printf("⚠️  Could not verify token: %s\n", apperrors.UserMessage(err))
	return nil
}

type AuthLogoutCmd struct{}

func (cmd *AuthLogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no token found in keyring")
		}
		return err
	}
	ctx.Println("✓ Token deleted from OS keyring")
	return nil
}

type AuthStatusCmd struct{}

func (cmd *AuthStatusCmd) Run(ctx *cli.Context) error {
	if ctx.Config.Token != "" {
		ctx.Println("✓ Using token from --token / TALLY_TOKEN")
	}
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		if ctx.Config.Token == "" {
			return errors.New("keyring unavailable")
		}
		return nil
	}
	ctx.Println("✓ OS keyring is available")

	_, err := keyring.GetToken()
	switch {
	case err == nil:
		ctx.Println("✓ Token is stored in keyring")
	case errors.Is(err, keyring.ErrNotFound):
		ctx.Println("ℹ No token stored in keyring. Use 'tally auth login' to store one")
	default:
		return err
	}
	return nil
}
