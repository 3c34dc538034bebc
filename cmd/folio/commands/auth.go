package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/foliolab/folio/internal/app"
	"github.com/foliolab/folio/internal/authflow"
)

// loginTimeout bounds how long the loopback flow waits for the browser redirect.
const loginTimeout = 5 * time.Minute

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and persist the issued token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "code",
				Usage: "authorization code (skips the loopback flow)",
			},
			&cli.BoolFlag{
				Name:  "token",
				Usage: "paste a token directly instead of running the OAuth flow",
			},
		},
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAndInstrument(cmd)
	if err != nil {
		return err
	}
	client, store, err := app.NewClient(cfg)
	if err != nil {
		return err
	}

	if cmd.Bool("token") {
		token, err := promptToken(cmd)
		if err != nil {
			return err
		}
		// The login flow is the external collaborator that seeds the
		// persistent tier; SetToken only ever targets the session tier.
		if err := store.Persistent().Write(ctx, token); err != nil {
			return fmt.Errorf("saving token: %w", err)
		}
		fmt.Fprintln(cmd.Writer, "Token saved.")
		return nil
	}

	code := cmd.String("code")
	if code == "" {
		code, err = captureCode(ctx, cfg, cmd)
		if err != nil {
			return err
		}
	}

	token, err := client.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}
	if err := store.Persistent().Write(ctx, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(cmd.Writer, "Logged in.")
	return nil
}

// captureCode runs the loopback callback server for one login attempt and
// returns the authorization code delivered by the browser redirect.
func captureCode(ctx context.Context, cfg *app.Config, cmd *cli.Command) (string, error) {
	listener := authflow.New(slog.Default())

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	errCh, err := listener.Start(waitCtx, cfg.OAuth.CallbackAddr)
	if err != nil {
		return "", fmt.Errorf("starting callback server: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = listener.Shutdown(shutdownCtx)
	}()

	authURL := authflow.AuthorizeURL(cfg.OAuth.AuthURL, cfg.OAuth.ClientID, listener.RedirectURI(), listener.State())
	fmt.Fprintf(cmd.Writer, "Open this URL in your browser to sign in:\n\n  %s\n\n", authURL)

	var code string
	g, gCtx := errgroup.WithContext(waitCtx)
	g.Go(func() error {
		select {
		case err, ok := <-errCh:
			if ok && err != nil {
				return fmt.Errorf("callback server: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})
	g.Go(func() error {
		// Release the server monitor once a code arrives (or the wait fails).
		defer cancel()
		c, err := listener.Wait(gCtx)
		if err != nil {
			return fmt.Errorf("waiting for authorization code: %w", err)
		}
		code = c
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	return code, nil
}

// promptToken reads a token from the terminal without echoing it.
func promptToken(cmd *cli.Command) (string, error) {
	fmt.Fprint(cmd.Writer, "Paste token (input hidden): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.Writer)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("empty token")
	}
	return token, nil
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "remove the stored token from both storage tiers",
		Action: logoutAction,
	}
}

func logoutAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAndInstrument(cmd)
	if err != nil {
		return err
	}
	_, store, err := app.NewClient(cfg)
	if err != nil {
		return err
	}

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	fmt.Fprintln(cmd.Writer, "Logged out.")
	return nil
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "report whether a token is currently stored",
		Action: statusAction,
	}
}

func statusAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadAndInstrument(cmd)
	if err != nil {
		return err
	}
	_, store, err := app.NewClient(cfg)
	if err != nil {
		return err
	}

	if store.Authenticated(ctx) {
		fmt.Fprintln(cmd.Writer, "Authenticated.")
	} else {
		fmt.Fprintln(cmd.Writer, "Not authenticated.")
	}
	return nil
}
