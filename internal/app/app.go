// Package app wires configuration into the token store, resource client
// and auth bridge, and runs the embedded bridge lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/foliolab/folio/internal/authbridge"
	"github.com/foliolab/folio/internal/folio"
	"github.com/foliolab/folio/internal/tokenstore"
)

// NewClient builds the resource client and the tiered token store backing it.
func NewClient(cfg *Config) (*folio.Client, *tokenstore.Tiered, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token store: %w", err)
	}

	client, err := folio.NewClient(store, folio.WithBaseURL(cfg.API.BaseURL))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, store, nil
}

// RunBridge attaches the auth bridge to the host port, solicits
// credentials once, and blocks until the context is done or the host
// closes its end of the port.
func RunBridge(ctx context.Context, cfg *Config, port authbridge.Port) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := cfg.Auth.NewTokenStore()
	if err != nil {
		return fmt.Errorf("failed to create token store: %w", err)
	}

	bridge, err := authbridge.New(store,
		authbridge.WithLogger(slog.Default()),
		authbridge.WithAllowedOrigins(cfg.Bridge.AllowedOrigins...),
	)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	handle := bridge.Attach(gCtx, port)
	slog.InfoContext(gCtx, "auth bridge attached", "host_origin", cfg.Bridge.Origin)

	if err := bridge.RequestAuth(gCtx); err != nil {
		slog.WarnContext(gCtx, "failed to request auth from host", "error", err)
	}

	g.Go(func() error {
		select {
		case <-handle.Done():
			return nil
		case <-gCtx.Done():
			return handle.Close()
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}

	slog.Info("auth bridge detached")
	return nil
}
