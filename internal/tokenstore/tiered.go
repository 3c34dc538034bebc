package tokenstore

import (
	"context"
	"errors"
	"fmt"
)

// Tiered composes a session tier over a persistent tier. The session tier
// always wins on read; SetToken writes the session tier only; Clear wipes
// both. At most one token is current at any time.
type Tiered struct {
	session    Store
	persistent Store
}

// NewTiered creates a Tiered store from a session and a persistent tier.
func NewTiered(session, persistent Store) (*Tiered, error) {
	if session == nil {
		return nil, fmt.Errorf("missing session store")
	}
	if persistent == nil {
		return nil, fmt.Errorf("missing persistent store")
	}

	return &Tiered{
		session:    session,
		persistent: persistent,
	}, nil
}

// Token returns the current token: the session value if present, else the
// persistent value, else ErrNoToken. No side effects.
func (t *Tiered) Token(ctx context.Context) (string, error) {
	token, err := t.session.Read(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNoToken) {
		return "", fmt.Errorf("reading session tier: %w", err)
	}

	token, err = t.persistent.Read(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNoToken) {
		return "", fmt.Errorf("reading persistent tier: %w", err)
	}
	return "", ErrNoToken
}

// SetToken stores the token in the session tier only. The persistent tier
// is seeded by an external flow, never here.
func (t *Tiered) SetToken(ctx context.Context, token string) error {
	return t.session.Write(ctx, token)
}

// Clear removes the token from both tiers unconditionally. Clearing an
// already-empty store is a no-op.
func (t *Tiered) Clear(ctx context.Context) error {
	return errors.Join(
		t.session.Clear(ctx),
		t.persistent.Clear(ctx),
	)
}

// Authenticated reports whether a token is currently present in either tier.
func (t *Tiered) Authenticated(ctx context.Context) bool {
	_, err := t.Token(ctx)
	return err == nil
}

// Persistent exposes the persistent tier for the flows that seed it,
// such as the OAuth login command.
func (t *Tiered) Persistent() Store {
	return t.persistent
}
