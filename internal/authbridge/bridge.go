package authbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// TokenState is the slice of the token store the bridge drives.
type TokenState interface {
	// SetToken stores the token in the session tier.
	SetToken(ctx context.Context, token string) error

	// Clear removes the token from both tiers.
	Clear(ctx context.Context) error

	// Authenticated reports whether a token is currently present.
	Authenticated(ctx context.Context) bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger for drop diagnostics. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithAllowedOrigins restricts SET_AUTH_TOKEN and CLEAR_AUTH_TOKEN to the
// given origin labels. Without this option the bridge acts on control
// messages from any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(b *Bridge) {
		for _, origin := range origins {
			if origin != "" {
				b.allowed[origin] = struct{}{}
			}
		}
	}
}

// WithDropHook registers a hook observing every dropped message. The hook
// runs synchronously on the dispatch goroutine.
func WithDropHook(hook func(origin, reason string)) Option {
	return func(b *Bridge) {
		b.onDrop = hook
	}
}

// Bridge dispatches incoming auth messages against the token store and
// answers each handled control message with one AUTH_STATUS reply.
type Bridge struct {
	state   TokenState
	logger  *slog.Logger
	allowed map[string]struct{}
	onDrop  func(origin, reason string)

	mu   sync.Mutex
	port Port // non-nil while attached to a host
}

// New creates a Bridge over the given token state.
func New(state TokenState, opts ...Option) (*Bridge, error) {
	if state == nil {
		return nil, fmt.Errorf("missing token state")
	}

	b := &Bridge{
		state:   state,
		logger:  slog.Default(),
		allowed: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Handle detaches the bridge listener when closed.
type Handle struct {
	stop context.CancelFunc
	done chan struct{}
}

// Close detaches the listener and waits for dispatch to stop. Safe to call
// more than once.
func (h *Handle) Close() error {
	h.stop()
	<-h.done
	return nil
}

// Done is closed once the listener has stopped, whether through Close, a
// cancelled context, or the port going away.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Attach registers the bridge on the host port and starts dispatching.
// The returned Handle detaches it again; each attachment has an explicit
// lifetime rather than that of the whole process.
func (b *Bridge) Attach(ctx context.Context, port Port) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{stop: cancel, done: make(chan struct{})}

	b.mu.Lock()
	b.port = port
	b.mu.Unlock()

	go func() {
		defer close(h.done)
		defer func() {
			b.mu.Lock()
			if b.port == port {
				b.port = nil
			}
			b.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case inb, ok := <-port.Recv():
				if !ok {
					return
				}
				b.dispatch(ctx, inb)
			}
		}
	}()

	return h
}

// Embedded reports whether the bridge is currently attached to a host port.
func (b *Bridge) Embedded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port != nil
}

// RequestAuth asks the host to push credentials. When not embedded this is
// a no-op that leaves a diagnostic rather than failing.
func (b *Bridge) RequestAuth(ctx context.Context) error {
	b.mu.Lock()
	port := b.port
	b.mu.Unlock()

	if port == nil {
		b.logger.DebugContext(ctx, "not embedded in a host, skipping auth request")
		return nil
	}
	return port.Post(ctx, Message{Type: KindRequestAuth})
}

// dispatch handles one inbound message. Exhaustive over the closed kind
// set; everything else is dropped without a reply.
func (b *Bridge) dispatch(ctx context.Context, inb Inbound) {
	var msg Message
	if err := json.Unmarshal(inb.Payload, &msg); err != nil {
		b.drop(ctx, inb.Origin, "malformed payload")
		return
	}

	switch msg.Type {
	case KindSetToken:
		if !b.originAllowed(inb.Origin) {
			b.drop(ctx, inb.Origin, "origin not allowed")
			return
		}
		if msg.Token == "" {
			b.drop(ctx, inb.Origin, "set without token")
			return
		}
		if err := b.state.SetToken(ctx, msg.Token); err != nil {
			b.logger.ErrorContext(ctx, "failed to store pushed token", "error", err)
			return
		}
		b.reply(ctx, inb, true)

	case KindClearToken:
		if !b.originAllowed(inb.Origin) {
			b.drop(ctx, inb.Origin, "origin not allowed")
			return
		}
		if err := b.state.Clear(ctx); err != nil {
			b.logger.ErrorContext(ctx, "failed to clear token", "error", err)
			return
		}
		b.reply(ctx, inb, false)

	case KindCheckStatus:
		b.reply(ctx, inb, b.state.Authenticated(ctx))

	case KindRequestAuth, KindAuthStatus:
		// Protocol kinds addressed to the host side, not actionable here.
		b.drop(ctx, inb.Origin, "kind not actionable")

	default:
		b.drop(ctx, inb.Origin, "unknown kind")
	}
}

// originAllowed reports whether control messages from origin may mutate the
// store. An empty allow-list keeps the permissive accept-all behavior.
func (b *Bridge) originAllowed(origin string) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[origin]
	return ok
}

// reply sends the single AUTH_STATUS answer for a handled control message.
func (b *Bridge) reply(ctx context.Context, inb Inbound, authenticated bool) {
	if err := inb.Reply(ctx, statusMessage(authenticated)); err != nil {
		b.logger.DebugContext(ctx, "auth status reply failed", "origin", inb.Origin, "error", err)
	}
}

// drop discards a message without a reply. Never raises; the hook and the
// debug log are the only observers.
func (b *Bridge) drop(ctx context.Context, origin, reason string) {
	if b.onDrop != nil {
		b.onDrop(origin, reason)
	}
	b.logger.DebugContext(ctx, "dropped bridge message", "origin", origin, "reason", reason)
}
