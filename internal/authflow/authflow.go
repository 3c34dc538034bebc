// Package authflow captures the OAuth authorization code on a loopback
// HTTP server, standing in for the redirect a hosted page would receive.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/foliolab/folio/internal/observability/middleware"
)

// AuthorizeURL builds the provider authorization URL the user opens in a
// browser. The provider redirects back to redirectURI with the code and
// the echoed state.
func AuthorizeURL(authURL, clientID, redirectURI, state string) string {
	v := url.Values{}
	v.Set("client_id", clientID)
	v.Set("redirect_uri", redirectURI)
	v.Set("state", state)
	return authURL + "?" + v.Encode()
}

// Listener is a single-use loopback server for one login attempt.
type Listener struct {
	logger *slog.Logger
	state  string
	codeCh chan string

	addr   string
	server *http.Server
}

// New creates a Listener with a fresh random state parameter.
func New(logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		logger: logger,
		state:  uuid.NewString(),
		codeCh: make(chan string, 1),
	}
}

// State returns the opaque state parameter the redirect must echo back.
func (l *Listener) State() string {
	return l.state
}

// Addr returns the bound address. Valid after Start.
func (l *Listener) Addr() string {
	return l.addr
}

// RedirectURI returns the callback URL for the bound address. Valid after Start.
func (l *Listener) RedirectURI() string {
	return "http://" + l.addr + "/callback"
}

// Start begins serving on address and returns immediately.
// Returns a channel for runtime errors and a startup error if any.
//
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors (network failures during operation) are sent to the error channel.
//
// The caller is responsible for calling Shutdown() to stop the server.
func (l *Listener) Start(ctx context.Context, address string) (<-chan error, error) {
	// Startup phase: Create listener synchronously to catch port-in-use errors immediately
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	l.addr = listener.Addr().String()

	mux := http.NewServeMux()
	mux.Handle("GET /callback", middleware.Chain(http.HandlerFunc(l.handleCallback),
		middleware.Logging(l.logger),
		middleware.Recovery,
	))

	l.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := l.server.Serve(listener)
		// Only report error if not from graceful shutdown
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// handleCallback verifies the state parameter and delivers the code.
func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != l.state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	// First delivery wins; repeated redirects are acknowledged but ignored.
	select {
	case l.codeCh <- code:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, "<!doctype html><html><body><p>Signed in. You can close this window.</p></body></html>")
}

// Wait blocks until an authorization code arrives or the context is done.
func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case code := <-l.codeCh:
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown performs graceful shutdown of the HTTP server.
// Returns error if shutdown fails or times out.
func (l *Listener) Shutdown(ctx context.Context) error {
	if l.server == nil {
		return nil
	}

	if err := l.server.Shutdown(ctx); err != nil {
		// Graceful shutdown failed - force close
		_ = l.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
