package authflow

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func startTestListener(t *testing.T) *Listener {
	t.Helper()
	l := New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if _, err := l.Start(ctx, "127.0.0.1:0"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
		defer shutdownCancel()
		_ = l.Shutdown(shutdownCtx)
	})
	return l
}

func TestListenerCapturesCode(t *testing.T) {
	l := startTestListener(t)

	resp, err := http.Get(l.RedirectURI() + "?state=" + url.QueryEscape(l.State()) + "&code=authcode-123")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("callback status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	code, err := l.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if code != "authcode-123" {
		t.Errorf("code = %q, want %q", code, "authcode-123")
	}
}

func TestListenerRejectsBadState(t *testing.T) {
	l := startTestListener(t)

	resp, err := http.Get(l.RedirectURI() + "?state=forged&code=authcode-123")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("callback status = %d, want 400", resp.StatusCode)
	}

	// The forged code must not be delivered.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if code, err := l.Wait(ctx); err == nil {
		t.Errorf("Wait delivered %q for a forged state", code)
	}
}

func TestListenerRejectsMissingCode(t *testing.T) {
	l := startTestListener(t)

	resp, err := http.Get(l.RedirectURI() + "?state=" + url.QueryEscape(l.State()))
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("callback status = %d, want 400", resp.StatusCode)
	}
}

func TestAuthorizeURL(t *testing.T) {
	got := AuthorizeURL("https://github.com/login/oauth/authorize", "client-1", "http://127.0.0.1:9/callback", "st")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parsing %q: %v", got, err)
	}
	if !strings.HasPrefix(got, "https://github.com/login/oauth/authorize?") {
		t.Errorf("URL = %q", got)
	}
	q := u.Query()
	if q.Get("client_id") != "client-1" || q.Get("redirect_uri") != "http://127.0.0.1:9/callback" || q.Get("state") != "st" {
		t.Errorf("query = %v", q)
	}
}
