package folio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/foliolab/folio/internal/tokenstore"
)

// DefaultBaseURL is the deployed projects backend.
const DefaultBaseURL = "https://api.foliolab.dev"

// TokenReader supplies the current authentication token. Absence is
// reported as tokenstore.ErrNoToken; tokenstore.Tiered satisfies this.
type TokenReader interface {
	Token(ctx context.Context) (string, error)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the backend base address.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient injects a custom http.Client, e.g. for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithLogger sets the client logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is the projects backend client. Every operation captures the
// token at call time; a token change never affects requests in flight.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenReader
	logger  *slog.Logger
}

// NewClient creates a Client reading tokens from the given reader.
func NewClient(tokens TokenReader, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("missing token reader")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		tokens:  tokens,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// bearer returns the Authorization header value for the current token.
// When no token is stored the value is empty: the backend expects the
// header to be present (with an empty value) rather than omitted, and the
// request is still attempted so the backend reports the auth failure.
func (c *Client) bearer(ctx context.Context) (string, error) {
	token, err := c.tokens.Token(ctx)
	if errors.Is(err, tokenstore.ErrNoToken) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return "Bearer " + token, nil
}

// do performs one authorized round trip against the backend and decodes a
// JSON response into out (skipped when out is nil). Non-2xx responses
// become RequestError with the body text.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("folio: building %s %s request: %w", method, path, err)
	}

	auth, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", auth)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("folio: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(resp.Body)
		return &RequestError{Status: resp.StatusCode, Body: string(text)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("folio: decoding %s %s response: %w", method, path, err)
	}
	return nil
}
