package folio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// ExchangeCode swaps an OAuth authorization code for an access token at
// the backend's token endpoint. The call is deliberately unauthenticated;
// the backend performs the upstream provider exchange itself and returns
// the issued access token.
//
// The oauth2 package sends form-encoded token requests while the backend
// expects a JSON body, so the exchange goes through a transport that
// re-encodes the request (see exchangeTransport).
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/api/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	base := c.http.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient := &http.Client{
		Timeout:   c.http.Timeout,
		Transport: &exchangeTransport{base: base},
	}

	// oauth2 injects custom HTTP clients via context (oauth2.HTTPClient key).
	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			return "", &RequestError{Status: rerr.Response.StatusCode, Body: string(rerr.Body)}
		}
		return "", fmt.Errorf("folio: exchanging authorization code: %w", err)
	}
	return token.AccessToken, nil
}

// exchangeTransport converts oauth2's form-encoded token requests to the
// JSON format the backend token endpoint expects. The oauth2 package
// guarantees this transport only receives token endpoint requests.
type exchangeTransport struct {
	base http.RoundTripper
}

// Compile-time check that exchangeTransport implements http.RoundTripper.
var _ http.RoundTripper = (*exchangeTransport)(nil)

// RoundTrip re-encodes the token request body from form data to JSON.
func (t *exchangeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The body is consumed entirely and replaced on the cloned request, so
	// close the original here rather than forwarding it.
	defer func() { _ = req.Body.Close() }()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	formData, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing form data: %w", err)
	}

	jsonData := make(map[string]string, len(formData))
	for key, values := range formData {
		jsonData[key] = values[0] // OAuth2 spec defines single-value parameters
	}

	jsonBody, err := json.Marshal(jsonData)
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON request: %w", err)
	}

	newReq := req.Clone(req.Context())
	newReq.Body = io.NopCloser(bytes.NewReader(jsonBody))
	newReq.ContentLength = int64(len(jsonBody))
	newReq.Header.Set("Content-Type", "application/json")

	return t.base.RoundTrip(newReq)
}
