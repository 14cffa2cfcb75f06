package soundcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/shared"
)

const (
	// Version is the library version reported in the User-Agent header.
	Version = "0.1.0"
	// UserAgent is sent with every request.
	UserAgent = "SoundCloud Go Wrapper " + Version

	// maxAttempts bounds a logical call: the original request plus one retry after a token refresh.
	maxAttempts = 2
)

// Client issues authenticated requests against api.<site>.
//
// A Client is not safe for concurrent use: token exchanges mutate its [Config].
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time
}

// ClientOption configures collaborators of a [Client].
type ClientOption func(*Client)

// WithHTTPClient sets the transport used for every request. Defaults to [http.DefaultClient].
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing. Defaults to a discarding logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a client from opts.
//
// When no access token is given but a refresh token, username and password, or code and
// redirect URI are, a token exchange is performed before New returns.
// New fails with a [*ConfigurationError] when neither a client id nor an access token is configured.
func New(ctx context.Context, opts Options, clientOpts ...ClientOption) (*Client, error) {
	c := &Client{
		config:     defaultConfig(),
		httpClient: http.DefaultClient,
		logger:     log.New(io.Discard),
		now:        time.Now,
	}
	for _, o := range clientOpts {
		o(c)
	}
	c.config.Update(opts)

	if c.config.AccessToken == "" && c.config.anyFlowPresent() {
		if _, err := c.ExchangeToken(ctx, Options{}); err != nil {
			return nil, err
		}
	}

	if c.config.ClientID == "" && c.config.AccessToken == "" {
		return nil, &ConfigurationError{
			Message: "at least a client_id or an access_token must be present",
			Err:     shared.ErrMissingCredentials,
		}
	}
	return c, nil
}

// Get issues a GET with params in the query string.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.do(ctx, http.MethodGet, path, params, QuerySlot)
}

// Post issues a POST with params in the form body.
func (c *Client) Post(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.do(ctx, http.MethodPost, path, params, BodySlot)
}

// Put issues a PUT with params in the form body.
func (c *Client) Put(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.do(ctx, http.MethodPut, path, params, BodySlot)
}

// Delete issues a DELETE with params in the query string.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.do(ctx, http.MethodDelete, path, params, QuerySlot)
}

// Head issues a HEAD with params in the query string.
func (c *Client) Head(ctx context.Context, path string, params url.Values) (Response, error) {
	return c.do(ctx, http.MethodHead, path, params, QuerySlot)
}

// do rebuilds the request on every attempt so a refreshed token is injected into the retry.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, slot ParamSlot) (Response, error) {
	return c.handleResponse(ctx, true, func() (*rawResponse, error) {
		target, opts, err := c.buildRequest(method, path, params, slot)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("sending request", "method", method, "url", target)
		return c.send(ctx, target, opts)
	})
}

// handleResponse runs call at most twice. A 401 on the first attempt triggers one token
// exchange when refreshing is enabled and a refresh token is configured; every other
// failure is returned as a [*ResponseError].
func (c *Client) handleResponse(ctx context.Context, refreshing bool, call func() (*rawResponse, error)) (Response, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := call()
		if err != nil {
			return nil, err
		}

		if res.ok() {
			return classify(res), nil
		}

		if res.statusCode == http.StatusUnauthorized && refreshing && c.config.refreshFlowPresent() {
			c.logger.Debug("access token rejected, refreshing", "attempt", attempt)
			refreshing = false
			if _, err := c.ExchangeToken(ctx, Options{}); err != nil {
				return nil, err
			}
			continue
		}

		return nil, newResponseError(res)
	}
	return nil, errors.New("soundcloud: retry limit exceeded")
}

type rawResponse struct {
	resp       *http.Response
	statusCode int
	body       []byte
}

func (r *rawResponse) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

func (c *Client) send(ctx context.Context, target string, opts *requestOptions) (*rawResponse, error) {
	req, err := newHTTPRequest(ctx, target, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("received response", "method", opts.method, "status", resp.StatusCode, "bytes", len(body))
	return &rawResponse{resp: resp, statusCode: resp.StatusCode, body: body}, nil
}

// classify wraps JSON objects and arrays; everything else passes through as a [*RawResponse].
func classify(r *rawResponse) Response {
	raw := &RawResponse{StatusCode: r.statusCode, Header: r.resp.Header, Body: r.body}
	if !isJSON(r.resp.Header.Get("Content-Type")) || len(bytes.TrimSpace(r.body)) == 0 {
		return raw
	}

	dec := json.NewDecoder(bytes.NewReader(r.body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return raw
	}

	switch t := v.(type) {
	case map[string]any:
		return NewHashResponse(t)
	case []any:
		return NewArrayResponse(t)
	default:
		raw.Decoded = t
		return raw
	}
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || mt == "text/javascript" || strings.HasSuffix(mt, "+json")
}

// Config returns a copy of the client's current configuration.
func (c *Client) Config() Config { return c.config }

func (c *Client) ClientID() string     { return c.config.ClientID }
func (c *Client) ClientSecret() string { return c.config.ClientSecret }
func (c *Client) AccessToken() string  { return c.config.AccessToken }
func (c *Client) RefreshToken() string { return c.config.RefreshToken }
func (c *Client) RedirectURI() string  { return c.config.RedirectURI }

// ExpiresAt returns the access token expiry, or nil when it is not tracked.
func (c *Client) ExpiresAt() *time.Time { return c.config.ExpiresAt }

// Expired reports whether an expiry is tracked and lies in the past.
func (c *Client) Expired() bool {
	return c.config.ExpiresAt != nil && c.config.ExpiresAt.Before(c.now())
}

// UseSSL reports whether requests go over https: forced by config or implied by an access token.
func (c *Client) UseSSL() bool {
	return c.config.UseSSL || c.config.AccessToken != ""
}

// Site returns the configured base domain.
func (c *Client) Site() string { return c.config.Site }

// Host is an alias of [Client.Site].
func (c *Client) Host() string { return c.config.Site }

// APIHost returns the API host, api.<site>.
func (c *Client) APIHost() string { return apiSubhost + "." + c.config.Site }
