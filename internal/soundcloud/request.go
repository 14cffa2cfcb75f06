package soundcloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ParamSlot selects where request parameters are encoded.
type ParamSlot int

const (
	QuerySlot ParamSlot = iota // query string: GET, DELETE, HEAD
	BodySlot                   // form body: POST, PUT
)

const (
	// ClientIDParamName is the key the client id is sent under when no access token is configured.
	ClientIDParamName = "client_id"
	// AccessTokenParamName is the key the access token is sent under.
	AccessTokenParamName = "oauth_token"

	apiSubhost    = "api"
	authorizePath = "/connect"
	tokenPath     = "/oauth2/token"
)

// requestOptions carries everything except the URL needed to issue one request.
type requestOptions struct {
	method string
	query  url.Values
	body   url.Values
	header http.Header
}

func (c *Client) baseHeader() http.Header {
	h := http.Header{}
	h.Set("User-Agent", UserAgent)
	h.Set("Accept", "application/json")
	return h
}

// buildRequest resolves pathOrURL against the API host and injects format and
// credentials into the chosen slot. params is never modified.
func (c *Client) buildRequest(method, pathOrURL string, params url.Values, slot ParamSlot) (string, *requestOptions, error) {
	u, err := url.Parse(pathOrURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid path %q: %w", pathOrURL, err)
	}

	p := u.Path
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	target := c.scheme() + "://" + c.APIHost() + p
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}

	injected := cloneValues(params)
	injected.Set("format", "json")
	if c.config.AccessToken != "" {
		injected.Set(AccessTokenParamName, c.config.AccessToken)
	} else {
		injected.Set(ClientIDParamName, c.config.ClientID)
	}

	opts := &requestOptions{method: method, header: c.baseHeader()}
	switch slot {
	case BodySlot:
		opts.body = injected
	default:
		opts.query = injected
	}
	return target, opts, nil
}

func (c *Client) scheme() string {
	if c.UseSSL() {
		return "https"
	}
	return "http"
}

// newHTTPRequest turns a built target and options into an [http.Request].
// Query values are appended to any query string already present on target.
func newHTTPRequest(ctx context.Context, target string, opts *requestOptions) (*http.Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid request url: %w", err)
	}

	if len(opts.query) > 0 {
		q := u.Query()
		for k, vs := range opts.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if opts.body != nil {
		body = strings.NewReader(opts.body.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range opts.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
