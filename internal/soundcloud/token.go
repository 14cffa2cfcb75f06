package soundcloud

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/scx/internal/shared"
	"golang.org/x/oauth2"
)

// Grant types understood by the token endpoint.
const (
	GrantRefreshToken      = "refresh_token"
	GrantPassword          = "password"
	GrantAuthorizationCode = "authorization_code"
)

// ExchangeToken merges opts into the configuration and obtains a new access token.
//
// The grant is picked from the configuration in a fixed order: refresh token, then
// username and password, then code and redirect URI. The token request never triggers
// a refresh of its own, so a 401 from the token endpoint surfaces as a [*ResponseError].
//
// On success the access token, refresh token and expiry are stored, the exchange hook
// runs, and the raw token response is returned.
func (c *Client) ExchangeToken(ctx context.Context, opts Options) (*HashResponse, error) {
	c.config.Update(opts)

	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return nil, &ConfigurationError{
			Message: "client_id and client_secret are required to retrieve an access_token",
			Err:     shared.ErrMissingCredentials,
		}
	}

	params, err := c.grantParams()
	if err != nil {
		return nil, err
	}
	params.Set("client_id", c.config.ClientID)
	params.Set("client_secret", c.config.ClientSecret)

	target := "https://" + c.APIHost() + tokenPath
	reqOpts := &requestOptions{method: http.MethodPost, query: params, header: c.baseHeader()}

	c.logger.Debug("exchanging token", "grant_type", params.Get("grant_type"))
	resp, err := c.handleResponse(ctx, false, func() (*rawResponse, error) {
		return c.send(ctx, target, reqOpts)
	})
	if err != nil {
		return nil, err
	}

	token, ok := resp.(*HashResponse)
	if !ok {
		return nil, shared.ErrUnexpectedResponse
	}

	c.config.AccessToken = token.String("access_token")
	if token.Has("refresh_token") {
		c.config.RefreshToken = token.String("refresh_token")
	}
	if v, ok := token.Get("expires_in"); ok {
		if secs, ok := toInt(v); ok {
			at := c.now().Add(time.Duration(secs) * time.Second)
			c.config.ExpiresAt = &at
		}
	}

	if hook := c.config.OnExchangeToken; hook != nil {
		hook(c)
	}
	return token, nil
}

func (c *Client) grantParams() (url.Values, error) {
	switch {
	case c.config.refreshFlowPresent():
		return url.Values{
			"grant_type":    {GrantRefreshToken},
			"refresh_token": {c.config.RefreshToken},
		}, nil
	case c.config.credentialsFlowPresent():
		return url.Values{
			"grant_type": {GrantPassword},
			"username":   {c.config.Username},
			"password":   {c.config.Password},
		}, nil
	case c.config.codeFlowPresent():
		return url.Values{
			"grant_type":   {GrantAuthorizationCode},
			"redirect_uri": {c.config.RedirectURI},
			"code":         {c.config.Code},
		}, nil
	default:
		return nil, &ConfigurationError{
			Message: "a refresh_token, username and password, or code and redirect_uri are required",
			Err:     shared.ErrNoGrant,
		}
	}
}

// OnExchangeToken replaces the hook invoked after every successful exchange.
func (c *Client) OnExchangeToken(hook ExchangeHook) {
	if hook == nil {
		hook = noopHook
	}
	c.config.Update(Options{OnExchangeToken: hook})
}

// Token returns the current credentials as an [oauth2.Token].
// A zero Expiry means the expiry is not tracked.
func (c *Client) Token() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  c.config.AccessToken,
		RefreshToken: c.config.RefreshToken,
		TokenType:    "OAuth",
	}
	if c.config.ExpiresAt != nil {
		t.Expiry = *c.config.ExpiresAt
	}
	return t
}

// TokenOptions converts a stored token into [Options] for [New] or [Config.Update].
func TokenOptions(t *oauth2.Token) Options {
	if t == nil {
		return Options{}
	}
	opts := Options{
		AccessToken:  String(t.AccessToken),
		RefreshToken: String(t.RefreshToken),
	}
	if t.Expiry.IsZero() {
		opts.ClearExpiry = true
	} else {
		exp := t.Expiry
		opts.ExpiresAt = &exp
	}
	return opts
}

// AuthorizeOptions holds the parameters of the user-facing authorization URL.
// RedirectURI is stored on the client; the others only appear in the URL.
type AuthorizeOptions struct {
	RedirectURI string
	Display     string
	State       string
	Scope       string
}

// AuthorizeURL builds the URL users visit to grant access:
//
//	https://<site>/connect?response_type=code_and_token&client_id=..&redirect_uri=..[&display=..][&state=..][&scope=..]
//
// Every value is query-escaped.
func (c *Client) AuthorizeURL(opts AuthorizeOptions) string {
	if opts.RedirectURI != "" {
		c.config.Update(Options{RedirectURI: String(opts.RedirectURI)})
	}

	var b strings.Builder
	b.WriteString("https://" + c.Host() + authorizePath)
	b.WriteString("?response_type=code_and_token")
	b.WriteString("&client_id=" + url.QueryEscape(c.config.ClientID))
	b.WriteString("&redirect_uri=" + url.QueryEscape(c.config.RedirectURI))

	for _, p := range [][2]string{{"display", opts.Display}, {"state", opts.State}, {"scope", opts.Scope}} {
		if p[1] != "" {
			b.WriteString("&" + p[0] + "=" + url.QueryEscape(p[1]))
		}
	}
	return b.String()
}
