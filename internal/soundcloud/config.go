package soundcloud

import (
	"time"

	"github.com/desertthunder/scx/internal/shared"
)

// DefaultSite is the base domain used when no site is configured.
const DefaultSite = "soundcloud.com"

// ExchangeHook is invoked with the client after every successful token exchange.
type ExchangeHook func(*Client)

func noopHook(*Client) {}

// Config holds the credentials and connection settings of a single [Client].
//
// A Config is owned by its client and only changes through [Config.Update].
type Config struct {
	Site         string
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string
	RedirectURI  string
	Username     string
	Password     string
	Code         string
	ExpiresAt    *time.Time // nil when the token expiry is not tracked
	UseSSL       bool       // force https even without an access token

	OnExchangeToken ExchangeHook
}

// Options is a partial [Config]. Nil fields are left untouched by [Config.Update];
// non-nil fields overwrite the current value, including with the empty string.
type Options struct {
	Site         *string
	ClientID     *string
	ClientSecret *string
	AccessToken  *string
	RefreshToken *string
	RedirectURI  *string
	Username     *string
	Password     *string
	Code         *string
	ExpiresAt    *time.Time
	ClearExpiry  bool // drops ExpiresAt; ignored when ExpiresAt is also set
	UseSSL       *bool

	OnExchangeToken ExchangeHook
}

// String returns a pointer to s, for use in [Options].
func String(s string) *string { return &s }

// Bool returns a pointer to b, for use in [Options].
func Bool(b bool) *bool { return &b }

// FileOptions converts the [soundcloud] section of the config file into [Options].
// Empty token fields are left unset so stored credentials are not overwritten.
func FileOptions(fc shared.SoundCloudConfig) Options {
	opts := Options{
		Site:         String(fc.Site),
		ClientID:     String(fc.ClientID),
		ClientSecret: String(fc.ClientSecret),
		UseSSL:       Bool(fc.UseSSL),
	}
	if fc.RedirectURI != "" {
		opts.RedirectURI = String(fc.RedirectURI)
	}
	if fc.AccessToken != "" {
		opts.AccessToken = String(fc.AccessToken)
	}
	if fc.RefreshToken != "" {
		opts.RefreshToken = String(fc.RefreshToken)
	}
	return opts
}

func defaultConfig() Config {
	return Config{Site: DefaultSite, OnExchangeToken: noopHook}
}

// Update merges opts into c field by field.
func (c *Config) Update(opts Options) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&c.Site, opts.Site)
	set(&c.ClientID, opts.ClientID)
	set(&c.ClientSecret, opts.ClientSecret)
	set(&c.AccessToken, opts.AccessToken)
	set(&c.RefreshToken, opts.RefreshToken)
	set(&c.RedirectURI, opts.RedirectURI)
	set(&c.Username, opts.Username)
	set(&c.Password, opts.Password)
	set(&c.Code, opts.Code)

	switch {
	case opts.ExpiresAt != nil:
		at := *opts.ExpiresAt
		c.ExpiresAt = &at
	case opts.ClearExpiry:
		c.ExpiresAt = nil
	}

	if opts.UseSSL != nil {
		c.UseSSL = *opts.UseSSL
	}
	if opts.OnExchangeToken != nil {
		c.OnExchangeToken = opts.OnExchangeToken
	}
	if c.Site == "" {
		c.Site = DefaultSite
	}
}

func (c *Config) refreshFlowPresent() bool {
	return c.RefreshToken != ""
}

func (c *Config) credentialsFlowPresent() bool {
	return c.Username != "" && c.Password != ""
}

func (c *Config) codeFlowPresent() bool {
	return c.Code != "" && c.RedirectURI != ""
}

func (c *Config) anyFlowPresent() bool {
	return c.refreshFlowPresent() || c.credentialsFlowPresent() || c.codeFlowPresent()
}
