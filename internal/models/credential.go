package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/scx/internal/shared"
	"golang.org/x/oauth2"
)

// Credential is a stored OAuth token for one client id on one site.
type Credential struct {
	base
	site         string
	clientID     string
	accessToken  string
	refreshToken string
	scope        string
	expiresAt    *time.Time
}

// NewCredential creates a [Credential] with no token.
func NewCredential(sequence int, site, clientID string) *Credential {
	return &Credential{base: newBase(sequence), site: site, clientID: clientID}
}

func (c *Credential) Site() string { return c.site }
func (c *Credential) ClientID() string { return c.clientID }
func (c *Credential) AccessToken() string { return c.accessToken }
func (c *Credential) RefreshToken() string { return c.refreshToken }
func (c *Credential) Scope() string { return c.scope }
func (c *Credential) ExpiresAt() *time.Time { return c.expiresAt }
func (c *Credential) SetScope(scope string) { c.scope = scope }

// SetToken copies the token fields of t. A zero expiry clears ExpiresAt.
func (c *Credential) SetToken(t *oauth2.Token) {
	if t == nil {
		return
	}
	c.accessToken = t.AccessToken
	c.refreshToken = t.RefreshToken
	if t.Expiry.IsZero() {
		c.expiresAt = nil
	} else {
		exp := t.Expiry
		c.expiresAt = &exp
	}
}

// Token returns the stored credential as an [oauth2.Token].
func (c *Credential) Token() *oauth2.Token {
	t := &oauth2.Token{AccessToken: c.accessToken, RefreshToken: c.refreshToken, TokenType: "OAuth"}
	if c.expiresAt != nil {
		t.Expiry = *c.expiresAt
	}
	return t
}

// Expired reports whether the token has a known expiry in the past.
func (c *Credential) Expired(now time.Time) bool {
	return c.expiresAt != nil && c.expiresAt.Before(now)
}

func (c *Credential) Validate() error {
	if c.site == "" {
		return fmt.Errorf("%w: site is required", shared.ErrInvalidInput)
	}
	if c.clientID == "" {
		return fmt.Errorf("%w: client id is required", shared.ErrInvalidInput)
	}
	if c.accessToken == "" && c.refreshToken == "" {
		return fmt.Errorf("%w: an access or refresh token is required", shared.ErrInvalidInput)
	}
	return nil
}
