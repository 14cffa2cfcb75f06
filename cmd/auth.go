package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/scx/internal/server"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 2 * time.Minute

// redirectURI returns the configured redirect URI, or one pointing at the local callback server.
func (r *Runner) redirectURI() string {
	if uri := r.config.SoundCloud.RedirectURI; uri != "" {
		return uri
	}
	return "http://" + r.config.Server.Addr() + server.DefaultCallbackPath
}

// AuthURL prints the URL a user visits to grant access.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	state := cmd.String("state")
	if state == "" {
		state = server.NewState()
	}

	authURL := r.client.AuthorizeURL(soundcloud.AuthorizeOptions{
		RedirectURI: r.redirectURI(),
		Display:     cmd.String("display"),
		State:       state,
		Scope:       cmd.String("scope"),
	})
	return r.writePlain("%s\n", authURL)
}

// AuthLogin runs the authorization-code flow.
//
// Starts a local callback server, opens the browser on the authorization URL and exchanges the
// returned code. The exchange hook stores the issued token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if r.client.ClientSecret() == "" {
		return fmt.Errorf("%w: soundcloud.client_secret must be set in %s", shared.ErrMissingConfig, r.configPath)
	}

	redirectURI := r.redirectURI()
	state := server.NewState()
	handler := server.NewOAuthHandler(r.client, redirectURI, state)
	srv := server.NewCallbackServer(handler, r.logger)
	if err := srv.Start(r.config.Server.Addr()); err != nil {
		return err
	}

	authURL := r.client.AuthorizeURL(soundcloud.AuthorizeOptions{
		RedirectURI: redirectURI,
		State:       state,
		Scope:       cmd.String("scope"),
	})

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opening browser for SoundCloud authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
		}
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}
	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	result, err := srv.Wait(ctx, timeout)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	if !result.Token.Expiry.IsZero() {
		r.writePlain("  Expires: %s\n", result.Token.Expiry.Format(time.RFC3339))
	}
	r.writePlain("  Token stored in %s\n", r.config.Database.Path)
	return nil
}

// AuthPassword exchanges user credentials for a token.
func (r *Runner) AuthPassword(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	password := cmd.String("password")
	if password == "" {
		return fmt.Errorf("%w: --password or SCX_PASSWORD is required", shared.ErrMissingArgument)
	}

	svc, err := r.connectService(ctx)
	if err != nil {
		return err
	}

	if err := svc.Authenticate(ctx, map[string]string{"username": username, "password": password}); err != nil {
		return err
	}
	return r.writePlain("✓ Authenticated as %s\n", username)
}

// AuthStatus prints the stored token state and, when a token is present, the authenticated user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}

	c := r.client
	r.writePlainHeader("SoundCloud")
	r.writePlain("Site:          %s\n", c.Site())
	r.writePlain("API host:      %s\n", c.APIHost())
	r.writePlain("Client ID:     %s\n", mask(c.ClientID()))
	r.writePlain("Access token:  %s\n", mask(c.AccessToken()))
	r.writePlain("Refresh token: %s\n", mask(c.RefreshToken()))
	if exp := c.ExpiresAt(); exp != nil {
		r.writePlain("Expires:       %s\n", exp.Format(time.RFC3339))
	}

	if c.AccessToken() == "" {
		return r.writePlain("Authentication: ✗ Not authenticated (run 'scx auth login')\n")
	}
	if c.Expired() && c.RefreshToken() == "" {
		return r.writePlain("Authentication: ✗ Token expired\n")
	}

	resp, err := c.Get(ctx, "/me", nil)
	var respErr *soundcloud.ResponseError
	switch {
	case errors.As(err, &respErr) && respErr.StatusCode == 401:
		return r.writePlain("Authentication: ✗ Token rejected (%v)\n", err)
	case err != nil:
		return err
	}

	username := ""
	if h, ok := resp.(*soundcloud.HashResponse); ok {
		username = h.String("username")
	}
	return r.writePlain("Authentication: ✓ Authenticated as %s\n", username)
}

// AuthRefresh exchanges the stored refresh token for a new access token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx); err != nil {
		return err
	}
	if r.client.RefreshToken() == "" {
		return fmt.Errorf("%w: no refresh token stored", shared.ErrRefreshFailed)
	}

	if _, err := r.client.ExchangeToken(ctx, soundcloud.Options{}); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}

	r.writePlain("✓ Token refreshed\n")
	if exp := r.client.ExpiresAt(); exp != nil {
		r.writePlain("  Expires: %s\n", exp.Format(time.RFC3339))
	}
	return nil
}

// AuthLogout removes the stored token for the configured client.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.openDatabase(); err != nil {
		return err
	}
	sc := r.config.SoundCloud
	if err := r.store.Clear(sc.Site, sc.ClientID); err != nil {
		return err
	}
	return r.writePlain("✓ Stored token removed\n")
}

// mask hides all but the first four characters of a secret.
func mask(s string) string {
	switch {
	case s == "":
		return "(none)"
	case len(s) <= 4:
		return "****"
	default:
		return s[:4] + "****"
	}
}
