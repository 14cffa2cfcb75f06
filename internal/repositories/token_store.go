package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/models"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	"golang.org/x/oauth2"
)

// TokenStore persists client tokens through a [CredentialRepository].
//
// Each site and client id pair has at most one live credential; saving a token
// updates it in place.
type TokenStore struct {
	repo   *CredentialRepository
	logger *log.Logger
}

// NewTokenStore creates a new TokenStore. A nil logger discards hook failures.
func NewTokenStore(repo *CredentialRepository, logger *log.Logger) *TokenStore {
	return &TokenStore{repo: repo, logger: logger}
}

// Load returns the stored token for site and clientID.
//
// Returns [shared.ErrCredentialNotFound] when nothing is stored.
func (s *TokenStore) Load(site, clientID string) (*oauth2.Token, error) {
	cred, err := s.repo.GetByClient(site, clientID)
	if err != nil {
		return nil, err
	}
	return cred.Token(), nil
}

// Save stores token for site and clientID, creating the credential on first use.
func (s *TokenStore) Save(site, clientID string, token *oauth2.Token) error {
	cred, err := s.repo.GetByClient(site, clientID)
	switch {
	case errors.Is(err, shared.ErrCredentialNotFound):
		cred = models.NewCredential(0, site, clientID)
		cred.SetToken(token)
		return s.repo.Create(cred)
	case err != nil:
		return fmt.Errorf("failed to look up credential: %w", err)
	}

	cred.SetToken(token)
	return s.repo.Update(cred)
}

// Clear removes the stored token for site and clientID. Clearing a missing token is not an error.
func (s *TokenStore) Clear(site, clientID string) error {
	cred, err := s.repo.GetByClient(site, clientID)
	if errors.Is(err, shared.ErrCredentialNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.repo.Delete(cred.ID())
}

// Hook returns a [soundcloud.ExchangeHook] that saves the client's token after each exchange.
func (s *TokenStore) Hook() soundcloud.ExchangeHook {
	return func(c *soundcloud.Client) {
		if err := s.Save(c.Site(), c.ClientID(), c.Token()); err != nil && s.logger != nil {
			s.logger.Error("failed to persist token", "client_id", c.ClientID(), "error", err)
		}
	}
}

// Restore loads the stored token for the client's site and client id into opts.
// opts is returned unchanged when nothing is stored or opts already carries an access token.
func (s *TokenStore) Restore(site, clientID string, opts soundcloud.Options) (soundcloud.Options, error) {
	if opts.AccessToken != nil && *opts.AccessToken != "" {
		return opts, nil
	}

	token, err := s.Load(site, clientID)
	if errors.Is(err, shared.ErrCredentialNotFound) {
		return opts, nil
	}
	if err != nil {
		return opts, err
	}

	stored := soundcloud.TokenOptions(token)
	opts.AccessToken = stored.AccessToken
	opts.RefreshToken = stored.RefreshToken
	opts.ExpiresAt = stored.ExpiresAt
	opts.ClearExpiry = stored.ClearExpiry
	return opts, nil
}

func tokenFromColumns(accessToken, refreshToken string, expiresAt sql.NullTime) *oauth2.Token {
	t := &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken, TokenType: "OAuth"}
	if expiresAt.Valid {
		t.Expiry = expiresAt.Time
	}
	return t
}
