package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	"golang.org/x/oauth2"
)

// DefaultCallbackPath is served when the redirect URI has no path.
const DefaultCallbackPath = "/callback"

// TokenExchanger completes the authorization-code grant. Implemented by [soundcloud.Client].
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, opts soundcloud.Options) (*soundcloud.HashResponse, error)
	Token() *oauth2.Token
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the redirect of the authorization-code flow.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	client      TokenExchanger
	redirectURI string
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewState returns a fresh state value for [soundcloud.AuthorizeOptions].
func NewState() string {
	return shared.GenerateID()
}

// NewOAuthHandler creates a handler that checks state and exchanges the returned code through client.
func NewOAuthHandler(client TokenExchanger, redirectURI, state string) *OAuthHandler {
	return &OAuthHandler{
		client:      client,
		redirectURI: redirectURI,
		state:       state,
		resultChan:  make(chan OAuthResult, 1),
	}
}

// Routes returns the path of the redirect URI.
func (h *OAuthHandler) Routes() []string {
	u, err := url.Parse(h.redirectURI)
	if err != nil || u.Path == "" {
		return []string{DefaultCallbackPath}
	}
	return []string{u.Path}
}

// ServeHTTP handles the callback request.
//
// Only the first request is processed. The state must be a valid id equal to the one
// the handler was created with.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	state := query.Get("state")
	if !shared.IsID(state) || state != h.state {
		h.Send(OAuthResult{err: shared.ErrInvalidState})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	// A stored refresh token or password would outrank the code grant.
	opts := soundcloud.Options{
		Code:         soundcloud.String(code),
		RedirectURI:  soundcloud.String(h.redirectURI),
		RefreshToken: soundcloud.String(""),
		Username:     soundcloud.String(""),
		Password:     soundcloud.String(""),
	}
	if _, err := h.client.ExchangeToken(r.Context(), opts); err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: h.client.Token()})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>scx: connected</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f2f2f2; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #ff5500; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Connected to SoundCloud</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
