package shared

import "fmt"

// ErrNotImplemented marks a command the selected service cannot perform.
var ErrNotImplemented = fmt.Errorf("not implemented")

// Wrapped by soundcloud.ConfigurationError and the CLI's config checks.
var (
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid soundcloud configuration")
	ErrMissingCredentials = fmt.Errorf("client_id or access_token required")
	ErrNoGrant            = fmt.Errorf("no refresh token, username/password or code/redirect_uri to exchange")
)

// OAuth flow.
var (
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrInvalidState     = fmt.Errorf("oauth state mismatch")
	ErrTimeout          = fmt.Errorf("timed out waiting for authorization")
)

// API responses and lookups.
var (
	ErrAPIRequest         = fmt.Errorf("soundcloud API request failed")
	ErrUnexpectedResponse = fmt.Errorf("unexpected response shape")
	ErrMissingKey         = fmt.Errorf("key not present in response")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrCredentialNotFound = fmt.Errorf("no stored credential")
)

// Caller input.
var (
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
