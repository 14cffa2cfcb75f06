package soundcloud

import (
	"net/http"
	"sync"

	"github.com/desertthunder/scx/internal/shared"
	"github.com/tidwall/gjson"
)

// errorPaths are tried in order against a failed response body.
var errorPaths = []string{"error", "errors.error", "errors.0.error_message"}

// ResponseError is returned for any non-2xx response once the retry policy is exhausted.
//
// The message has the form "401 Unauthorized: invalid_grant", degrading to
// "401 Unauthorized" when the body carries no error text.
type ResponseError struct {
	StatusCode int
	Body       []byte
	Response   *http.Response // body already consumed

	once sync.Once
	msg  string
}

func newResponseError(r *rawResponse) *ResponseError {
	return &ResponseError{StatusCode: r.statusCode, Body: r.body, Response: r.resp}
}

// Error implements error. The message is computed on first use.
func (e *ResponseError) Error() string {
	e.once.Do(func() {
		e.msg = InterpretStatus(e.StatusCode)
		if text := extractErrorText(e.Body); text != "" {
			e.msg += ": " + text
		}
	})
	return e.msg
}

// Unwrap maps the failure onto the shared sentinel errors.
func (e *ResponseError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return shared.ErrNotAuthenticated
	}
	return shared.ErrAPIRequest
}

// ErrorText returns the error text found in the body, or "".
func (e *ResponseError) ErrorText() string {
	return extractErrorText(e.Body)
}

func extractErrorText(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range errorPaths {
		if r := gjson.GetBytes(body, path); r.Exists() && r.String() != "" {
			return r.String()
		}
	}
	return ""
}

// ConfigurationError reports a missing credential combination.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return "soundcloud: " + e.Message
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrInvalidConfig}
	}
	return []error{shared.ErrInvalidConfig, e.Err}
}
