package models

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/scx/internal/shared"
)

// RequestLog records one API call issued from the CLI.
type RequestLog struct {
	base
	method       string
	path         string
	statusCode   int
	errorMessage string
}

// NewRequestLog creates a [RequestLog] for method and path. The method is upper-cased.
func NewRequestLog(sequence int, method, path string) *RequestLog {
	return &RequestLog{base: newBase(sequence), method: strings.ToUpper(method), path: path}
}

func (r *RequestLog) Method() string { return r.method }
func (r *RequestLog) Path() string { return r.path }
func (r *RequestLog) StatusCode() int { return r.statusCode }
func (r *RequestLog) ErrorMessage() string { return r.errorMessage }

func (r *RequestLog) SetStatusCode(code int) { r.statusCode = code }
func (r *RequestLog) SetErrorMessage(msg string) { r.errorMessage = msg }

// Failed reports whether the request ended in an error.
func (r *RequestLog) Failed() bool {
	return r.errorMessage != "" || r.statusCode >= http.StatusBadRequest
}

func (r *RequestLog) Validate() error {
	switch r.method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead:
	default:
		return fmt.Errorf("%w: unsupported method %q", shared.ErrInvalidInput, r.method)
	}
	if r.path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrInvalidInput)
	}
	return nil
}
