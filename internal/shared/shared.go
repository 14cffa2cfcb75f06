// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger opens (or creates) path for appending and returns a JSON [log.Logger] writing to it.
// The caller owns the returned file.
func NewFileLogger(path string) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	opts := log.Options{ReportTimestamp: true, Formatter: log.JSONFormatter}
	return log.NewWithOptions(f, opts), f, nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ParseLogLevel is [log.ParseLevel] with an empty string meaning info.
func ParseLogLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	ll, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return ll, nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// IsID reports whether s parses as a [uuid.UUID].
func IsID(s string) bool {
	return uuid.Validate(s) == nil
}

// MarshalJSON encodes v as indented JSON followed by a newline.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return append(data, '\n'), nil
}

// NormalizeTrackKey lowercases title and artist, collapses whitespace and joins them with "|".
func NormalizeTrackKey(title, artist string) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return norm(title) + "|" + norm(artist)
}
