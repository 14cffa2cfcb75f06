package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		WithLogger(logger, "component", "test").Info("hello")

		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "component=test") {
			t.Errorf("unexpected log output %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger appends json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scx.log")
		logger, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("to file", "k", "v")
		f.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), `"msg":"to file"`) {
			t.Errorf("expected json log entry, got %q", data)
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		if ll, err := ParseLogLevel(""); err != nil || ll != log.InfoLevel {
			t.Errorf("expected info for empty level, got %v, %v", ll, err)
		}
		if ll, err := ParseLogLevel("debug"); err != nil || ll != log.DebugLevel {
			t.Errorf("expected debug, got %v, %v", ll, err)
		}
		if _, err := ParseLogLevel("loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if !IsID(a) {
		t.Errorf("expected %s to be a valid id", a)
	}
	if IsID("not-an-id") {
		t.Error("expected invalid id to be rejected")
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := MarshalJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(data) != "{\n  \"a\": 1\n}\n" {
		t.Errorf("unexpected output %q", data)
	}

	if _, err := MarshalJSON(make(chan int)); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestOpenBrowser(t *testing.T) {
	orig := getRuntime
	t.Cleanup(func() { getRuntime = orig })

	t.Run("unsupported platform", func(t *testing.T) {
		t.Setenv("BROWSER", "")
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://soundcloud.com"); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})

	t.Run("windows handler", func(t *testing.T) {
		t.Setenv("BROWSER", "")
		getRuntime = func() string { return "windows" }
		cmd, err := browserCommand("https://soundcloud.com/connect")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := []string{"rundll32", "url.dll,FileProtocolHandler", "https://soundcloud.com/connect"}
		if strings.Join(cmd.Args, " ") != strings.Join(want, " ") {
			t.Errorf("unexpected args %v", cmd.Args)
		}
	})

	t.Run("BROWSER overrides", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox")
		getRuntime = func() string { return "plan9" }
		cmd, err := browserCommand("https://soundcloud.com")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(cmd.Args) != 2 || cmd.Args[0] != "firefox" {
			t.Errorf("unexpected args %v", cmd.Args)
		}
	})
}
