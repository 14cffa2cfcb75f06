package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openers maps GOOS to the command that hands a URL to the desktop.
var openers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// browserCommand returns the command that opens url. $BROWSER wins when set.
func browserCommand(url string) (*exec.Cmd, error) {
	if b := os.Getenv("BROWSER"); b != "" {
		return exec.Command(b, url), nil
	}

	args, ok := openers[getRuntime()]
	if !ok {
		return nil, fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, getRuntime())
	}
	return exec.Command(args[0], append(args[1:], url)...), nil
}

// OpenBrowser opens url in the user's browser without waiting for it to exit.
func OpenBrowser(url string) error {
	cmd, err := browserCommand(url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
