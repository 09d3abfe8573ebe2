// Package doctor runs readiness diagnostics for config and the daemon socket.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rbright/cmdsock/internal/config"
	"github.com/rbright/cmdsock/internal/submit"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config and socket checks. The listener probe only runs when
// the socket file looks usable.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}

	socketPath := cfg.Config.Socket.Path
	fileCheck := checkSocketFile(socketPath)
	checks = append(checks, fileCheck)
	if fileCheck.Pass {
		checks = append(checks, checkListener(ctx, cfg.Config))
	}

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	if !cfg.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", cfg.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)}
}

// checkSocketFile validates that path exists and is a unix socket.
func checkSocketFile(path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Check{Name: "socket.path", Pass: false, Message: fmt.Sprintf("%s does not exist; is the daemon running?", path)}
		}
		return Check{Name: "socket.path", Pass: false, Message: err.Error()}
	}
	if info.Mode()&os.ModeSocket == 0 {
		return Check{Name: "socket.path", Pass: false, Message: fmt.Sprintf("%s exists but is not a unix socket (mode %s)", path, info.Mode())}
	}
	return Check{Name: "socket.path", Pass: true, Message: fmt.Sprintf("%s is a unix socket", path)}
}

// checkListener connects without writing to confirm a daemon is accepting.
func checkListener(ctx context.Context, cfg config.Config) Check {
	alive, err := submit.Probe(ctx, cfg.Socket.Path, cfg.Socket.DialTimeout)
	if err != nil {
		return Check{Name: "socket.listener", Pass: false, Message: err.Error()}
	}
	if !alive {
		return Check{Name: "socket.listener", Pass: false, Message: "connection refused; stale socket with no listener"}
	}
	return Check{Name: "socket.listener", Pass: true, Message: "daemon is accepting connections"}
}
