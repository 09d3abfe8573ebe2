package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxSocketPathLen is sizeof(sun_path) on Linux minus the trailing NUL.
const maxSocketPathLen = 107

var validLogLevels = map[string]struct{}{
	"debug":   {},
	"info":    {},
	"warn":    {},
	"warning": {},
	"error":   {},
}

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	path := strings.TrimSpace(cfg.Socket.Path)
	if path == "" {
		return nil, fmt.Errorf("socket.path must not be empty")
	}
	if len(path) > maxSocketPathLen {
		return nil, fmt.Errorf("socket.path is %d bytes; unix socket paths are limited to %d", len(path), maxSocketPathLen)
	}
	if !filepath.IsAbs(path) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("socket.path %q is relative; it resolves against the working directory", path)})
	}

	if cfg.Socket.DialTimeout < 0 {
		return nil, fmt.Errorf("socket.dial_timeout_ms must be >= 0")
	}
	if cfg.Socket.WriteTimeout < 0 {
		return nil, fmt.Errorf("socket.write_timeout_ms must be >= 0")
	}
	if cfg.Submit.ReplyTimeout < 0 {
		return nil, fmt.Errorf("submit.reply_timeout_ms must be >= 0")
	}
	if cfg.Submit.AwaitReply && cfg.Submit.ReplyTimeout == 0 {
		warnings = append(warnings, Warning{Message: "submit.await_reply is enabled with no reply timeout; a silent daemon blocks forever"})
	}

	if _, ok := validLogLevels[strings.ToLower(strings.TrimSpace(cfg.Log.Level))]; !ok {
		return nil, fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	return warnings, nil
}
