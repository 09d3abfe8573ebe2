package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ResolvePath applies CLI then XDG rules for config.jsonc location.
func ResolvePath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return filepath.Join(xdg.ConfigHome, "cmdsock", "config.jsonc")
}
