package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/require"
)

func setConfigHome(t *testing.T, dir string) {
	t.Helper()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
}

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	require.Equal(t, explicit, ResolvePath(explicit))

	configHome := t.TempDir()
	setConfigHome(t, configHome)
	require.Equal(t, filepath.Join(configHome, "cmdsock", "config.jsonc"), ResolvePath(""))
	require.Equal(t, filepath.Join(configHome, "cmdsock", "config.jsonc"), ResolvePath("   "))
}

func TestLoadMissingImplicitConfigUsesDefaults(t *testing.T) {
	setConfigHome(t, t.TempDir())

	loaded, err := Load("")
	require.NoError(t, err)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.Empty(t, loaded.Warnings)
}

func TestLoadMissingExplicitConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	_, err := Load(path)
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Contains(t, err.Error(), path)
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  // where passman listens
  "socket": {
    "path": "/run/user/1000/passman.sock",
    "dial_timeout_ms": 250,
  },
  "submit": { "await_reply": true },
  "payload": { "max_size": "64 KiB", "require_json": true },
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "/run/user/1000/passman.sock", loaded.Config.Socket.Path)
	require.Equal(t, 250*time.Millisecond, loaded.Config.Socket.DialTimeout)
	require.Equal(t, Default().Socket.WriteTimeout, loaded.Config.Socket.WriteTimeout)
	require.True(t, loaded.Config.Submit.AwaitReply)
	require.Equal(t, uint64(64*1024), loaded.Config.Payload.MaxSize)
	require.True(t, loaded.Config.Payload.RequireJSON)
}

func TestLoadImplicitConfigFromXDG(t *testing.T) {
	configHome := t.TempDir()
	setConfigHome(t, configHome)

	path := filepath.Join(configHome, "cmdsock", "config.jsonc")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(`{"log": {"level": "debug"}}`), 0o600))

	loaded, err := Load("")
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "debug", loaded.Config.Log.Level)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}

func TestLoadBlankFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
}
