package doctor

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbright/cmdsock/internal/config"
	"github.com/stretchr/testify/require"
)

func loadedWithSocket(path string) config.Loaded {
	cfg := config.Default()
	cfg.Socket.Path = path
	return config.Loaded{Path: "/tmp/config.jsonc", Config: cfg, Exists: true}
}

func checkNames(report Report) []string {
	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, check.Name)
	}
	return names
}

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
	require.NotContains(t, text[len(text)-1:], "\n")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestRunWithListeningDaemon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passman.sock")
	listener, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	go func() {
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	report := Run(context.Background(), loadedWithSocket(path))
	require.True(t, report.OK(), report.String())
	require.Equal(t, []string{"config", "socket.path", "socket.listener"}, checkNames(report))
	require.Contains(t, report.String(), "daemon is accepting connections")
}

func TestRunMissingSocketSkipsListenerProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.sock")

	report := Run(context.Background(), loadedWithSocket(path))
	require.False(t, report.OK())
	require.Equal(t, []string{"config", "socket.path"}, checkNames(report))
	require.Contains(t, report.String(), "does not exist")
}

func TestRunRegularFileIsNotASocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passman.sock")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	report := Run(context.Background(), loadedWithSocket(path))
	require.False(t, report.OK())
	require.Contains(t, report.String(), "is not a unix socket")
}

func TestRunStaleSocketFailsListenerCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.sock")
	listener, err := net.Listen("unix", path)
	require.NoError(t, err)
	listener.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, listener.Close())

	report := Run(context.Background(), loadedWithSocket(path))
	require.False(t, report.OK())
	require.Equal(t, []string{"config", "socket.path", "socket.listener"}, checkNames(report))
	require.Contains(t, report.String(), "[FAIL] socket.listener: connection refused")
}

func TestCheckConfigReportsDefaults(t *testing.T) {
	check := checkConfig(config.Loaded{Path: "/home/u/.config/cmdsock/config.jsonc", Exists: false})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "using defaults")
}
