package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringIncludesBuildMetadata(t *testing.T) {
	originalVersion := Version
	originalCommit := Commit
	originalDate := Date
	t.Cleanup(func() {
		Version = originalVersion
		Commit = originalCommit
		Date = originalDate
	})

	Version = "0.4.0"
	Commit = "9f1c2e7"
	Date = "2026-10-19"

	got := String()
	require.Contains(t, got, "cmdsock 0.4.0")
	require.Contains(t, got, "commit=9f1c2e7")
	require.Contains(t, got, "date=2026-10-19")
	require.Contains(t, got, "go="+runtime.Version())
	require.Contains(t, got, runtime.GOOS+"/"+runtime.GOARCH)
}
