package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	oldCommit, oldTime := GitCommit, BuildTime
	t.Cleanup(func() { GitCommit, BuildTime = oldCommit, oldTime })

	GitCommit = "unknown"
	require.Equal(t, Version, String())

	GitCommit, BuildTime = "0123456789abcdef", "2026-01-02T03:04:05Z"
	require.Equal(t, Version+" (0123456, built 2026-01-02T03:04:05Z)", String())
}
