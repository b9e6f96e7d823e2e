package installer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestIsInstallerRunningNow covers live, stale and unreadable markers.
func TestIsInstallerRunningNow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cases := map[string]struct {
		contents string
		age      time.Duration
		running  bool
	}{
		"live owner": {
			contents: strconv.Itoa(os.Getppid()),
			running:  true,
		},
		"dead owner": {
			contents: "2147483000",
			running:  false,
		},
		"fresh unreadable": {
			contents: "garbage",
			running:  true,
		},
		"old unreadable": {
			contents: "garbage",
			age:      time.Minute,
			running:  false,
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			binDir := t.TempDir()
			path := filepath.Join(binDir, MarkerFilename)
			require.NoError(t, os.WriteFile(path, []byte(tc.contents), 0o600))

			if tc.age > 0 {
				old := time.Now().Add(-tc.age)
				require.NoError(t, os.Chtimes(path, old, old))
			}

			require.Equal(t, tc.running, IsInstallerRunningNow(ctx, binDir))

			if !tc.running {
				require.NoFileExists(t, path)
			}
		})
	}

	require.False(t, IsInstallerRunningNow(ctx, t.TempDir()))
}

// TestMarker writes and removes a marker owned by this process.
func TestMarker(t *testing.T) {
	t.Parallel()

	binDir := t.TempDir()

	require.NoError(t, writeMarker(binDir))
	require.False(t, IsInstallerRunningNow(context.Background(), binDir))

	require.NoError(t, writeMarker(binDir))
	require.ErrorIs(t, writeMarker(binDir), os.ErrExist)
	require.NoError(t, removeMarker(binDir))
	require.NoFileExists(t, filepath.Join(binDir, MarkerFilename))
	require.NoError(t, removeMarker(binDir))

	require.NoError(t, os.WriteFile(filepath.Join(binDir, MarkerFilename), []byte("1"), 0o600))
	require.Error(t, removeMarker(binDir))
}
