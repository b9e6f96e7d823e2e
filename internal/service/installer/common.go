package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/jefftt/s3edit/internal/logger"
)

const (
	// MarkerFilename marks that an install into a bin directory is running right now.
	MarkerFilename = ".s3edit-install.lock"

	// DefaultFileMode is used for installed binaries.
	DefaultFileMode os.FileMode = 0o755

	// markerLifetime is the period after which a marker without a readable owner is ignored.
	markerLifetime = 30 * time.Second
)

// markerPath returns the marker location for binDir.
func markerPath(binDir string) string {
	return filepath.Join(binDir, MarkerFilename)
}

// writeMarker records the current process as the owner of binDir.
// It fails with os.ErrExist when another installer created the marker first.
func writeMarker(binDir string) error {
	marker, err := os.OpenFile(markerPath(binDir), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	if _, err = marker.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		_ = marker.Close()

		return err
	}

	return marker.Close()
}

// IsInstallerRunningNow checks for a marker in binDir and clears it if it looks stale.
// A marker is live while its owner process exists; a marker whose owner
// cannot be read is trusted for markerLifetime.
func IsInstallerRunningNow(ctx context.Context, binDir string) bool {
	path := markerPath(binDir)

	fileInfo, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug(ctx, "Install marker not found, continuing")
		return false
	}

	if err != nil {
		logger.Warnf(ctx, "Unable to read install marker: %v", err)
		return false
	}

	running, known := markerOwnerRunning(path)

	switch {
	case known && running:
		return true
	case !known && time.Since(fileInfo.ModTime()) <= markerLifetime:
		return true
	}

	logger.Info(ctx, "The install marker is stale, removing it")

	if err = os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return true
	}

	return false
}

// markerOwnerRunning reports whether the process recorded in the marker is alive.
// known is false when the owner cannot be determined.
func markerOwnerRunning(path string) (running, known bool) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return false, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid <= 0 {
		return false, false
	}

	if pid == os.Getpid() {
		return false, true
	}

	process, err := ps.FindProcess(pid)
	if err != nil {
		return false, false
	}

	return process != nil, true
}

// removeMarker deletes the marker if this process owns it.
func removeMarker(binDir string) error {
	path := markerPath(binDir)

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	if strings.TrimSpace(string(contents)) != strconv.Itoa(os.Getpid()) {
		return fmt.Errorf("install marker %s is owned by another process", path)
	}

	return os.Remove(path)
}

// DefaultBinDir returns the bin directory used when none is configured:
// $HOME/.local/bin, or the temp dir when there is no home.
func DefaultBinDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "s3edit", "bin")
	}

	return filepath.Join(home, ".local", "bin")
}
