// Package installer installs a prebuilt binary from a formula.
//
// It downloads the artifact for the current platform into a temporary
// directory, checks its sha256, extracts the listed binaries and atomically
// places them in the bin directory. A marker file prevents two installs into
// the same bin directory from running at once.
package installer
