// Package packager turns release builds into a formula.
//
// Each build is archived as <name>-<version>-<target>.tar.gz, its sha256 is
// recorded in the YAML formula and the Homebrew Ruby formula is rendered next
// to it. The resulting files are uploaded to the release.
package packager
