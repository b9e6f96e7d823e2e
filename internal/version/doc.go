// Package version exposes build metadata for s3edit and s3edit-formula.
//
// Version, Commit and BuildTime are injected at build time via -ldflags
// "-X github.com/jefftt/s3edit/internal/version.Version=...".
package version
