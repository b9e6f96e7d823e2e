package formula

import (
	"errors"
	"fmt"
	"runtime"
)

// Supported operating systems and architectures.
const (
	OSDarwin  = "darwin"
	OSLinux   = "linux"
	ArchAMD64 = "amd64"
	ArchARM64 = "arm64"
)

// ErrUnsupportedPlatform is returned when no artifact is defined for a platform.
// Install must not proceed in that case.
var ErrUnsupportedPlatform = errors.New("no artifact defined for platform")

// Platform is an os/arch pair in Go's GOOS/GOARCH vocabulary.
type Platform struct {
	OS   string
	Arch string
}

// targets maps platforms onto the release target triples used in archive names.
//
//nolint:gochecknoglobals // Read-only lookup table.
var targets = map[Platform]string{
	{OS: OSDarwin, Arch: ArchAMD64}: "x86_64-apple-darwin",
	{OS: OSDarwin, Arch: ArchARM64}: "aarch64-apple-darwin",
	{OS: OSLinux, Arch: ArchAMD64}:  "x86_64-unknown-linux-musl",
	{OS: OSLinux, Arch: ArchARM64}:  "aarch64-unknown-linux-musl",
}

// Current returns the platform the process runs on.
func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// ParsePlatform parses "os/arch".
func ParsePlatform(s string) (Platform, error) {
	for p := range targets {
		if p.String() == s {
			return p, nil
		}
	}

	return Platform{}, fmt.Errorf("%w: %q", errUnknownPlatform, s)
}

// String returns "os/arch".
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// IsKnown reports whether the platform has a release target.
func (p Platform) IsKnown() bool {
	_, ok := targets[p]
	return ok
}

// Target returns the release target triple, e.g. x86_64-apple-darwin.
func (p Platform) Target() (string, error) {
	t, ok := targets[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", errUnknownPlatform, p)
	}

	return t, nil
}

// Resolve returns the artifact for p. Apple silicon falls back to an Intel
// macOS artifact, which runs under Rosetta.
func (f *Formula) Resolve(p Platform) (*Artifact, error) {
	if a := f.artifactFor(p); a != nil {
		return a, nil
	}

	if p.OS == OSDarwin && p.Arch == ArchARM64 {
		if a := f.artifactFor(Platform{OS: OSDarwin, Arch: ArchAMD64}); a != nil {
			return a, nil
		}
	}

	return nil, fmt.Errorf("%s %s on %s: %w", f.Name, f.Version, p, ErrUnsupportedPlatform)
}

func (f *Formula) artifactFor(p Platform) *Artifact {
	for i := range f.Artifacts {
		if f.Artifacts[i].Platform() == p {
			return &f.Artifacts[i]
		}
	}

	return nil
}
