package formula

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"
)

// VersionPlaceholder is replaced by the formula version when an artifact URL is expanded.
const VersionPlaceholder = "{version}"

// Formula is a package-installation recipe for a prebuilt binary.
type Formula struct {
	// Name is the package name. The Homebrew class name is derived from it.
	Name string `yaml:"name"`
	// Version is the semantic version of the release.
	Version string `yaml:"version"`
	// Desc is a one-line human readable description.
	Desc string `yaml:"desc"`
	// Homepage is the project URL.
	Homepage string `yaml:"homepage"`
	// Artifacts are the platform-conditional downloads.
	Artifacts []Artifact `yaml:"artifacts"`
	// Install describes what ends up in the bin directory.
	Install Install `yaml:"install"`
}

// Artifact is a download defined only for one platform.
type Artifact struct {
	// OS is the operating system family (darwin, linux).
	OS string `yaml:"os"`
	// Arch is the CPU architecture (amd64, arm64).
	Arch string `yaml:"arch"`
	// URL is the download URL; VersionPlaceholder is expanded with the formula version.
	URL string `yaml:"url"`
	// SHA256 is the lowercase hex digest of the bytes at the expanded URL.
	SHA256 string `yaml:"sha256"`
}

// Install is the install directive.
type Install struct {
	// Binaries are copied from the artifact into the bin directory.
	Binaries []string `yaml:"bin"`
}

var (
	errNameRequired      = errors.New("name is required")
	errBadVersion        = errors.New("version is not a semantic version")
	errBadHomepage       = errors.New("homepage must be an absolute http(s) URL")
	errNoArtifacts       = errors.New("at least one artifact is required")
	errDuplicatePlatform = errors.New("duplicate artifact platform")
	errUnknownPlatform   = errors.New("unknown artifact platform")
	errBadURL            = errors.New("artifact URL must be an absolute http(s) URL")
	errURLVersion        = errors.New("artifact URL does not embed the formula version")
	errBadChecksum       = errors.New("sha256 must be 64 hex characters")
	errNoBinaries        = errors.New("install must list at least one binary")
	errBadBinary         = errors.New("install binary must be a bare file name")

	sha256Pattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// Validate reports every problem with the formula at once.
func (f *Formula) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(f.Name) == "" {
		result = multierror.Append(result, errNameRequired)
	}

	if _, err := semver.StrictNewVersion(f.Version); err != nil {
		result = multierror.Append(result, fmt.Errorf("%w: %q", errBadVersion, f.Version))
	}

	if !isHTTPURL(f.Homepage) {
		result = multierror.Append(result, fmt.Errorf("%w: %q", errBadHomepage, f.Homepage))
	}

	if len(f.Artifacts) == 0 {
		result = multierror.Append(result, errNoArtifacts)
	}

	seen := make(map[Platform]struct{}, len(f.Artifacts))

	for _, a := range f.Artifacts {
		p := a.Platform()
		if _, dup := seen[p]; dup {
			result = multierror.Append(result, fmt.Errorf("%w: %s", errDuplicatePlatform, p))
		}

		seen[p] = struct{}{}

		if err := a.validate(f.Version); err != nil {
			result = multierror.Append(result, fmt.Errorf("artifact %s: %w", p, err))
		}
	}

	if len(f.Install.Binaries) == 0 {
		result = multierror.Append(result, errNoBinaries)
	}

	for _, bin := range f.Install.Binaries {
		if bin == "" || bin == "." || bin == ".." || strings.ContainsAny(bin, `/\`) {
			result = multierror.Append(result, fmt.Errorf("%w: %q", errBadBinary, bin))
		}
	}

	return result.ErrorOrNil()
}

// validate checks one artifact against the formula version.
func (a *Artifact) validate(version string) error {
	var result *multierror.Error

	if !a.Platform().IsKnown() {
		result = multierror.Append(result, errUnknownPlatform)
	}

	expanded := a.ExpandURL(version)
	if !isHTTPURL(expanded) {
		result = multierror.Append(result, fmt.Errorf("%w: %q", errBadURL, a.URL))
	}

	if version != "" && !embedsVersion(expanded, version) {
		result = multierror.Append(result, fmt.Errorf("%w: %q", errURLVersion, a.URL))
	}

	if !sha256Pattern.MatchString(a.SHA256) {
		result = multierror.Append(result, fmt.Errorf("%w: %q", errBadChecksum, a.SHA256))
	}

	return result.ErrorOrNil()
}

// embedsVersion reports whether version appears in rawURL as a whole token,
// optionally prefixed with "v". 0.0.1 is not embedded in .../0.0.10/...
func embedsVersion(rawURL, version string) bool {
	pattern := `(^|[^0-9A-Za-z.])v?` + regexp.QuoteMeta(version) + `($|[^0-9A-Za-z])`

	matched, err := regexp.MatchString(pattern, rawURL)

	return err == nil && matched
}

// ExpandURL returns the download URL with the version placeholder substituted.
func (a *Artifact) ExpandURL(version string) string {
	return strings.ReplaceAll(a.URL, VersionPlaceholder, version)
}

// Platform returns the os/arch pair of the artifact.
func (a *Artifact) Platform() Platform {
	return Platform{OS: a.OS, Arch: a.Arch}
}

// isHTTPURL reports whether raw is an absolute http or https URL with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
