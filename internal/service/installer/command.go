package installer

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/jefftt/s3edit/internal/archive"
	domain "github.com/jefftt/s3edit/internal/domain/formula"
	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/service/common"
)

var (
	errInstallerAlreadyRunning = errors.New("another install into this bin directory is running")
	errFormulaRequired         = errors.New("formula path or url is required")
)

// Options are inputs accepted by the installer entry point.
type Options struct {
	// Formula is a local YAML path or an http(s) URL.
	Formula string
	// BinDir receives the installed binaries. DefaultBinDir is used when empty.
	BinDir string
	// Platform overrides the detected os/arch, e.g. "linux/amd64".
	Platform string
	// Client downloads the formula and the artifact. A default client is used when nil.
	Client *common.Client
}

// Result describes a finished install.
type Result struct {
	// Version is the installed formula version.
	Version string
	// Platform is the platform the artifact was resolved for.
	Platform domain.Platform
	// Binaries are the absolute paths of the installed files.
	Binaries []string
}

// runner holds the state of a single install.
type runner struct {
	opts               *Options
	client             *common.Client
	binDir             string
	platform           domain.Platform
	temporaryDirectory string
	markerWritten      bool
}

// Run installs the binaries described by the formula. Nothing is written to
// the bin directory unless the downloaded artifact matches its declared sha256.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "install")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return nil, err
	}

	defer r.cleanup(ctx)

	result, err := r.run(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Install failed", "error", err)
		return nil, err
	}

	logger.InfoKV(ctx, "Install completed",
		"version", result.Version,
		"platform", result.Platform.String(),
		"bin_dir", r.binDir)

	return result, nil
}

// newRunner checks the inputs and claims the bin directory.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	if opts == nil || strings.TrimSpace(opts.Formula) == "" {
		return nil, errFormulaRequired
	}

	r := &runner{
		opts:     opts,
		client:   opts.Client,
		binDir:   opts.BinDir,
		platform: domain.Current(),
	}

	if r.client == nil {
		r.client = common.NewClient()
	}

	if r.binDir == "" {
		r.binDir = DefaultBinDir()
	}

	if opts.Platform != "" {
		platform, err := domain.ParsePlatform(opts.Platform)
		if err != nil {
			return nil, err
		}

		r.platform = platform
	}

	if err := os.MkdirAll(r.binDir, 0o755); err != nil {
		return nil, fmt.Errorf("create bin directory: %w", err)
	}

	if IsInstallerRunningNow(ctx, r.binDir) {
		return nil, errInstallerAlreadyRunning
	}

	if err := writeMarker(r.binDir); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, errInstallerAlreadyRunning
		}

		return nil, fmt.Errorf("write install marker: %w", err)
	}

	r.markerWritten = true

	return r, nil
}

func (r *runner) run(ctx context.Context) (*Result, error) {
	logger.InfoKV(ctx, "Loading formula", "source", r.opts.Formula)

	f, err := common.LoadFormula(ctx, r.client, r.opts.Formula)
	if err != nil {
		return nil, fmt.Errorf("load formula: %w", err)
	}

	if err = f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid formula: %w", err)
	}

	artifact, err := f.Resolve(r.platform)
	if err != nil {
		return nil, err
	}

	downloaded, err := r.download(ctx, f, artifact)
	if err != nil {
		return nil, err
	}

	binaries, err := archive.Extract(downloaded, archive.DetectFormat(downloaded), f.Install.Binaries)
	if err != nil {
		return nil, fmt.Errorf("extract artifact: %w", err)
	}

	result := &Result{
		Version:  f.Version,
		Platform: r.platform,
		Binaries: make([]string, 0, len(f.Install.Binaries)),
	}

	for _, name := range f.Install.Binaries {
		target := filepath.Join(r.binDir, name)

		logger.InfoKV(ctx, "Installing binary", "file", target)

		if err = apply(target, binaries[name]); err != nil {
			return nil, fmt.Errorf("install %s: %w", name, err)
		}

		result.Binaries = append(result.Binaries, target)
	}

	return result, nil
}

// download fetches the artifact into a temporary directory and verifies it.
func (r *runner) download(ctx context.Context, f *domain.Formula, artifact *domain.Artifact) (string, error) {
	tempDir, err := os.MkdirTemp("", "s3edit-install-")
	if err != nil {
		return "", fmt.Errorf("create temporary directory: %w", err)
	}

	r.temporaryDirectory = tempDir

	rawURL := artifact.ExpandURL(f.Version)
	path := filepath.Join(tempDir, artifactFilename(rawURL))

	logger.InfoKV(ctx, "Downloading artifact", "url", rawURL)

	size, err := r.client.Download(ctx, rawURL, path)
	if err != nil {
		return "", err
	}

	logger.DebugKV(ctx, "Artifact downloaded", "bytes", size)

	got, err := domain.FileDigest(path)
	if err != nil {
		return "", err
	}

	if err = domain.CompareDigest(got, artifact.SHA256); err != nil {
		return "", fmt.Errorf("%s: %w", rawURL, err)
	}

	return path, nil
}

// cleanup removes temporary artifacts and the running marker.
func (r *runner) cleanup(ctx context.Context) {
	if r.markerWritten {
		if err := removeMarker(r.binDir); err != nil {
			logger.Warnf(ctx, "Unable to remove install marker: %v", err)
		}
	}

	if r.temporaryDirectory != "" {
		if err := os.RemoveAll(r.temporaryDirectory); err != nil {
			logger.Warnf(ctx, "Unable to remove %s: %v", r.temporaryDirectory, err)
		}
	}
}

// apply atomically replaces target with data.
// go-update verifies the written bytes against their sha256.
func apply(target string, data []byte) error {
	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		empty, err := os.Create(filepath.Clean(target))
		if err != nil {
			return err
		}

		if err = empty.Close(); err != nil {
			return err
		}
	}

	checksum := sha256.Sum256(data)

	err := goupdate.Apply(bytes.NewReader(data), goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA256,
	})
	if err != nil {
		return err
	}

	oldFileName := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".old")
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

// artifactFilename keeps the archive suffix of the download URL so the format can be detected.
func artifactFilename(rawURL string) string {
	name := rawURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	name = name[strings.LastIndex(name, "/")+1:]
	if name == "" {
		return "artifact"
	}

	return name
}
