package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jefftt/s3edit/internal/archive"
	domain "github.com/jefftt/s3edit/internal/domain/formula"
	"github.com/jefftt/s3edit/internal/logger"
	repository "github.com/jefftt/s3edit/internal/repository/formula"
)

// TargetPlaceholder is replaced by the release target triple of each build.
const TargetPlaceholder = "{target}"

// Options contains inputs for the packager entry point.
type Options struct {
	// Name is the package name, also the default install binary.
	Name string
	// Version is the release version.
	Version string
	// Desc is the one-line description.
	Desc string
	// Homepage is the project URL.
	Homepage string
	// URLTemplate is where the archives will be published. It may use
	// {version} and {target}; by default it points at the homepage's
	// GitHub release downloads.
	URLTemplate string
	// Binaries are the file names installed into bin. Defaults to Name.
	Binaries []string
	// Builds maps "os/arch" to a built binary, or to a directory holding
	// every install binary.
	Builds map[string]string
	// OutputDir receives the archives, the YAML formula and the Ruby formula.
	OutputDir string
	// Force replaces a stored formula of the same version with other checksums.
	Force bool
}

// Result lists the files produced by a packaging run.
type Result struct {
	// Formula is the saved formula record.
	Formula *domain.Formula
	// FormulaPath is the YAML formula.
	FormulaPath string
	// RubyPath is the rendered Homebrew formula.
	RubyPath string
	// Archives are the release archives, one per build.
	Archives []string
}

var (
	errNameRequired     = errors.New("name is required")
	errNoBuilds         = errors.New("at least one build is required")
	errTargetNotInURL   = errors.New("url template must contain " + TargetPlaceholder + " when packaging several builds")
	errSingleBinaryOnly = errors.New("a build given as a file can only provide a single install binary")
)

// packager turns build outputs into release archives and a formula.
type packager struct {
	opts     *Options
	binaries []string
	template string
}

// Run executes the packaging workflow.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "package")

	pkg, err := newPackager(opts)
	if err != nil {
		return nil, err
	}

	result, err := pkg.run(ctx)
	if err != nil {
		return nil, fmt.Errorf("packager failed: %w", err)
	}

	printNextSteps(ctx, result)

	logger.Info(ctx, "Packager completed successfully")

	return result, nil
}

func newPackager(opts *Options) (*packager, error) {
	if opts == nil || strings.TrimSpace(opts.Name) == "" {
		return nil, errNameRequired
	}

	if len(opts.Builds) == 0 {
		return nil, errNoBuilds
	}

	p := &packager{
		opts:     opts,
		binaries: opts.Binaries,
		template: opts.URLTemplate,
	}

	if len(p.binaries) == 0 {
		p.binaries = []string{opts.Name}
	}

	if p.template == "" {
		p.template = DefaultURLTemplate(opts.Homepage, opts.Name)
	}

	if len(opts.Builds) > 1 && !strings.Contains(p.template, TargetPlaceholder) {
		return nil, errTargetNotInURL
	}

	return p, nil
}

// DefaultURLTemplate returns the GitHub release download URL of an archive.
func DefaultURLTemplate(homepage, name string) string {
	return strings.TrimSuffix(homepage, "/") + "/releases/download/" +
		domain.VersionPlaceholder + "/" + name + "-" + domain.VersionPlaceholder + "-" + TargetPlaceholder + ".tar.gz"
}

func (p *packager) run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	f := &domain.Formula{
		Name:     p.opts.Name,
		Version:  p.opts.Version,
		Desc:     p.opts.Desc,
		Homepage: p.opts.Homepage,
		Install:  domain.Install{Binaries: p.binaries},
	}

	result := &Result{
		Formula:     f,
		FormulaPath: filepath.Join(p.opts.OutputDir, p.opts.Name+".yaml"),
		RubyPath:    filepath.Join(p.opts.OutputDir, p.opts.Name+".rb"),
	}

	// Archives stay staged until the formula is saved.
	staging, err := os.MkdirTemp(p.opts.OutputDir, ".package-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	defer func() {
		_ = os.RemoveAll(staging)
	}()

	platforms := make([]string, 0, len(p.opts.Builds))
	for platform := range p.opts.Builds {
		platforms = append(platforms, platform)
	}

	sort.Strings(platforms)

	staged := make([]string, 0, len(platforms))

	for _, raw := range platforms {
		artifact, archivePath, err := p.packageBuild(ctx, staging, raw, p.opts.Builds[raw])
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", raw, err)
		}

		f.Artifacts = append(f.Artifacts, *artifact)
		staged = append(staged, archivePath)
	}

	logger.InfoKV(ctx, "Saving formula", "path", result.FormulaPath)

	repo := repository.NewFileRepository(result.FormulaPath, repository.WithForce(p.opts.Force))

	err = repo.Save(ctx, f)
	if errors.Is(err, domain.ErrAmbiguousRevision) {
		return nil, fmt.Errorf("%w (bump the version or pass --force)", err)
	}

	if err != nil {
		return nil, err
	}

	for _, path := range staged {
		published := filepath.Join(p.opts.OutputDir, filepath.Base(path))
		if err = os.Rename(path, published); err != nil {
			return nil, fmt.Errorf("publish archive: %w", err)
		}

		result.Archives = append(result.Archives, published)
	}

	logger.InfoKV(ctx, "Rendering Homebrew formula", "path", result.RubyPath)

	if err = writeRuby(result.RubyPath, f); err != nil {
		return nil, err
	}

	return result, nil
}

// packageBuild archives one build and returns its artifact entry.
func (p *packager) packageBuild(ctx context.Context, dir, raw, buildPath string) (*domain.Artifact, string, error) {
	platform, err := domain.ParsePlatform(raw)
	if err != nil {
		return nil, "", err
	}

	target, err := platform.Target()
	if err != nil {
		return nil, "", err
	}

	sources, err := p.sources(buildPath)
	if err != nil {
		return nil, "", err
	}

	archivePath := filepath.Join(dir,
		fmt.Sprintf("%s-%s-%s%s", p.opts.Name, p.opts.Version, target, archive.FormatTarGz))

	logger.InfoKV(ctx, "Creating archive", "platform", raw, "archive", archivePath)

	if err = archive.Create(archivePath, sources); err != nil {
		return nil, "", err
	}

	sum, err := domain.FileDigest(archivePath)
	if err != nil {
		return nil, "", err
	}

	return &domain.Artifact{
		OS:     platform.OS,
		Arch:   platform.Arch,
		URL:    strings.ReplaceAll(p.template, TargetPlaceholder, target),
		SHA256: sum,
	}, archivePath, nil
}

// sources maps archive entry names to files on disk for one build.
func (p *packager) sources(buildPath string) (map[string]string, error) {
	info, err := os.Stat(buildPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if len(p.binaries) != 1 {
			return nil, errSingleBinaryOnly
		}

		return map[string]string{p.binaries[0]: buildPath}, nil
	}

	sources := make(map[string]string, len(p.binaries))

	for _, name := range p.binaries {
		path := filepath.Join(buildPath, name)
		if _, err = os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: %w", name, archive.ErrMissingFile)
		}

		sources[name] = path
	}

	return sources, nil
}

func writeRuby(path string, f *domain.Formula) error {
	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}

	if err = f.RenderRuby(out); err != nil {
		_ = out.Close()

		return err
	}

	return out.Close()
}

// printNextSteps logs the files to publish.
func printNextSteps(ctx context.Context, result *Result) {
	var builder strings.Builder

	builder.WriteString("You should upload the following files:\n")

	for _, a := range result.Formula.Artifacts {
		builder.WriteString(a.ExpandURL(result.Formula.Version))
		builder.WriteString("\n")
	}

	builder.WriteString("from:\n")
	builder.WriteString(strings.Join(result.Archives, ",\n"))
	builder.WriteString("\n\nThen publish ")
	builder.WriteString(result.RubyPath)
	builder.WriteString(" in your tap and keep ")
	builder.WriteString(result.FormulaPath)
	builder.WriteString(" for s3edit-formula install.")

	logger.Info(ctx, builder.String())
}
