package verifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	domain "github.com/jefftt/s3edit/internal/domain/formula"
	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/service/common"
)

var errFormulaRequired = errors.New("formula path or url is required")

// Options are inputs accepted by the verifier entry point.
type Options struct {
	// Formula is a local YAML path or an http(s) URL.
	Formula string
	// Offline skips downloading the artifacts.
	Offline bool
	// Client downloads the formula and the artifacts. A default client is used when nil.
	Client *common.Client
}

// Report lists what was checked.
type Report struct {
	// Name and Version identify the checked formula.
	Name, Version string
	// Verified are the platforms whose artifact matched its sha256.
	Verified []domain.Platform
}

// Run lints the formula and, unless offline, checks every artifact against
// its declared sha256. All problems are returned together.
func Run(ctx context.Context, opts *Options) (*Report, error) {
	ctx = logger.WithName(ctx, "check")

	if opts == nil || opts.Formula == "" {
		return nil, errFormulaRequired
	}

	client := opts.Client
	if client == nil {
		client = common.NewClient()
	}

	f, err := common.LoadFormula(ctx, client, opts.Formula)
	if err != nil {
		return nil, fmt.Errorf("load formula: %w", err)
	}

	report := &Report{Name: f.Name, Version: f.Version}

	var result *multierror.Error

	if err = f.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if opts.Offline {
		logger.Info(ctx, "Offline mode, artifacts are not downloaded")
		return report, result.ErrorOrNil()
	}

	for i := range f.Artifacts {
		a := &f.Artifacts[i]

		if err = verifyArtifact(ctx, client, f.Version, a); err != nil {
			logger.ErrorKV(ctx, "Artifact check failed", "platform", a.Platform().String(), "error", err)
			result = multierror.Append(result, fmt.Errorf("artifact %s: %w", a.Platform(), err))

			continue
		}

		logger.InfoKV(ctx, "Artifact verified", "platform", a.Platform().String())
		report.Verified = append(report.Verified, a.Platform())
	}

	return report, result.ErrorOrNil()
}

// verifyArtifact downloads one artifact and compares its digest.
func verifyArtifact(ctx context.Context, client *common.Client, version string, a *domain.Artifact) error {
	tempDir, err := os.MkdirTemp("", "s3edit-check-")
	if err != nil {
		return err
	}

	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	path := filepath.Join(tempDir, "artifact")

	if _, err = client.Download(ctx, a.ExpandURL(version), path); err != nil {
		return err
	}

	got, err := domain.FileDigest(path)
	if err != nil {
		return err
	}

	return domain.CompareDigest(got, a.SHA256)
}
