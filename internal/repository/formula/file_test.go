package formula

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	domain "github.com/jefftt/s3edit/internal/domain/formula"
	"github.com/jefftt/s3edit/internal/logger"
)

func released() *domain.Formula {
	return &domain.Formula{
		Name:     "s3edit",
		Version:  "0.0.1",
		Desc:     "Make bulk S3 edits",
		Homepage: "https://github.com/jefftt/s3edit",
		Artifacts: []domain.Artifact{{
			OS:     domain.OSDarwin,
			Arch:   domain.ArchAMD64,
			URL:    "https://github.com/jefftt/s3edit/releases/download/{version}/s3edit-{version}-x86_64-apple-darwin.tar.gz",
			SHA256: "7f73d029053a77e7d60564f03dd9e40fef5b210a38282249d4ebca552de8e847",
		}},
		Install: domain.Install{Binaries: []string{"s3edit"}},
	}
}

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))
	f, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, f)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal formula.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "Formula", "s3edit.yaml")
	repo := NewFileRepository(file)

	want := released()
	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_AmbiguousRevision refuses a second checksum for the same version.
func TestFileRepository_AmbiguousRevision(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "s3edit.yaml")
	repo := NewFileRepository(file)
	require.NoError(t, repo.Save(context.Background(), released()))

	// Same revision again is fine.
	require.NoError(t, repo.Save(context.Background(), released()))

	edited := released()
	edited.Artifacts[0].SHA256 = "1111111111111111111111111111111111111111111111111111111111111111"
	require.ErrorIs(t, repo.Save(context.Background(), edited), domain.ErrAmbiguousRevision)

	// A new version supersedes the old one.
	bumped := released()
	bumped.Version = "0.0.2"
	bumped.Artifacts[0].SHA256 = edited.Artifacts[0].SHA256
	require.NoError(t, repo.Save(context.Background(), bumped))

	// Forcing replaces the record.
	forced := NewFileRepository(file, WithForce(true))
	bumped.Artifacts[0].SHA256 = "2222222222222222222222222222222222222222222222222222222222222222"
	require.NoError(t, forced.Save(context.Background(), bumped))

	got, err := forced.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, bumped.Artifacts[0].SHA256, got.Artifacts[0].SHA256)
}

// TestFileRepository_ForceWarns logs a warning when a forced save replaces
// a revision with different checksums.
func TestFileRepository_ForceWarns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := logger.ToContext(context.Background(), logger.NewWithWriter(&buf, zapcore.DebugLevel))

	file := filepath.Join(t.TempDir(), "s3edit.yaml")
	repo := NewFileRepository(file, WithForce(true))
	require.NoError(t, repo.Save(ctx, released()))
	require.Empty(t, buf.String())

	// Same checksums replace nothing.
	require.NoError(t, repo.Save(ctx, released()))
	require.Empty(t, buf.String())

	edited := released()
	edited.Artifacts[0].SHA256 = "1111111111111111111111111111111111111111111111111111111111111111"
	require.NoError(t, repo.Save(ctx, edited))

	out := buf.String()
	require.Contains(t, out, "Replacing revision with different checksums")
	require.Contains(t, out, domain.ErrAmbiguousRevision.Error())
	require.Contains(t, out, file)
}

// TestFileRepository_RejectsInvalid does not write an invalid formula.
func TestFileRepository_RejectsInvalid(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "s3edit.yaml")
	repo := NewFileRepository(file)

	f := released()
	f.Version = "latest"
	require.Error(t, repo.Save(context.Background(), f))

	_, err := os.Stat(file)
	require.ErrorIs(t, err, os.ErrNotExist)
}
