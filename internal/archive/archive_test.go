package archive

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

// TestDetectFormat maps suffixes to formats.
func TestDetectFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, FormatTarGz, DetectFormat("https://x/s3edit-0.0.1-x86_64-apple-darwin.tar.gz"))
	require.Equal(t, FormatTarGz, DetectFormat("s3edit.TGZ"))
	require.Equal(t, FormatTarXz, DetectFormat("s3edit.tar.xz"))
	require.Equal(t, FormatRaw, DetectFormat("s3edit"))
	require.Equal(t, ".tar.gz", FormatTarGz.String())
}

// TestCreateExtract round-trips binaries through both tarball formats.
func TestCreateExtract(t *testing.T) {
	t.Parallel()

	for _, suffix := range []string{".tar.gz", ".tar.xz"} {
		suffix := suffix
		t.Run(suffix, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			bin := writeFile(t, dir, "build-s3edit", "#!/bin/sh\necho s3edit\n")
			readme := writeFile(t, dir, "README", "docs")

			dst := filepath.Join(dir, "s3edit"+suffix)
			require.NoError(t, Create(dst, map[string]string{"s3edit": bin, "doc/README": readme}))

			files, err := Extract(dst, DetectFormat(dst), []string{"s3edit", "README"})
			require.NoError(t, err)
			require.Equal(t, "#!/bin/sh\necho s3edit\n", string(files["s3edit"]))
			require.Equal(t, "docs", string(files["README"]))

			_, err = Extract(dst, DetectFormat(dst), []string{"s3edit", "other"})
			require.ErrorIs(t, err, ErrMissingFile)
		})
	}
}

// TestExtractRaw returns the download itself as the binary.
func TestExtractRaw(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeFile(t, dir, "download", "binary")

	files, err := Extract(src, FormatRaw, []string{"s3edit"})
	require.NoError(t, err)
	require.Equal(t, "binary", string(files["s3edit"]))

	_, err = Extract(src, FormatRaw, []string{"a", "b"})
	require.ErrorIs(t, err, errRawMultiple)
}

// TestExtractRejectsTraversal refuses entries escaping the root.
func TestExtractRejectsTraversal(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "evil.tar.gz")

	out, err := os.Create(dst)
	require.NoError(t, err)

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)
	body := []byte("x")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../s3edit", Mode: 0o755, Size: int64(len(body)), Typeflag: tar.TypeReg}))
	_, err = tw.Write(body)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())

	_, err = Extract(dst, FormatTarGz, []string{"s3edit"})
	require.ErrorIs(t, err, errUnsafePath)
}

// TestIsSafePath covers the traversal guard.
func TestIsSafePath(t *testing.T) {
	t.Parallel()

	require.True(t, isSafePath("s3edit"))
	require.True(t, isSafePath("./bin/s3edit"))
	require.True(t, isSafePath("a..b"))
	require.False(t, isSafePath("/usr/bin/s3edit"))
	require.False(t, isSafePath("bin/../../s3edit"))
	require.False(t, isSafePath(`..\s3edit`))
	require.False(t, isSafePath(""))
}
