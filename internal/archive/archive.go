package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Format is the container format of a release artifact.
type Format int

const (
	// FormatRaw is an uncompressed binary downloaded as is.
	FormatRaw Format = iota
	// FormatTarGz is a gzip-compressed tarball.
	FormatTarGz
	// FormatTarXz is an xz-compressed tarball.
	FormatTarXz
)

var (
	// ErrMissingFile is returned when a wanted file is not in the archive.
	ErrMissingFile = errors.New("file not found in archive")

	errUnsafePath  = errors.New("archive entry escapes the extraction root")
	errRawMultiple = errors.New("a raw artifact holds exactly one binary")
)

// DetectFormat picks the format from a file name or URL path.
func DetectFormat(name string) Format {
	name = strings.ToLower(name)

	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatTarXz
	default:
		return FormatRaw
	}
}

// String returns the usual file suffix of the format.
func (f Format) String() string {
	switch f {
	case FormatTarGz:
		return ".tar.gz"
	case FormatTarXz:
		return ".tar.xz"
	default:
		return ""
	}
}

// Create writes an archive at dst holding the files in sources, keyed by
// their name inside the archive. The format follows the suffix of dst.
func Create(dst string, sources map[string]string) (err error) {
	format := DetectFormat(dst)
	if format == FormatRaw {
		return fmt.Errorf("create %s: unknown archive suffix", dst)
	}

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	defer func() {
		if closeErr := out.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", dst, closeErr)
		}
	}()

	compressor, err := newCompressor(out, format)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(compressor)

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}

	// Stable entry order gives reproducible archives.
	sort.Strings(names)

	for _, name := range names {
		if err = addFile(tw, name, sources[name]); err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return fmt.Errorf("finish tar: %w", err)
	}

	if err = compressor.Close(); err != nil {
		return fmt.Errorf("finish compression: %w", err)
	}

	return nil
}

func newCompressor(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case FormatTarGz:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	case FormatTarXz:
		return xz.NewWriter(w)
	default:
		return nil, fmt.Errorf("unsupported archive format %d", format)
	}
}

func addFile(tw *tar.Writer, name, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	header := &tar.Header{
		Name:     name,
		Mode:     int64(info.Mode().Perm()),
		Size:     info.Size(),
		ModTime:  info.ModTime().UTC(),
		Typeflag: tar.TypeReg,
		Format:   tar.FormatPAX,
	}

	if err = tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}

	in, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	defer func() {
		_ = in.Close()
	}()

	if _, err = io.Copy(tw, in); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

// Extract returns the contents of the wanted files, matched by base name,
// from the artifact at src. A raw artifact is returned as the single wanted file.
func Extract(src string, format Format, wanted []string) (map[string][]byte, error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = in.Close()
	}()

	if format == FormatRaw {
		if len(wanted) != 1 {
			return nil, errRawMultiple
		}

		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", src, err)
		}

		return map[string][]byte{wanted[0]: data}, nil
	}

	var decompressed io.Reader

	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(in)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}

		defer func() {
			_ = gz.Close()
		}()

		decompressed = gz
	case FormatTarXz:
		xzReader, err := xz.NewReader(in)
		if err != nil {
			return nil, fmt.Errorf("open xz: %w", err)
		}

		decompressed = xzReader
	default:
		return nil, fmt.Errorf("unsupported archive format %d", format)
	}

	return extractTar(tar.NewReader(decompressed), wanted)
}

func extractTar(tr *tar.Reader, wanted []string) (map[string][]byte, error) {
	want := make(map[string]struct{}, len(wanted))
	for _, name := range wanted {
		want[name] = struct{}{}
	}

	found := make(map[string][]byte, len(wanted))

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read tar entry: %w", err)
		}

		if !isSafePath(header.Name) {
			return nil, fmt.Errorf("%w: %s", errUnsafePath, header.Name)
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}

		base := path.Base(header.Name)
		if _, ok := want[base]; !ok {
			continue
		}

		if _, dup := found[base]; dup {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", header.Name, err)
		}

		found[base] = data
	}

	for _, name := range wanted {
		if _, ok := found[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, name)
		}
	}

	return found, nil
}

// isSafePath rejects absolute names and names with ".." elements.
func isSafePath(name string) bool {
	if name == "" || path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}

	for _, element := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if element == ".." {
			return false
		}
	}

	return true
}
