package formula

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	domain "github.com/jefftt/s3edit/internal/domain/formula"
	"github.com/jefftt/s3edit/internal/logger"
)

// Repository defines persistence operations for a formula record.
type Repository interface {
	Load(ctx context.Context) (*domain.Formula, error)
	Save(ctx context.Context, f *domain.Formula) error
}

// FileRepository persists one formula as YAML on disk.
type FileRepository struct {
	// path is the filesystem location of the YAML file.
	path string
	// force replaces a stored revision even when checksums disagree.
	force bool
	// mu protects concurrent access to the file.
	mu sync.Mutex
}

// Option configures a FileRepository.
type Option func(*FileRepository)

// WithForce lets Save replace a stored revision of the same version whose
// checksums differ.
func WithForce(force bool) Option {
	return func(r *FileRepository) {
		r.force = force
	}
}

// DefaultFilePermissions is used for formula files, which are published.
const DefaultFilePermissions = 0o644

// ErrNotFound is returned when the formula file does not exist yet.
var ErrNotFound = errors.New("formula not found")

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string, opts ...Option) *FileRepository {
	r := &FileRepository{
		path: filepath.Clean(path),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the location of the formula file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the formula from disk. It does not validate it.
func (r *FileRepository) Load(_ context.Context) (*domain.Formula, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Save validates f and writes it to disk. Saving the same version again with
// different checksums fails with domain.ErrAmbiguousRevision unless forced,
// in which case the replacement is logged as a warning.
func (r *FileRepository) Save(ctx context.Context, f *domain.Formula) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid formula: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.load()

	switch {
	case err == nil:
		if err = domain.CheckRevisions(stored, f); err != nil {
			if !r.force {
				return err
			}

			logger.WarnKV(ctx, "Replacing revision with different checksums", "path", r.path, "error", err)
		}
	case errors.Is(err, ErrNotFound):
		// First revision.
	default:
		return err
	}

	data, err := Encode(f)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create formula directory: %w", err)
	}

	if err = os.WriteFile(r.path, data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write formula file: %w", err)
	}

	return nil
}

func (r *FileRepository) load() (*domain.Formula, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read formula file: %w", err)
	}

	return Decode(contents)
}

// Decode parses a YAML formula.
func Decode(contents []byte) (*domain.Formula, error) {
	var f domain.Formula
	if err := yaml.Unmarshal(contents, &f); err != nil {
		return nil, fmt.Errorf("decode formula: %w", err)
	}

	return &f, nil
}

// Encode renders f as YAML.
func Encode(f *domain.Formula) ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode formula: %w", err)
	}

	return data, nil
}
