package formula

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrChecksumMismatch is returned when downloaded bytes do not match the declared sha256.
var ErrChecksumMismatch = errors.New("sha256 mismatch")

// Digest returns the lowercase hex sha256 of everything read from r.
func Digest(r io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("calculate checksum: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FileDigest returns the lowercase hex sha256 of the file at path.
func FileDigest(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	return Digest(f)
}

// VerifyDigest checks that the sha256 of r equals want.
func VerifyDigest(r io.Reader, want string) error {
	got, err := Digest(r)
	if err != nil {
		return err
	}

	return CompareDigest(got, want)
}

// CompareDigest compares two hex digests case-insensitively.
func CompareDigest(got, want string) error {
	if !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, want, got)
	}

	return nil
}
