package formula

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrAmbiguousRevision is returned when two revisions of the same version
// declare different checksums for the same platform.
var ErrAmbiguousRevision = errors.New("same version declares a different sha256")

// CheckRevisions compares a stored revision with a new one.
// Different versions never conflict.
func CheckRevisions(stored, next *Formula) error {
	if stored == nil || next == nil || stored.Version != next.Version {
		return nil
	}

	var result *multierror.Error

	for _, a := range next.Artifacts {
		prev := stored.artifactFor(a.Platform())
		if prev == nil {
			continue
		}

		if prev.SHA256 != a.SHA256 {
			result = multierror.Append(result, fmt.Errorf("%s %s on %s: %w (%s != %s)",
				next.Name, next.Version, a.Platform(), ErrAmbiguousRevision, prev.SHA256, a.SHA256))
		}
	}

	return result.ErrorOrNil()
}
