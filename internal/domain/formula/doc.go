// Package formula models the package-formula record that tells a package
// manager where to download the prebuilt s3edit binary, how to verify it and
// what to install.
//
// A Formula is validated as a whole (Validate aggregates every problem),
// resolved per platform (Resolve refuses platforms with no artifact),
// compared against earlier revisions of the same version (CheckRevisions)
// and rendered as a Homebrew Ruby formula (RenderRuby).
package formula
