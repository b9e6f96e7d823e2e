// Package editor applies bulk edits to every object under an S3 prefix.
//
// RenameField lists the prefix, then fetches, rewrites and puts objects back
// with a bounded number in flight. Objects where nothing changed are never
// written.
package editor
