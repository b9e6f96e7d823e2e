// Package archive creates and unpacks release artifacts: gzip or xz
// compressed tarballs, or a raw binary.
package archive
