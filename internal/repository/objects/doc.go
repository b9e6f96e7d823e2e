// Package objects is the S3 object repository used by the editor.
//
// S3Store wraps an s3iface.S3API so tests can swap in a fake; NewFromConfig
// builds the real client from the shared settings, honouring custom
// endpoints and path-style addressing for S3-compatible stores.
package objects
