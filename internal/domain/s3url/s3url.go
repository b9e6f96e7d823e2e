// Package s3url parses the s3://bucket/prefix URLs s3edit applies edits to.
package s3url

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the only accepted URL scheme.
const Scheme = "s3"

var (
	errURLRequired    = errors.New("s3 url must be provided")
	errUnsupportedURL = errors.New("unsupported url, expected s3://bucket/prefix")
	errBucketRequired = errors.New("s3 url must name a bucket")
)

// URL is a bucket plus a key prefix. Every object whose key starts with
// Prefix is in scope; an empty prefix means the whole bucket.
type URL struct {
	Bucket string
	Prefix string
}

// Parse parses raw as s3://bucket/prefix.
func Parse(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errURLRequired
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}

	if u.Scheme != Scheme {
		return nil, fmt.Errorf("%w: %q", errUnsupportedURL, raw)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", errBucketRequired, raw)
	}

	return &URL{
		Bucket: u.Hostname(),
		Prefix: strings.TrimLeft(u.Path, "/"),
	}, nil
}

// String returns the URL in s3://bucket/prefix form.
func (u *URL) String() string {
	return Scheme + "://" + u.Bucket + "/" + u.Prefix
}
