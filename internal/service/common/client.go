//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jefftt/s3edit/internal/config"
	"github.com/jefftt/s3edit/internal/version"
)

// Client downloads release artifacts and formulas over HTTP.
type Client struct {
	// http is the underlying HTTP client.
	http *http.Client
	// userAgent is sent with every request.
	userAgent string
	// callTimeout bounds each download, including reading the body.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for downloads.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

var (
	// errURLRequired is returned when a download URL is missing.
	errURLRequired = errors.New("url must be provided")
	// ErrBadHTTPStatus is returned for any non-200 response.
	ErrBadHTTPStatus = errors.New("unexpected http status")
)

// NewClient creates a download client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		http:        http.DefaultClient,
		userAgent:   "s3edit-formula/" + version.Short(),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Fetch returns the whole body at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	body, err := c.open(callCtx, rawURL)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	return data, nil
}

// Download streams rawURL into the file at path and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, rawURL, path string) (int64, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	body, err := c.open(callCtx, rawURL)
	if err != nil {
		return 0, err
	}

	defer func() {
		_ = body.Close()
	}()

	out, err := os.Create(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(out, body)
	if err != nil {
		_ = out.Close()

		return written, fmt.Errorf("download %s: %w", rawURL, err)
	}

	if err = out.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", path, err)
	}

	return written, nil
}

// open performs the GET request and checks the status.
func (c *Client) open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	if rawURL == "" {
		return nil, errURLRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	response, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", rawURL, response.Status, ErrBadHTTPStatus)
	}

	return response.Body, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
