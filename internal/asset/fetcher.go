// Package asset loads background and item images for the canvas.
//
// Paths are resolved against the scene's asset base: an http(s) base is
// fetched over HTTP, anything else is read from the local asset directory.
package asset

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxImageBytes caps the size of a single image
const MaxImageBytes = 32 << 20

// Option configures a Fetcher
type Option func(*Fetcher)

// WithHTTPClient sets the client used for http(s) assets
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithRoot sets the directory local asset paths are resolved in
func WithRoot(dir string) Option {
	return func(f *Fetcher) {
		f.root = dir
	}
}

// Fetcher resolves and decodes images
type Fetcher struct {
	client *http.Client
	root   string
}

// New creates a Fetcher. Local assets resolve in the working directory
// unless WithRoot is given.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		root:   ".",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads path relative to baseURL and decodes it
func (f *Fetcher) Fetch(ctx context.Context, baseURL, path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("empty asset path")
	}

	if u, ok := remoteURL(baseURL, path); ok {
		return f.fetchHTTP(ctx, u)
	}
	return f.fetchFile(baseURL, path)
}

// remoteURL resolves path against baseURL when either is an http(s) URL
func remoteURL(baseURL, path string) (string, bool) {
	if isHTTP(path) {
		return path, true
	}
	if !isHTTP(baseURL) {
		return "", false
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", u, resp.StatusCode)
	}

	return decode(resp.Body, u)
}

func (f *Fetcher) fetchFile(baseURL, path string) (image.Image, error) {
	full, err := f.localPath(baseURL, path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	defer file.Close()

	return decode(file, full)
}

// localPath joins root, baseURL and path and refuses to leave root
func (f *Fetcher) localPath(baseURL, path string) (string, error) {
	root, err := filepath.Abs(f.root)
	if err != nil {
		return "", fmt.Errorf("invalid asset root: %w", err)
	}

	rel := filepath.Join(filepath.FromSlash(strings.TrimPrefix(baseURL, "file://")), filepath.FromSlash(path))
	full := filepath.Join(root, rel)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("asset path %q escapes asset root", path)
	}
	return full, nil
}

func decode(r io.Reader, name string) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, MaxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return img, nil
}
