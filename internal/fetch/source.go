// Package fetch retrieves directory listings and record files from a budget
// data tree hosted over HTTP or checked out locally. Fetcher is fail-soft:
// every transport or decode failure is logged and reported as absent data.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// maxBodyBytes caps a single resource body.
const maxBodyBytes = 16 << 20

// ErrNotFound is returned by sources for a missing resource.
var ErrNotFound = errors.New("resource not found")

// Source opens resources of a data tree by relative name ("01/0401.yaml").
type Source interface {
	Open(ctx context.Context, name string) ([]byte, error)

	// Location returns the absolute location of name, used as cache key and in logs.
	Location(name string) string
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// HTTPSource reads resources relative to a base URL.
type HTTPSource struct {
	base      *url.URL
	client    *http.Client
	userAgent string
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPSource) { s.userAgent = ua }
}

// NewHTTPSource parses base and returns a source reading below it. A missing
// trailing slash is added so relative names resolve inside base.
func NewHTTPSource(base string, opts ...HTTPOption) (*HTTPSource, error) {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing source URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}

	s := &HTTPSource{base: u, client: http.DefaultClient}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Location resolves name against the base URL.
func (s *HTTPSource) Location(name string) string {
	ref, err := url.Parse(name)
	if err != nil {
		return s.base.String() + name
	}
	return s.base.ResolveReference(ref).String()
}

// Open performs a GET for name.
func (s *HTTPSource) Open(ctx context.Context, name string) ([]byte, error) {
	loc := s.Location(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", loc, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", loc, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{URL: loc, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc, err)
	}
	return body, nil
}

// DirSource reads resources from a file system, typically a local checkout.
type DirSource struct {
	fsys fs.FS
	root string
}

// NewDirSource returns a source reading below dir.
func NewDirSource(dir string) (*DirSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}
	return &DirSource{fsys: os.DirFS(dir), root: dir}, nil
}

// NewFSSource returns a source reading from fsys.
func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys, root: "fs:"}
}

// Location joins the root and name.
func (s *DirSource) Location(name string) string {
	return JoinPath(strings.TrimSuffix(s.root, "/")+"/", name)
}

// Open reads name. The context is only checked before reading.
func (s *DirSource) Open(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, strings.TrimPrefix(name, "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// NewSource picks an HTTPSource for http(s) bases and a DirSource otherwise.
// A "file://" prefix is stripped.
func NewSource(base string, opts ...HTTPOption) (Source, error) {
	switch {
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
		return NewHTTPSource(base, opts...)
	case strings.HasPrefix(base, "file://"):
		return NewDirSource(strings.TrimPrefix(base, "file://"))
	default:
		return NewDirSource(base)
	}
}
