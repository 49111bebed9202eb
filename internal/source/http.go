package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// CacheBustParam is the query parameter carrying the per-request token.
const CacheBustParam = "_"

// HTTPSource fetches the sheet from a published CSV URL.
type HTTPSource struct {
	URL       string
	UserAgent string
	client    *http.Client
	token     func() string
}

// NewHTTPSource creates a source for rawURL.
func NewHTTPSource(rawURL string, opts Options) *HTTPSource {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &HTTPSource{
		URL:       rawURL,
		UserAgent: opts.UserAgent,
		client:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		token:     uuid.NewString,
	}
}

// Fetch downloads the sheet. Each request gets a unique query token and
// no-cache headers so no intermediate cache can answer it.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	target, err := s.bustedURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: s.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.URL, err)
	}
	return body, nil
}

// bustedURL appends the cache-busting token, keeping any existing query.
func (s *HTTPSource) bustedURL() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("invalid source URL %q: %w", s.URL, err)
	}
	q := u.Query()
	q.Set(CacheBustParam, s.token())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Watch is not supported for HTTP sources; the sync loop polls instead.
func (s *HTTPSource) Watch() (<-chan ChangeEvent, error) {
	return nil, nil
}

// StopWatching is a no-op.
func (s *HTTPSource) StopWatching() error {
	return nil
}

func (s *HTTPSource) String() string {
	return s.URL
}
