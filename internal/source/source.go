// Package source provides the byte providers the sync loop reads the
// published sheet from.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNoSource is returned when no sheet location is configured.
var ErrNoSource = errors.New("no schedule source configured")

// Source provides the raw CSV text of the sheet.
type Source interface {
	// Fetch returns the current contents. Every call must observe the
	// source's present state, never a stale cached copy.
	Fetch(ctx context.Context) ([]byte, error)
	// Watch returns a channel that fires when the source changes.
	// Returns nil if watching is not supported.
	Watch() (<-chan ChangeEvent, error)
	// StopWatching stops any watching started by Watch.
	StopWatching() error
	// String describes the source for logs and the status bar.
	String() string
}

// ChangeEvent reports a change to a watched source.
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

// Options configure sources built by New.
type Options struct {
	// Transport is used for HTTP sources. nil means http.DefaultTransport.
	Transport http.RoundTripper
	Timeout   time.Duration
	UserAgent string
}

// New picks an HTTP source for http(s) URLs and a file source otherwise.
func New(location string, opts Options) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrNoSource
	}

	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location, opts), nil
	}
	return NewFileSource(location), nil
}
