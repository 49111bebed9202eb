package offline

import (
	"net/http"
	"strings"

	"github.com/cwarden/agenda/internal/logger"
)

// Transport answers GET requests from the cache when it can and sends
// everything else to Base. Responses from Base are not added to the cache.
type Transport struct {
	Cache *Cache
	// Base performs network requests. nil means http.DefaultTransport.
	Base http.RoundTripper
	// Bypass lists substrings of URLs that must never be served from the
	// cache.
	Bypass []string
	Logger logger.Logger
}

// NewTransport wraps base with cache lookups.
func NewTransport(cache *Cache, base http.RoundTripper, bypass []string, log logger.Logger) *Transport {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Transport{Cache: cache, Base: base, Bypass: bypass, Logger: log}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.bypassed(req) || t.Cache == nil {
		return t.base().RoundTrip(req)
	}

	if resp, ok := t.Cache.Match(req); ok {
		if t.Logger != nil {
			t.Logger.Info("served %s from cache %s", req.URL, t.Cache.Name())
		}
		return resp, nil
	}
	return t.base().RoundTrip(req)
}

func (t *Transport) bypassed(req *http.Request) bool {
	u := req.URL.String()
	for _, pattern := range t.Bypass {
		if pattern != "" && strings.Contains(u, pattern) {
			return true
		}
	}
	return false
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
