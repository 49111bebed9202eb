// Package offline keeps a named on-disk cache of HTTP responses so assets
// remain available without a network connection.
package offline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

// Cache is one named response cache under a root directory. Caches with
// different names live side by side and are pruned by Activate.
type Cache struct {
	name string
	dir  string
	d    *diskv.Diskv
}

// entry is the stored form of a response.
type entry struct {
	URL        string      `json:"url"`
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// Open opens (or creates) the cache called name under root.
func Open(root, name string) (*Cache, error) {
	if name == "" {
		return nil, fmt.Errorf("cache name must not be empty")
	}
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		name: name,
		dir:  dir,
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
	}, nil
}

func (c *Cache) Name() string { return c.name }
func (c *Cache) Dir() string  { return c.dir }

// Put stores a response body for rawURL.
func (c *Cache) Put(rawURL string, status int, header http.Header, body []byte) error {
	data, err := json.Marshal(entry{URL: rawURL, StatusCode: status, Header: header, Body: body})
	if err != nil {
		return err
	}
	return c.d.Write(toKey(rawURL), data)
}

// Has reports whether rawURL is cached.
func (c *Cache) Has(rawURL string) bool {
	return c.d.Has(toKey(rawURL))
}

// Match returns the cached response for req, if any.
func (c *Cache) Match(req *http.Request) (*http.Response, bool) {
	key := toKey(req.URL.String())
	if !c.d.Has(key) {
		return nil, false
	}
	data, err := c.d.Read(key)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}

	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}, true
}

// URLs lists the cached URLs in sorted order.
func (c *Cache) URLs(ctx context.Context) []string {
	var urls []string
	for key := range c.d.Keys(ctx.Done()) {
		data, err := c.d.Read(key)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		urls = append(urls, e.URL)
	}
	sort.Strings(urls)
	return urls
}

// Install fetches every asset and stores it. Nothing is written unless all
// assets were fetched successfully.
func (c *Cache) Install(ctx context.Context, client *http.Client, assets []string) error {
	if client == nil {
		client = http.DefaultClient
	}

	fetched := make([]entry, 0, len(assets))
	for _, asset := range assets {
		e, err := fetchAsset(ctx, client, asset)
		if err != nil {
			return err
		}
		fetched = append(fetched, e)
	}

	for _, e := range fetched {
		if err := c.Put(e.URL, e.StatusCode, e.Header, e.Body); err != nil {
			return fmt.Errorf("store %s: %w", e.URL, err)
		}
	}
	return nil
}

func fetchAsset(ctx context.Context, client *http.Client, asset string) (entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
	if err != nil {
		return entry{}, fmt.Errorf("install %s: %w", asset, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return entry{}, fmt.Errorf("install %s: %w", asset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entry{}, fmt.Errorf("install %s: unexpected status %s", asset, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entry{}, fmt.Errorf("install %s: %w", asset, err)
	}
	return entry{URL: req.URL.String(), StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Activate removes every cache under root whose name is not in keep and
// returns the names it removed.
func Activate(root string, keep []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(keep))
	for _, name := range keep {
		allowed[name] = true
	}

	var removed []string
	for _, e := range entries {
		if !e.IsDir() || allowed[e.Name()] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, e.Name())); err != nil {
			return removed, fmt.Errorf("remove cache %s: %w", e.Name(), err)
		}
		removed = append(removed, e.Name())
	}
	return removed, nil
}

// toKey hashes the URL so any URL maps to a safe file name.
func toKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{key[:2]},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
