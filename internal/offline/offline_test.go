package offline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cwarden/agenda/internal/logger"
)

func newAssetServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("asset " + r.URL.Path))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Read body: %v", err)
	}
	return string(b)
}

func TestInstallAndMatch(t *testing.T) {
	srv, _ := newAssetServer(t)
	cache, err := Open(t.TempDir(), "agenda-v1")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	assets := []string{srv.URL + "/style.css", srv.URL + "/icon.png"}
	if err := cache.Install(context.Background(), srv.Client(), assets); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	for _, a := range assets {
		if !cache.Has(a) {
			t.Errorf("Asset %s not cached", a)
		}
	}

	req, _ := http.NewRequest(http.MethodGet, assets[0], nil)
	resp, ok := cache.Match(req)
	if !ok {
		t.Fatal("Expected cache match")
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Wrong status: %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "text/plain" {
		t.Errorf("Header not kept: %v", resp.Header)
	}
	if body := readBody(t, resp); body != "asset /style.css" {
		t.Errorf("Wrong body: %q", body)
	}

	urls := cache.URLs(context.Background())
	if len(urls) != 2 {
		t.Errorf("Wrong cached URLs: %v", urls)
	}
}

func TestInstallIsAllOrNothing(t *testing.T) {
	srv, _ := newAssetServer(t)
	cache, err := Open(t.TempDir(), "agenda-v1")
	if err != nil {
		t.Fatal(err)
	}

	err = cache.Install(context.Background(), srv.Client(), []string{srv.URL + "/ok", srv.URL + "/missing"})
	if err == nil {
		t.Fatal("Expected install error")
	}
	if cache.Has(srv.URL + "/ok") {
		t.Error("Partial install should not store anything")
	}
}

func TestTransport(t *testing.T) {
	srv, hits := newAssetServer(t)
	cache, err := Open(t.TempDir(), "agenda-v1")
	if err != nil {
		t.Fatal(err)
	}
	cached := srv.URL + "/style.css"
	if err := cache.Put(cached, http.StatusOK, http.Header{}, []byte("from cache")); err != nil {
		t.Fatal(err)
	}
	bypassed := srv.URL + "/_db/style.css"
	if err := cache.Put(bypassed, http.StatusOK, http.Header{}, []byte("from cache")); err != nil {
		t.Fatal(err)
	}

	mock := logger.NewMockLogger()
	client := &http.Client{Transport: NewTransport(cache, srv.Client().Transport, []string{"/_db/"}, mock)}

	tests := []struct {
		name     string
		method   string
		url      string
		wantBody string
		wantHit  bool
	}{
		{name: "cached get", method: http.MethodGet, url: cached, wantBody: "from cache", wantHit: true},
		{name: "uncached get", method: http.MethodGet, url: srv.URL + "/other", wantBody: "asset /other"},
		{name: "post", method: http.MethodPost, url: cached, wantBody: "asset /style.css"},
		{name: "bypass pattern", method: http.MethodGet, url: bypassed, wantBody: "asset /_db/style.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := hits.Load()
			req, _ := http.NewRequest(tt.method, tt.url, strings.NewReader(""))
			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			if body := readBody(t, resp); body != tt.wantBody {
				t.Errorf("Wrong body: got %q, want %q", body, tt.wantBody)
			}
			hitNetwork := hits.Load() != before
			if hitNetwork == tt.wantHit {
				t.Errorf("Wrong routing: network=%v", hitNetwork)
			}
		})
	}

	if cache.Has(srv.URL + "/other") {
		t.Error("Network responses must not be cached implicitly")
	}
}

func TestActivate(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"agenda-v0", "agenda-v1", "scratch"} {
		if _, err := Open(root, name); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	removed, err := Activate(root, []string{"agenda-v1"})
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("Wrong removed caches: %v", removed)
	}

	if _, err := os.Stat(filepath.Join(root, "agenda-v1")); err != nil {
		t.Error("Whitelisted cache removed")
	}
	if _, err := os.Stat(filepath.Join(root, "agenda-v0")); !os.IsNotExist(err) {
		t.Error("Old cache not removed")
	}
	if _, err := os.Stat(filepath.Join(root, "notes.txt")); err != nil {
		t.Error("Plain files should be left alone")
	}

	if removed, err := Activate(filepath.Join(root, "nope"), nil); err != nil || removed != nil {
		t.Errorf("Missing root = %v, %v", removed, err)
	}
}

func TestOpenRejectsEmptyName(t *testing.T) {
	if _, err := Open(t.TempDir(), ""); err == nil {
		t.Error("Expected error for empty name")
	}
}
