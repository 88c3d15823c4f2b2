package resources

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mwantia/resource"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/data.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.Write([]byte("remote content"))
	})
	mux.HandleFunc("/other.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sibling"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestURLResource_Existing(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	r, err := NewURL(server.URL+"/data.txt", server.Client())
	if err != nil {
		t.Fatalf("NewURL failed: %v", err)
	}

	if !r.Exists(ctx) {
		t.Error("Exists should report true for a served URL")
	}
	if !r.IsReadable(ctx) {
		t.Error("IsReadable should report true for a served URL")
	}

	rc, err := r.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "remote content" {
		t.Errorf("Expected 'remote content', got %q", data)
	}

	size, err := r.ContentLength(ctx)
	if err != nil {
		t.Fatalf("ContentLength failed: %v", err)
	}
	if size != int64(len("remote content")) {
		t.Errorf("Expected length %d, got %d", len("remote content"), size)
	}

	mod, err := r.LastModified(ctx)
	if err != nil {
		t.Fatalf("LastModified failed: %v", err)
	}
	if mod.Year() != 2024 || mod.Month() != time.March {
		t.Errorf("Unexpected timestamp %v", mod)
	}

	if r.Filename() != "data.txt" {
		t.Errorf("Expected filename 'data.txt', got %q", r.Filename())
	}
}

func TestURLResource_Missing(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	r, err := NewURL(server.URL+"/missing.dat", server.Client())
	if err != nil {
		t.Fatalf("NewURL failed: %v", err)
	}

	if r.Exists(ctx) {
		t.Error("Exists should report false for a 404")
	}
	if _, err := r.Open(ctx); !errors.Is(err, resource.ErrNotExist) {
		t.Errorf("Open should fail with ErrNotExist, got %v", err)
	}
	if _, err := r.ContentLength(ctx); !errors.Is(err, resource.ErrNotExist) {
		t.Errorf("ContentLength should fail with ErrNotExist, got %v", err)
	}
}

// headBodyCounter tracks how many HEAD response bodies were handed out and
// how many of them were closed.
type headBodyCounter struct {
	base   http.RoundTripper
	heads  int
	closes int
}

func (c *headBodyCounter) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.base.RoundTrip(req)
	if err == nil && req.Method == http.MethodHead {
		c.heads++
		resp.Body = &closeCountingBody{ReadCloser: resp.Body, closes: &c.closes}
	}
	return resp, err
}

type closeCountingBody struct {
	io.ReadCloser
	closes *int
}

func (b *closeCountingBody) Close() error {
	*b.closes++
	return b.ReadCloser.Close()
}

func TestURLResource_HeadRejected(t *testing.T) {
	ctx := context.Background()

	// Serves GET normally but answers HEAD with 405
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Last-Modified", time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC).Format(http.TimeFormat))
		w.Write([]byte("remote content"))
	}))
	t.Cleanup(server.Close)

	counter := &headBodyCounter{base: server.Client().Transport}
	client := &http.Client{Transport: counter}

	r, err := NewURL(server.URL+"/data.txt", client)
	if err != nil {
		t.Fatalf("NewURL failed: %v", err)
	}

	if !r.Exists(ctx) {
		t.Error("Exists should fall back to the open probe when HEAD is rejected")
	}
	if counter.heads == 0 {
		t.Fatal("Expected at least one HEAD request")
	}
	if counter.closes != counter.heads {
		t.Errorf("HEAD response bodies leaked: %d requests, %d closes", counter.heads, counter.closes)
	}

	mod, err := r.LastModified(ctx)
	if err != nil {
		t.Fatalf("LastModified should fall back to GET, got %v", err)
	}
	if mod.Year() != 2024 || mod.Month() != time.March {
		t.Errorf("Unexpected timestamp %v", mod)
	}

	size, err := r.ContentLength(ctx)
	if err != nil {
		t.Fatalf("ContentLength failed: %v", err)
	}
	if size != int64(len("remote content")) {
		t.Errorf("Expected length %d, got %d", len("remote content"), size)
	}

	if counter.closes != counter.heads {
		t.Errorf("HEAD response bodies leaked: %d requests, %d closes", counter.heads, counter.closes)
	}
}

func TestURLResource_Malformed(t *testing.T) {
	if _, err := NewURL("://no-scheme", nil); !errors.Is(err, resource.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for malformed URL, got %v", err)
	}
	if _, err := NewURL("ftp://example.com/x", nil); !errors.Is(err, resource.ErrInvalid) {
		t.Errorf("Expected ErrInvalid for non-http scheme, got %v", err)
	}
}

func TestURLResource_Resolution(t *testing.T) {
	server := newTestServer(t)

	r, err := NewURL(server.URL+"/data.txt", server.Client())
	if err != nil {
		t.Fatalf("NewURL failed: %v", err)
	}

	rawURL, err := r.URL()
	if err != nil {
		t.Fatalf("URL failed: %v", err)
	}
	if rawURL != server.URL+"/data.txt" {
		t.Errorf("Expected %q, got %q", server.URL+"/data.txt", rawURL)
	}

	u, err := r.URI()
	if err != nil {
		t.Fatalf("URI failed: %v", err)
	}
	if u.Path != "/data.txt" {
		t.Errorf("Expected path '/data.txt', got %q", u.Path)
	}

	// Not filesystem-backed
	if r.IsFile() {
		t.Error("A URL resource is not file backed")
	}
	if _, err := r.File(); !errors.Is(err, resource.ErrNotExist) {
		t.Errorf("File should fail with ErrNotExist, got %v", err)
	}
}

func TestURLResource_CreateRelative(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	r, err := NewURL(server.URL+"/data.txt", server.Client())
	if err != nil {
		t.Fatalf("NewURL failed: %v", err)
	}

	rel, err := r.CreateRelative("other.txt")
	if err != nil {
		t.Fatalf("CreateRelative failed: %v", err)
	}

	data, err := resource.ReadAll(ctx, rel)
	if err != nil {
		t.Fatalf("ReadAll on sibling failed: %v", err)
	}
	if string(data) != "sibling" {
		t.Errorf("Expected 'sibling', got %q", data)
	}
}
