package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/mwantia/resource"
	"github.com/mwantia/resource/resources/sqlite"
)

func TestLoader_FileLocations(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "app.conf")
	if err := os.WriteFile(path, []byte("debug = true"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	l, err := New(WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, location := range []string{path, "file:" + path, "file://" + path} {
		r, err := l.Get(location)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", location, err)
		}
		if !r.Exists(ctx) {
			t.Errorf("Get(%q): descriptor should see the fixture", location)
		}
		if !r.IsFile() {
			t.Errorf("Get(%q): descriptor should be file backed", location)
		}
	}
}

func TestLoader_FSLocations(t *testing.T) {
	ctx := context.Background()

	fsys := fstest.MapFS{
		"assets/logo.svg": &fstest.MapFile{Data: []byte("<svg/>")},
	}

	l, err := New(WithFS(fsys), WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := l.Get("fs:assets/logo.svg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !r.Exists(ctx) {
		t.Error("Descriptor should see the bound filesystem entry")
	}

	// Descriptors never imply existence
	absent, err := l.Get("fs:assets/missing.dat")
	if err != nil {
		t.Fatalf("Get for a missing entry failed: %v", err)
	}
	if absent.Exists(ctx) {
		t.Error("Exists should report false for a missing entry")
	}

	bare, err := New(WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := bare.Get("fs:assets/logo.svg"); !errors.Is(err, resource.ErrUnknownScheme) {
		t.Errorf("fs: without a bound filesystem should fail with ErrUnknownScheme, got %v", err)
	}
}

func TestLoader_MemLocations(t *testing.T) {
	ctx := context.Background()

	l, err := New(WithBuffer("banner", []byte("hello")), WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := l.Get("mem:banner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data, err := resource.ReadAll(ctx, r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected 'hello', got %q", data)
	}

	// Unregistered names still yield a handle, just an absent one
	absent, err := l.Get("mem:unregistered")
	if err != nil {
		t.Fatalf("Get for an unregistered buffer failed: %v", err)
	}
	if absent.Exists(ctx) {
		t.Error("Exists should report false for an unregistered buffer")
	}
}

func TestLoader_UnknownScheme(t *testing.T) {
	l, err := New(WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := l.Get("gopher://example.com/x"); !errors.Is(err, resource.ErrUnknownScheme) {
		t.Errorf("Expected ErrUnknownScheme, got %v", err)
	}
	if _, err := l.Get(""); !errors.Is(err, resource.ErrInvalid) {
		t.Errorf("Empty location should fail with ErrInvalid, got %v", err)
	}
}

func TestLoader_DescriptorCache(t *testing.T) {
	l, err := New(WithBuffer("banner", []byte("hello")), WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := l.Get("mem:banner")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := l.Get("mem:banner")
	if err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}
	if first != second {
		t.Error("Repeated Get for the same location should return the cached handle")
	}
}

func TestLoader_RegisteredScheme(t *testing.T) {
	ctx := context.Background()

	store, err := sqlite.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Store init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Put(ctx, "conf/app.yaml", []byte("retention: 7d")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	l, err := New(WithScheme(store), WithoutTerminalLog())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	r, err := l.Get("sqlite:conf/app.yaml")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data, err := resource.ReadAll(ctx, r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "retention: 7d" {
		t.Errorf("Expected stored content, got %q", data)
	}

	if err := l.Register(store); !errors.Is(err, resource.ErrInvalid) {
		t.Errorf("Duplicate registration should fail with ErrInvalid, got %v", err)
	}
}

func TestSchemeOf(t *testing.T) {
	cases := map[string]string{
		"s3://bucket/key":  "s3",
		"file:/etc/hosts":  "file",
		"HTTPS://host/x":   "https",
		"C:\\data\\x.txt":  "",
		"plain/path.txt":   "",
		"mem:banner":       "mem",
		"weird~scheme:x":   "",
		"sqlite:conf/x":    "sqlite",
		"git+ssh://host/r": "git+ssh",
	}

	for location, expected := range cases {
		if got := schemeOf(location); got != expected {
			t.Errorf("schemeOf(%q): expected %q, got %q", location, expected, got)
		}
	}
}
