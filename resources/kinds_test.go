package resources_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/mwantia/resource"
	"github.com/mwantia/resource/resources"
	"github.com/mwantia/resource/resources/sqlite"
)

// TestKindFactory creates a descriptor over the given content for testing.
type TestKindFactory func(t *testing.T, content []byte) (resource.Resource, error)

// GetTestKindFactories returns all multi-read descriptor kinds to test.
// Kinds that need a running server (s3, consul, postgres) are not part of
// the default table.
func GetTestKindFactories() map[string]TestKindFactory {
	return map[string]TestKindFactory{
		"bytes": func(t *testing.T, content []byte) (resource.Resource, error) {
			return resources.NewNamedBytes("factory", content), nil
		},
		"file": func(t *testing.T, content []byte) (resource.Resource, error) {
			path := filepath.Join(t.TempDir(), "factory.dat")
			if err := os.WriteFile(path, content, 0644); err != nil {
				return nil, err
			}
			return resources.NewFile(path), nil
		},
		"fs": func(t *testing.T, content []byte) (resource.Resource, error) {
			fsys := fstest.MapFS{"factory.dat": &fstest.MapFile{Data: content}}
			return resources.NewFS(fsys, "factory.dat"), nil
		},
		"url": func(t *testing.T, content []byte) (resource.Resource, error) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write(content)
			}))
			t.Cleanup(server.Close)
			return resources.NewURL(server.URL+"/factory.dat", server.Client())
		},
		"sqlite": func(t *testing.T, content []byte) (resource.Resource, error) {
			store, err := sqlite.NewSQLiteStore(":memory:")
			if err != nil {
				return nil, err
			}
			t.Cleanup(func() { store.Close() })
			if err := store.Put(context.Background(), "factory.dat", content); err != nil {
				return nil, err
			}
			return store.Resource("factory.dat"), nil
		},
	}
}

// TestAllKinds_Contract verifies the shared descriptor contract across all
// multi-read kinds: existence, metadata-vs-drain length agreement, and
// independent repeated streams.
func TestAllKinds_Contract(t *testing.T) {
	content := []byte("shared descriptor contract")

	for name, factory := range GetTestKindFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			r, err := factory(t, content)
			if err != nil {
				t.Fatalf("Factory failed: %v", err)
			}

			if !r.Exists(ctx) {
				t.Error("Exists should report true")
			}
			if !r.IsReadable(ctx) {
				t.Error("IsReadable should report true")
			}
			if r.IsOpen() {
				t.Error("Multi-read kinds must not report an open handle")
			}

			size, err := r.ContentLength(ctx)
			if err != nil {
				t.Fatalf("ContentLength failed: %v", err)
			}
			if size != int64(len(content)) {
				t.Errorf("Expected length %d, got %d", len(content), size)
			}

			drained, err := resource.DrainLength(ctx, r)
			if err != nil {
				t.Fatalf("DrainLength failed: %v", err)
			}
			if drained != size {
				t.Errorf("Drain fallback %d disagrees with metadata length %d", drained, size)
			}

			for i := 0; i < 2; i++ {
				rc, err := r.Open(ctx)
				if err != nil {
					t.Fatalf("Open #%d failed: %v", i+1, err)
				}
				data, err := io.ReadAll(rc)
				rc.Close()
				if err != nil {
					t.Fatalf("ReadAll #%d failed: %v", i+1, err)
				}
				if !bytes.Equal(data, content) {
					t.Errorf("Open #%d: expected full content, got %q", i+1, data)
				}
			}

			if !resource.Equal(r, r) {
				t.Error("A descriptor must equal itself")
			}
		})
	}
}

// TestCrossKindEquality verifies that identity depends on the description
// alone, regardless of backing kind.
func TestCrossKindEquality(t *testing.T) {
	a := resources.NewNamedBytes("same-name", []byte("a"))
	b := resources.NewNamedBytes("same-name", []byte("b"))

	if !resource.Equal(a, b) {
		t.Error("Identical descriptions must compare equal")
	}
	if resource.Hash(a) != resource.Hash(b) {
		t.Error("Identical descriptions must share a hash")
	}

	f := resources.NewFile("/tmp/same-name")
	if resource.Equal(a, f) {
		t.Error("Different descriptions must not compare equal")
	}
}
