package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeFile writes content to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func sourceNames(srcs []source) []string {
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.name
	}

	return names
}

// TestWithManifestsEmpty tests that an empty path list stores no sources.
func TestWithManifestsEmpty(t *testing.T) {
	t.Parallel()

	for _, paths := range [][]string{nil, {}} {
		ctx := WithManifests(context.Background(), paths)
		if srcs := manifestsFrom(ctx); srcs != nil {
			t.Errorf("WithManifests(%v) = %v, want nil", paths, sourceNames(srcs))
		}
	}

	if srcs := manifestsFrom(context.Background()); srcs != nil {
		t.Errorf("manifestsFrom(empty context) = %v, want nil", sourceNames(srcs))
	}
}

// TestWithManifestsDedup tests that relative, absolute, and symlinked paths
// to the same file yield one source.
func TestWithManifestsDedup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := writeFile(t, dir, "first.yaml", "first")
	second := writeFile(t, dir, "second.yaml", "second")

	link := filepath.Join(dir, "link.yaml")
	if err := os.Symlink(first, link); err != nil {
		t.Fatal(err)
	}

	ctx := WithManifests(context.Background(), []string{
		first, second, link, first, filepath.Join(dir, ".", "second.yaml"),
	})

	srcs := manifestsFrom(ctx)

	if got, want := sourceNames(srcs), []string{first, second}; !reflect.DeepEqual(got, want) {
		t.Fatalf("sources = %v, want %v", got, want)
	}

	for i, want := range []string{"first", "second"} {
		rc, err := srcs[i].open()
		if err != nil {
			t.Fatal(err)
		}

		data, err := io.ReadAll(rc)
		rc.Close()

		if err != nil {
			t.Fatal(err)
		}

		if string(data) != want {
			t.Errorf("source %d = %q, want %q", i, data, want)
		}
	}
}

// TestWithManifestsStdinLast tests that every "-" collapses into a single
// stdin source placed after regular files.
func TestWithManifestsStdinLast(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeFile(t, dir, "file.yaml", "x")

	ctx := WithManifests(context.Background(), []string{"-", file, "-"})

	got := sourceNames(manifestsFrom(ctx))
	if want := []string{file, stdinSource}; !reflect.DeepEqual(got, want) {
		t.Errorf("sources = %v, want %v", got, want)
	}
}

// TestWithManifestsMissing tests that nonexistent files are skipped.
func TestWithManifestsMissing(t *testing.T) {
	t.Parallel()

	ctx := WithManifests(context.Background(), []string{
		filepath.Join(t.TempDir(), "missing.yaml"),
	})

	if srcs := manifestsFrom(ctx); srcs != nil {
		t.Errorf("sources = %v, want nil", sourceNames(srcs))
	}
}

func TestMakeFileKeyNil(t *testing.T) {
	t.Parallel()

	if _, ok := makeFileKey(nil); ok {
		t.Error("makeFileKey(nil) ok = true, want false")
	}
}

// TestParamsDecode tests the YAML decoding of command-line parameters.
func TestParamsDecode(t *testing.T) {
	t.Parallel()

	p := Params{
		"n":     "3",
		"ok":    "true",
		"name":  "Ada",
		"empty": "",
		"xs":    "[1, 2]",
		"user":  "{name: Ada}",
		"quote": `"42"`,
	}

	got, err := p.decode(context.Background())
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}

	want := map[string]any{
		"n":     uint64(3),
		"ok":    true,
		"name":  "Ada",
		"empty": "",
		"quote": "42",
	}

	for k, w := range want {
		if got[k] != w {
			t.Errorf("decode()[%q] = %#v (%T), want %#v", k, got[k], got[k], w)
		}
	}

	if xs, ok := got["xs"].([]any); !ok || len(xs) != 2 {
		t.Errorf("decode()[xs] = %#v, want 2-element list", got["xs"])
	}

	if user, ok := got["user"].(map[string]any); !ok || user["name"] != "Ada" {
		t.Errorf("decode()[user] = %#v, want map with name", got["user"])
	}
}

func TestParamsDecodeError(t *testing.T) {
	t.Parallel()

	_, err := Params{"bad": "[1, 2"}.decode(context.Background())
	if !errors.Is(err, ErrParam) {
		t.Errorf("decode() error = %v, want ErrParam", err)
	}
}

// TestLoadCatalogError tests that a malformed manifest names its file.
func TestLoadCatalogError(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "bad.yaml", "templates: [")

	_, err := loadCatalog(WithManifests(context.Background(), []string{path}))
	if !errors.Is(err, ErrLoadManifest) {
		t.Fatalf("loadCatalog() error = %v, want ErrLoadManifest", err)
	}
}

func TestReadSourceMissing(t *testing.T) {
	t.Parallel()

	_, err := readSource(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("readSource() error = %v, want ErrReadSource", err)
	}
}
