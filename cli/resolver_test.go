package cli

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	val, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", name, err)
	}

	return val
}

func TestResolve_FlatAndNested(t *testing.T) {
	config := `
log:
  level: debug
  pretty: false
log_format: text
manifest:
  - a.yaml
  - b.yaml
depth: 3
ratio: 0.5
`

	resolver, err := resolve(context.Background())(strings.NewReader(config))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", false},
		{"log-format", "text"},
		{"log_format", "text"},
		{"depth", "3"},
		{"ratio", "0.5"},
		{"manifest", []any{"a.yaml", "b.yaml"}},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if got := resolveFlag(t, resolver, tt.flag); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolve_UnderscoreHyphenMapping(t *testing.T) {
	resolver, err := resolve(context.Background())(strings.NewReader("log_level: debug\n"))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	for _, name := range []string{"log_level", "log-level"} {
		if val := resolveFlag(t, resolver, name); val != "debug" {
			t.Errorf("Resolve(%q) = %v, want debug", name, val)
		}
	}
}

func TestResolve_InvalidYAML(t *testing.T) {
	for _, config := range []string{"log: [", "- just\n- a list\n"} {
		resolver, err := resolve(context.Background())(strings.NewReader(config))
		if err != nil {
			t.Fatalf("resolve(%q) failed: %v", config, err)
		}

		if val := resolveFlag(t, resolver, "log"); val != nil {
			t.Errorf("resolve(%q) produced %v, want empty config", config, val)
		}
	}
}

func TestResolve_Empty(t *testing.T) {
	resolver, err := resolve(context.Background())(strings.NewReader(""))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if val := resolveFlag(t, resolver, "log-level"); val != nil {
		t.Errorf("Resolve() = %v, want nil", val)
	}

	if err := resolver.Validate(nil); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

// TestResolve_ReadError verifies error handling for read failures.
func TestResolve_ReadError(t *testing.T) {
	_, err := resolve(context.Background())(&errorReader{err: bytes.ErrTooLarge})
	if err == nil {
		t.Error("expected read error")
	}
}

// errorReader is a reader that always returns an error.
type errorReader struct {
	err error
}

func (e *errorReader) Read([]byte) (n int, err error) {
	return 0, e.err
}
