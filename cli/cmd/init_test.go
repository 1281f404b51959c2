package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initContext parses args against cli and returns a context carrying the
// resulting kong.Context with the config path set to confPath.
func initContext(t *testing.T, cli any, confPath string, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string) // setup function to prepare test
		wantErr error
	}{
		{
			name:  "create_new_config",
			force: false,
			setup: nil, // no pre-existing file
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name:  "fail_without_force",
			force: false,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: ErrFileExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct {
				Name string `default:"world" name:"name"`
			}

			ctx := initContext(t, &cli, confPath)

			err := (&Init{Force: tt.force}).Run(ctx)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				if !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want ErrWriteConfig", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() unexpected error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(content, &got); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			if got["name"] != "world" {
				t.Errorf("config name = %v, want world", got["name"])
			}
		})
	}
}

// TestInitValues tests that values collects every set flag in name order.
func TestInitValues(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool              `help:"Enable verbose output" name:"verbose"`
		Output  string            `help:"Output file"           name:"output"`
		Count   int               `help:"Number of items"       name:"count"`
		Empty   string            `help:"Unset string"          name:"empty"`
		Tags    []string          `help:"Tags"                  name:"tags"`
		Labels  map[string]string `help:"Labels"                name:"labels"`
		Secret  string            `hidden:""                    name:"secret"`
		Pprof   string            `help:"Profile mode"          name:"pprof-mode"`
	}

	ctx := initContext(t, &cli, filepath.Join(t.TempDir(), "config.yaml"),
		"--verbose", "--output=test.txt", "--count=5", "--tags=a,b",
		"--labels=k=v", "--secret=x", "--pprof-mode=cpu",
	)

	values := (&Init{}).values(kongContextFrom(ctx))

	var keys []any
	for _, item := range values {
		keys = append(keys, item.Key)
	}

	want := []any{"count", "labels", "output", "tags", "verbose"}
	if len(keys) != len(want) {
		t.Fatalf("values() keys = %v, want %v", keys, want)
	}

	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("values() keys[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
}

// TestInitFlagValue tests the flagValue conversion of each value type.
func TestInitFlagValue(t *testing.T) {
	t.Parallel()

	var cli struct {
		Bool    bool              `name:"flag-bool"`
		String  string            `name:"flag-string"`
		Empty   string            `name:"flag-empty"`
		Int     int               `name:"flag-int"`
		Float   float64           `name:"flag-float"`
		Strings []string          `name:"flag-strings"`
		Map     map[string]string `name:"flag-map"`
	}

	ctx := initContext(t, &cli, "unused",
		"--flag-bool", "--flag-string=test", "--flag-int=42",
		"--flag-float=3.5", "--flag-strings=a,b,c", "--flag-map=k=v",
	)

	ktx := kongContextFrom(ctx)

	tests := []struct {
		flag string
		want any
	}{
		{"flag-bool", true},
		{"flag-string", "test"},
		{"flag-empty", nil},
		{"flag-int", 42},
		{"flag-float", 3.5},
	}

	flags := make(map[string]*kong.Flag)
	for _, f := range ktx.Model.Flags {
		flags[f.Name] = f
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if got := flagValue(ktx, flags[tt.flag]); got != tt.want {
				t.Errorf("flagValue(%s) = %v, want %v", tt.flag, got, tt.want)
			}
		})
	}

	if got, ok := flagValue(ktx, flags["flag-strings"]).([]string); !ok || len(got) != 3 {
		t.Errorf("flagValue(flag-strings) = %v, want [a b c]", got)
	}

	if got, ok := flagValue(ktx, flags["flag-map"]).(map[string]string); !ok || got["k"] != "v" {
		t.Errorf("flagValue(flag-map) = %v, want map[k:v]", got)
	}
}

// TestInitWithInvalidPath tests init with an invalid file path.
func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	var cli struct{}

	ctx := initContext(t, &cli, "/nonexistent/directory/config.yaml")

	err := (&Init{Force: false}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want ErrWriteConfig", err)
	}
}
