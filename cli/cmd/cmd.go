package cmd

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xcomp/catalog"
	"github.com/ardnew/xcomp/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type outputKey struct{}

// WithOutput returns a new context.Context whose commands write their results
// to w instead of os.Stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

type (
	manifestsKey struct{}

	// source is a named input that may be opened once.
	source struct {
		name string
		open func() (io.ReadCloser, error)
	}
)

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithManifests returns a new context.Context containing the manifest files
// that commands load into their catalog.
//
// Paths are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" are replaced with a single stdin source
// placed last, so it loads after all regular files.
func WithManifests(ctx context.Context, paths []string) context.Context {
	return context.WithValue(ctx, manifestsKey{}, buildSources(paths))
}

func manifestsFrom(ctx context.Context) []source {
	srcs, _ := ctx.Value(manifestsKey{}).([]source)

	return srcs
}

func buildSources(paths []string) []source {
	if len(paths) == 0 {
		return nil
	}

	srcs := make([]source, 0, len(paths))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, path := range paths {
		if path == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		resolved, ok := resolveUnique(path, seen)
		if !ok {
			continue
		}

		srcs = append(srcs, source{
			name: path,
			open: func() (io.ReadCloser, error) { return os.Open(resolved) },
		})
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	if _, ok := seen[stdinKey]; ok {
		srcs = append(srcs, source{
			name: stdinSource,
			open: func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil },
		})
	}

	if len(srcs) == 0 {
		return nil
	}

	return srcs
}

// resolveUnique returns the resolved path of path if the file it names has
// not been seen before.
func resolveUnique(path string, seen map[fileKey]struct{}) (string, bool) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return "", false
	}

	if _, exists := seen[key]; exists {
		return "", false
	}

	seen[key] = struct{}{}

	return resolved, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: stat.Dev, ino: stat.Ino}, true
}

// loadCatalog returns a catalog holding every manifest stored in ctx.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c := catalog.New(catalog.WithLogger(log.Default()))

	for _, src := range manifestsFrom(ctx) {
		if err := loadManifest(ctx, c, src); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func loadManifest(ctx context.Context, c *catalog.Catalog, src source) error {
	rc, err := src.open()
	if err != nil {
		return ErrLoadManifest.With(slog.String("file", src.name)).Wrap(err)
	}
	defer rc.Close()

	m, err := catalog.LoadManifest(ctx, rc)
	if err != nil {
		return ErrLoadManifest.With(slog.String("file", src.name)).Wrap(err)
	}

	if err := c.Load(ctx, m); err != nil {
		return ErrLoadManifest.With(slog.String("file", src.name)).Wrap(err)
	}

	log.DebugContext(ctx, "loaded manifest",
		slog.String("file", src.name),
		slog.Int("templates", len(m.Templates)),
	)

	return nil
}

// Params holds template parameters given on the command line as key=value
// pairs. Values are YAML, so -p n=3 binds an Int and -p xs=[1,2] a List.
type Params map[string]string

// decode converts every parameter value from YAML.
func (p Params) decode(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, len(p))

	for _, name := range slices.Sorted(maps.Keys(p)) {
		var v any
		if err := yaml.UnmarshalContext(ctx, []byte(p[name]), &v); err != nil {
			return nil, ErrParam.With(slog.String("name", name)).Wrap(err)
		}

		if v == nil {
			v = ""
		}

		out[name] = v
	}

	return out, nil
}

// readSource reads the named file, or stdin for "-".
func readSource(name string) (string, error) {
	var r io.Reader = os.Stdin

	if name != stdinSource {
		f, err := os.Open(name)
		if err != nil {
			return "", ErrReadSource.With(slog.String("file", name)).Wrap(err)
		}
		defer f.Close()

		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", ErrReadSource.With(slog.String("file", name)).Wrap(err)
	}

	return string(data), nil
}
