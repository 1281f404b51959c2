//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xcomp/log"
	"github.com/ardnew/xcomp/pkg"
	"github.com/ardnew/xcomp/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling"         placeholder:"${enum}"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory"                       type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(pkg.CacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	var group kong.Group

	group.Key = "pprof"
	group.Title = "Profiling (pprof)"

	return group
}

// start starts profiling if configured.
func (f pprofConfig) start(ctx context.Context) (stop func()) {
	if f.Mode == "" {
		return func() {}
	}

	log.DebugContext(ctx, "pprof start",
		slog.String("mode", f.Mode),
		slog.String("dir", f.Dir),
	)

	profiler := profile.Profiler{Mode: f.Mode, Path: f.Dir, Quiet: true}.Start()

	return func() {
		log.DebugContext(ctx, "pprof stop",
			slog.String("mode", f.Mode),
			slog.String("dir", f.Dir),
		)
		profiler.Stop()
	}
}
