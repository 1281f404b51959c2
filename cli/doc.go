// Package cli contains the command line interface for xcomp.
//
// # Usage
//
// Templates, host functions, and globals are loaded from YAML manifests
// given with --manifest (repeatable, "-" for stdin):
//
//	xcomp -m site.yaml render Page -p title=Home
//	xcomp -m site.yaml eval 'upper(globals.site)'
//	xcomp fmt markup --indent 2 page.html
//	xcomp -m site.yaml extract > messages.pot
//	xcomp -m site.yaml repl
//
// Without a command, xcomp starts the REPL.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the per-user configuration
// directory (see [pkg.ConfigDir]). Nested mappings name flags by joining keys
// with hyphens:
//
//	log:
//	  level: debug
//	manifest:
//	  - ~/sites/base.yaml
//
// The init command writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o xcomp .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/xcomp/pprof)
package cli
