// Package profile provides optional runtime profiling for xcomp.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] with conditional
// compilation. Profiling must be enabled at build time using the [Tag] build
// tag; otherwise every operation is a no-op and [Modes] is empty.
//
//	go build -tags pprof -o xcomp .
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	ctrl := p.Start()
//	defer ctrl.Stop()
//
// Profiling a large catalog render from the command line:
//
//	xcomp --pprof-mode cpu render Page -m site.yaml
//	go tool pprof -http=: ~/.cache/xcomp/pprof/cpu.pprof
//
// Profile files are written to the configured directory with names matching
// the profiling mode (e.g., cpu.pprof, mem.pprof).
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
