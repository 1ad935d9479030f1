package stencil

import (
	"io"
	"log/slog"
	"runtime"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Strategy selects one of the five execution disciplines. The zero value is
// FineParallelIterative, the reference implementation's own default.
type Strategy int

const (
	FineParallelIterative Strategy = iota
	SequentialIterative
	CoarseParallelIterative
	SequentialRecursive
	ParallelRecursive
)

func (s Strategy) String() string {
	switch s {
	case SequentialIterative:
		return "sequential_iterative"
	case CoarseParallelIterative:
		return "coarse_grained_iterative"
	case FineParallelIterative:
		return "fine_grained_iterative"
	case SequentialRecursive:
		return "sequential_recursive"
	case ParallelRecursive:
		return "parallel_recursive"
	default:
		return "unknown_strategy"
	}
}

// Options configures a Run call. The zero value is usable: Workers 0 means
// GOMAXPROCS, NeighborhoodRadius 0 means 1, and a nil Logger disables
// tracing. DefaultOptions returns the same configuration with those values
// filled in.
type Options struct {
	Strategy Strategy

	// Workers bounds the concurrency of the coarse-grained iterative
	// strategy's parallel-for. 0 means runtime.GOMAXPROCS(0).
	Workers int

	// NeighborhoodRadius is the Chebyshev radius the fine-grained iterative
	// strategy uses to compute task (t,i)'s dependency on step t-1. 1 is the
	// minimal bounded neighborhood implied by "stencil"; widen it if f reads
	// further than its immediate neighbors.
	NeighborhoodRadius int

	// Logger receives one Debug-level trace per Run call (strategy and step
	// count). Split decisions, task spawns and layer transitions are not
	// traced. A nil Logger disables tracing.
	Logger *slog.Logger
}

// DefaultOptions returns the engine's default configuration.
func DefaultOptions() Options {
	return Options{
		Strategy:           FineParallelIterative,
		Workers:            runtime.GOMAXPROCS(0),
		NeighborhoodRadius: 1,
		Logger:             nil,
	}
}

func (o Options) log() *slog.Logger {
	if o.Logger == nil {
		return discardLogger
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) radius() int64 {
	if o.NeighborhoodRadius > 0 {
		return int64(o.NeighborhoodRadius)
	}
	return 1
}
