package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config tunes the analyses. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// StrongCorrelationThreshold is the strict lower bound on |r| for a
	// strong pair.
	StrongCorrelationThreshold float64
	// IQRMultiplier scales the interquartile range when computing bounds.
	IQRMultiplier float64
	// MaxReportedOutliers truncates the reported outlier values per column.
	MaxReportedOutliers int
	// Workers bounds per-column fan-out. Zero or less means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		StrongCorrelationThreshold: 0.7,
		IQRMultiplier:              1.5,
		MaxReportedOutliers:        10,
	}
}

// Engine computes descriptive statistics, correlations, outliers and trends
// over immutable tables. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	config Config
}

// NewEngine creates a new analysis engine
func NewEngine(config Config) *Engine {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{config: config}
}

// NewDefaultEngine creates an engine with DefaultConfig
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultConfig())
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.config
}

// forEach runs fn for every index in [0, n) on a bounded pool. Callers write
// results by index, so output order never depends on scheduling.
func (e *Engine) forEach(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	if n == 1 || e.config.Workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(e.config.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
