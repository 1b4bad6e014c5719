package dupscan

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Detector.
type Option interface {
	apply(*detectorConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*detectorConfig)

func (f optionFunc) apply(c *detectorConfig) { f(c) }

type detectorConfig struct {
	threshold float64
	workers   int
	autoJunk  bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithThreshold sets the minimum score, inclusive, for a pair to match.
// Default: 50.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *detectorConfig) {
		c.threshold = t
	})
}

// WithWorkers bounds how many pivot documents are compared concurrently.
// Default: 10.
func WithWorkers(n int) Option {
	return optionFunc(func(c *detectorConfig) {
		c.workers = n
	})
}

// WithAutoJunk enables the popular-character heuristic for long texts.
// It is faster on large inputs but can lower scores.
func WithAutoJunk() Option {
	return optionFunc(func(c *detectorConfig) {
		c.autoJunk = true
	})
}

// WithLogger enables structured logging for Detector operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *detectorConfig) {
		c.logger = l
	})
}

// WithPrometheus registers operation counts and durations on the given
// registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *detectorConfig) {
		c.metricsReg = reg
	})
}
