package dupscan

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// detectorMetrics holds prometheus metrics registered by a Detector.
type detectorMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	matches    prometheus.Counter
}

func newDetectorMetrics(reg prometheus.Registerer) (*detectorMetrics, error) {
	m := &detectorMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dupscan",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Detector operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dupscan",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "Detector operation duration in seconds.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 5, 30, 120, 600},
		}, []string{"operation"}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dupscan",
			Subsystem: "sdk",
			Name:      "matches_total",
			Help:      "Pairs that met the threshold across Compare calls.",
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.matches); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector, or adopts the one already registered
// under the same descriptor. Several Detectors can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("dupscan: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("dupscan: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer records one log line and the metrics for each operation.
// A nil observer, logger or metrics set is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *detectorMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newDetectorMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

func (o *observer) observe(op string, start time.Time, err error, attrs ...any) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	args := append([]any{"op", op, "duration", dur}, attrs...)
	if err != nil {
		o.logger.Warn("operation failed", append(args, "error", err)...)
		return
	}
	o.logger.Debug("operation completed", args...)
}

// taskFailed logs one pivot whose comparisons were dropped.
func (o *observer) taskFailed(index int, docID string, err error) {
	if o == nil || o.logger == nil {
		return
	}
	o.logger.Error("comparison task failed", "index", index, "doc_id", docID, "error", err)
}

func (o *observer) countMatches(n int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.matches.Add(float64(n))
}
