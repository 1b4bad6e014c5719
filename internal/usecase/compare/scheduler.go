package compare

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/dupscan/internal/domain"
	"github.com/kailas-cloud/dupscan/internal/domain/match"
	"github.com/kailas-cloud/dupscan/internal/metrics"
)

// DefaultWorkers bounds concurrent pivot tasks.
const DefaultWorkers = 10

// DefaultProgressInterval is the minimum gap between progress log lines.
const DefaultProgressInterval = 10 * time.Second

// TaskFailure records a pivot task dropped after a panic.
type TaskFailure struct {
	Index int
	DocID string
	Err   error
}

// Outcome is the merged result of all pivot tasks.
type Outcome struct {
	// Matches are flattened in pivot index order; within a pivot, in j order.
	Matches  []match.Match
	Pairs    int64
	Tasks    int
	Failures []TaskFailure
}

// Scheduler fans Engine.CompareOne out over a bounded worker pool.
type Scheduler struct {
	engine           *Engine
	workers          int
	progressInterval time.Duration
	logger           *zap.Logger
}

// NewScheduler creates a Scheduler with DefaultWorkers.
func NewScheduler(engine *Engine, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		engine:           engine,
		workers:          DefaultWorkers,
		progressInterval: DefaultProgressInterval,
		logger:           logger,
	}
}

// WithWorkers configures the pool size.
func (s *Scheduler) WithWorkers(n int) *Scheduler {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithProgressInterval configures how often progress is logged.
func (s *Scheduler) WithProgressInterval(d time.Duration) *Scheduler {
	if d > 0 {
		s.progressInterval = d
	}
	return s
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int { return s.workers }

// Run compares every pivot index of c. Each task owns its result slot, so the
// merge needs no lock. A panicking task is logged and dropped; the others
// still contribute. Once ctx is done no new task starts, in-flight tasks
// finish, and Run returns the context error with no matches.
func (s *Scheduler) Run(ctx context.Context, c *Corpus) (Outcome, error) {
	n := c.Len()
	if n <= 1 {
		return Outcome{}, nil
	}

	results := make([][]match.Match, n)
	var (
		pairs    atomic.Int64
		done     atomic.Int64
		mu       sync.Mutex
		failures []TaskFailure
	)
	progress := rate.Sometimes{Interval: s.progressInterval}

	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	scheduled := 0
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			start := time.Now()
			matches, scored, err := s.runTask(c, i)
			metrics.TaskDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				metrics.TaskPanicsTotal.Inc()
				s.logger.Error("Comparison task failed, dropping its matches",
					zap.Int("index", i),
					zap.String("doc_id", c.Document(i).ID()),
					zap.Error(err),
				)
				mu.Lock()
				failures = append(failures, TaskFailure{Index: i, DocID: c.Document(i).ID(), Err: err})
				mu.Unlock()
			} else {
				results[i] = matches
				pairs.Add(int64(scored))
				metrics.PairsComparedTotal.Add(float64(scored))
				metrics.MatchesTotal.Add(float64(len(matches)))
			}

			finished := done.Add(1)
			progress.Do(func() {
				s.logger.Info("Comparison progress",
					zap.Int64("tasks_done", finished),
					zap.Int("tasks_total", n),
					zap.Int64("pairs_compared", pairs.Load()),
				)
			})
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	if err := ctx.Err(); err != nil {
		s.logger.Warn("Comparison cancelled",
			zap.Int("tasks_started", scheduled),
			zap.Int("tasks_total", n),
		)
		return Outcome{}, fmt.Errorf("comparison cancelled: %w", err)
	}

	sort.Slice(failures, func(a, b int) bool { return failures[a].Index < failures[b].Index })

	total := 0
	for _, r := range results {
		total += len(r)
	}
	merged := make([]match.Match, 0, total)
	for _, r := range results {
		merged = append(merged, r...)
	}

	return Outcome{
		Matches:  merged,
		Pairs:    pairs.Load(),
		Tasks:    n,
		Failures: failures,
	}, nil
}

// runTask isolates one pivot task: a panic becomes an error.
func (s *Scheduler) runTask(c *Corpus, i int) (matches []match.Match, scored int, err error) {
	defer func() {
		if r := recover(); r != nil {
			matches, scored = nil, 0
			err = fmt.Errorf("pivot %d: %w: %v", i, domain.ErrWorkerPanic, r)
			s.logger.Debug("Recovered comparison panic",
				zap.Int("index", i),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	matches, scored = s.engine.compareOne(c, i)
	return matches, scored, nil
}
