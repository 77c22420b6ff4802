package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/vehicle-deal-checker/internal/cache"
)

// jobTimeout bounds a single scheduled run.
const jobTimeout = 5 * time.Minute

// Scheduler runs housekeeping jobs: expiring cached entries and pruning old
// evaluations.
type Scheduler struct {
	cron      *cron.Cron
	engine    *Engine
	sweeper   cache.Sweeper
	retention time.Duration
	log       *slog.Logger
}

// NewScheduler creates a Scheduler. The sweep job is registered only when
// sweeper is set; the prune job only when retention is positive. Zero
// intervals disable their job.
func NewScheduler(
	eng *Engine,
	sweeper cache.Sweeper,
	sweepInterval time.Duration,
	pruneInterval time.Duration,
	retention time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:      c,
		engine:    eng,
		sweeper:   sweeper,
		retention: retention,
		log:       log,
	}

	if sweeper != nil && sweepInterval > 0 {
		if _, err := c.AddFunc("@every "+sweepInterval.String(), s.RunCacheSweep); err != nil {
			return nil, err
		}
	}

	if retention > 0 && pruneInterval > 0 {
		if _, err := c.AddFunc("@every "+pruneInterval.String(), s.runPrune); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// RunCacheSweep drops expired cache entries.
func (s *Scheduler) RunCacheSweep() {
	if s.sweeper == nil {
		return
	}
	if n := s.sweeper.Sweep(); n > 0 {
		s.log.Debug("cache sweep removed expired entries", "count", n)
	}
}

// RunPrune deletes evaluations older than the retention window.
func (s *Scheduler) RunPrune(ctx context.Context) (int64, error) {
	n, err := s.engine.PruneHistory(ctx, s.retention)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("pruned old evaluations", "count", n, "retention", s.retention)
	}
	return n, nil
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.RunPrune(ctx); err != nil {
		s.log.Error("scheduled prune failed", "error", err)
	}
}
