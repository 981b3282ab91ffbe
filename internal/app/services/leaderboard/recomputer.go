package leaderboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/R3E-Network/leaderboard/internal/app/system"
	"github.com/R3E-Network/leaderboard/pkg/logger"
)

var _ system.Service = (*Recomputer)(nil)

// DefaultRecomputeSchedule runs a batch pass every thirty seconds.
const DefaultRecomputeSchedule = "@every 30s"

// Recomputer runs the batch rank recomputation on a cron schedule. A failed
// pass leaves previously persisted ranks intact and is retried on the next
// tick.
type Recomputer struct {
	service  *Service
	log      *logger.Logger
	schedule string
	timeout  time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	busy    atomic.Bool
}

// NewRecomputer creates a lifecycle-managed batch recomputer. The schedule
// accepts standard cron expressions and @every intervals; empty falls back
// to DefaultRecomputeSchedule.
func NewRecomputer(service *Service, schedule string, log *logger.Logger) *Recomputer {
	if log == nil {
		log = logger.NewDefault("leaderboard-recomputer")
	}
	if schedule == "" {
		schedule = DefaultRecomputeSchedule
	}
	return &Recomputer{
		service:  service,
		log:      log,
		schedule: schedule,
		timeout:  30 * time.Second,
	}
}

func (r *Recomputer) Name() string { return "leaderboard-recomputer" }

func (r *Recomputer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.run); err != nil {
		return err
	}
	c.Start()
	r.cron = c
	r.running = true

	r.log.WithField("schedule", r.schedule).Info("rank recomputer started")
	return nil
}

func (r *Recomputer) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.running = false
	r.mu.Unlock()

	if c == nil {
		return nil
	}

	// cron.Stop returns a context that completes once running jobs finish.
	done := c.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	r.log.Info("rank recomputer stopped")
	return nil
}

// run executes one pass. Overlapping ticks are skipped so a slow pass never
// stacks up behind itself; the schedule stays interval-safe by re-entrancy.
func (r *Recomputer) run() {
	if !r.busy.CompareAndSwap(false, true) {
		r.log.Warn("previous recomputation pass still running; skipping tick")
		return
	}
	defer r.busy.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.service.RecomputeAllRanks(ctx); err != nil {
		r.log.WithError(err).Warn("rank recomputation pass failed; will retry on next tick")
	}
}
