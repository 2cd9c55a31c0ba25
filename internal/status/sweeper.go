package status

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Default sweep settings.
const (
	DefaultSweepSchedule = "* * * * *" // every minute
	DefaultMaxAge        = 5 * time.Minute
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SweepConfig controls the staleness sweep.
type SweepConfig struct {
	Schedule string        // 5-field cron expression
	MaxAge   time.Duration // ACTIVE agents unseen for longer are stalled
}

// Sweeper periodically flips agents that have gone quiet to STALLED.
// Stalling is advisory: queued messages for a stalled agent still deliver.
type Sweeper struct {
	tracker *Tracker
	sched   cron.Schedule
	maxAge  time.Duration
	onStall func(agentID string)
}

// NewSweeper builds a Sweeper. onStall, if non-nil, is invoked once per
// newly stalled agent (used for escalation notifications).
func NewSweeper(tracker *Tracker, cfg SweepConfig, onStall func(agentID string)) (*Sweeper, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSweepSchedule
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	sched, err := cronParser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("status: parse sweep schedule %q: %w", cfg.Schedule, err)
	}
	return &Sweeper{
		tracker: tracker,
		sched:   sched,
		maxAge:  cfg.MaxAge,
		onStall: onStall,
	}, nil
}

// Start runs the sweep loop in a background goroutine until ctx is
// cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.loop(ctx)
}

func (s *Sweeper) loop(ctx context.Context) {
	for {
		next := s.sched.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Sweep()
		}
	}
}

// Sweep runs one staleness pass and returns the newly stalled agent IDs.
func (s *Sweeper) Sweep() []string {
	stalled := s.tracker.MarkStale(s.maxAge)
	for _, id := range stalled {
		log.Printf("status: agent %s stalled (no activity for %s)", id, s.maxAge)
		if s.onStall != nil {
			s.onStall(id)
		}
	}
	return stalled
}
