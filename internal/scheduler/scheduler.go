package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"cornerconsole/internal/service"
)

// Scheduler drives the periodic maintenance sweeps. One goroutine per job,
// stopped together via the context passed to Start.
type Scheduler struct {
	sweeps *service.SweepService
	wg     sync.WaitGroup
}

func New(sweeps *service.SweepService) *Scheduler {
	return &Scheduler{sweeps: sweeps}
}

type job struct {
	name     string
	interval time.Duration
	run      func(context.Context) error
}

// Start launches the sweep loops. Each job runs once at startup and then on
// its interval until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	jobs := []job{
		{"expire-stale-checkouts", 10 * time.Minute, func(ctx context.Context) error {
			_, err := s.sweeps.ExpireStaleCheckouts(ctx)
			return err
		}},
		{"mark-late-rentals", time.Hour, func(ctx context.Context) error {
			_, err := s.sweeps.MarkLateRentals(ctx)
			return err
		}},
		{"return-reminders", 24 * time.Hour, func(ctx context.Context) error {
			_, err := s.sweeps.SendReturnReminders(ctx)
			return err
		}},
		{"auto-refund-deposits", time.Hour, func(ctx context.Context) error {
			_, err := s.sweeps.AutoRefundDeposits(ctx)
			return err
		}},
	}
	for _, j := range jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.runOnce(ctx, j)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, j)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j job) {
	if err := j.run(ctx); err != nil {
		log.Printf("[scheduler] %s failed: %v", j.name, err)
	}
}

// Wait blocks until all sweep loops have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
