package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Refresher is what the scheduler re-runs on every refresh tick.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Sweeper drops expired entries and reports how many it dropped.
type Sweeper interface {
	Sweep() int
}

type sweep struct {
	name     string
	interval time.Duration
	target   Sweeper
}

// Scheduler periodically refreshes the dashboard regions and runs cleanup
// sweeps.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
	sweeps    []sweep
	log       *zap.Logger
}

// New creates a new Scheduler. Each refresh run gets its own timeout.
func New(target Refresher, interval, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		timeout:   timeout,
		log:       logger,
	}
}

// AddSweep registers a cleanup job. It must be called before Start. A
// non-positive interval disables it.
func (s *Scheduler) AddSweep(name string, interval time.Duration, target Sweeper) {
	s.sweeps = append(s.sweeps, sweep{name: name, interval: interval, target: target})
}

// Start schedules the jobs and starts the underlying scheduler. A
// non-positive refresh interval disables periodic refresh.
func (s *Scheduler) Start() error {
	jobs := 0

	if s.interval > 0 {
		if _, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.run); err != nil {
			return err
		}
		jobs++
		s.log.Info("scheduler: refresh scheduled", zap.Duration("interval", s.interval))
	} else {
		s.log.Info("scheduler: periodic refresh disabled")
	}

	for _, sw := range s.sweeps {
		if sw.interval <= 0 {
			continue
		}
		sw := sw
		if _, err := s.scheduler.Every(sw.interval).WaitForSchedule().Do(func() { s.runSweep(sw) }); err != nil {
			return err
		}
		jobs++
		s.log.Info("scheduler: sweep scheduled", zap.String("sweep", sw.name), zap.Duration("interval", sw.interval))
	}

	if jobs > 0 {
		s.scheduler.StartAsync()
	}
	return nil
}

func (s *Scheduler) run() {
	s.log.Debug("scheduler: running refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.target.Refresh(ctx)
	s.log.Debug("scheduler: completed refresh job", zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) runSweep(sw sweep) {
	if n := sw.target.Sweep(); n > 0 {
		s.log.Info("scheduler: sweep released entries", zap.String("sweep", sw.name), zap.Int("released", n))
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
