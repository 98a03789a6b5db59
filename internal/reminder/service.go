package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Service drives a Scheduler with a one-second ticker on its own
// goroutine. All scheduler access is funneled through the service's
// mutex, so external calls and ticks never run scheduler logic in
// parallel.
type Service struct {
	mu    sync.Mutex
	sched *Scheduler

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService wraps a scheduler.
func NewService(sched *Scheduler) *Service {
	return &Service{sched: sched}
}

// Run starts the tick loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Reminder tick loop stopping")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.sched.Tick()
				s.mu.Unlock()
			}
		}
	}()
}

// Start begins the work/rest cycle.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Start()
}

// Stop halts the cycle, returning the scheduler to idle.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Stop()
}

// SetDurations updates the cycle durations (restarting an active cycle).
func (s *Service) SetDurations(work, rest time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.SetDurations(work, rest)
}

// Status returns the scheduler's status projection.
func (s *Service) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Status()
}

// Phase returns the current phase.
func (s *Service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Phase()
}

// RestPeriodsToday returns the completed rest count for this session.
func (s *Service) RestPeriodsToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.RestPeriodsToday()
}

// ResetCounter zeroes the daily rest counter.
func (s *Service) ResetCounter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.ResetCounter()
}

// Shutdown stops the tick loop and waits for it to exit.
func (s *Service) Shutdown() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}
