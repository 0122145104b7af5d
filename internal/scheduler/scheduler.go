package scheduler

import (
	"fmt"
	"sync"
	"time"
)

// Scheduler drives a frame-render callback at a fixed refresh interval.
// Start records a single monotonic start timestamp; every subsequent frame
// recomputes elapsed time from that same timestamp, so animation math stays
// anchored even when ticks are delayed. Cancel is idempotent and, once it
// returns, no further renders run.
type Scheduler struct {
	interval time.Duration

	// Injected time sources. Tests replace these to drive frames without a
	// real refresh clock.
	now    func() time.Time
	ticker func() (<-chan time.Time, func())

	mu      sync.Mutex
	running bool
	start   time.Time
	stop    chan struct{}
	done    sync.WaitGroup
}

// New creates a scheduler rendering every interval.
func New(interval time.Duration) *Scheduler {
	s := &Scheduler{
		interval: interval,
		now:      time.Now,
	}
	s.ticker = func() (<-chan time.Time, func()) {
		t := time.NewTicker(s.interval)
		return t.C, t.Stop
	}
	return s
}

// Start begins the render loop. The callback receives the elapsed time in
// seconds since this Start call. The first frame renders immediately.
func (s *Scheduler) Start(render func(elapsed float64)) error {
	if render == nil {
		return fmt.Errorf("nil render callback")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.start = s.now()
	s.stop = make(chan struct{})
	stop := s.stop
	start := s.start
	s.mu.Unlock()

	s.done.Add(1)
	go s.loop(render, start, stop)
	return nil
}

func (s *Scheduler) loop(render func(elapsed float64), start time.Time, stop chan struct{}) {
	defer s.done.Done()

	tick, stopTicker := s.ticker()
	defer stopTicker()

	render(s.now().Sub(start).Seconds())

	for {
		select {
		case <-stop:
			return
		case <-tick:
			// Re-check stop so a tick queued alongside cancellation does
			// not render after Cancel has been requested.
			select {
			case <-stop:
				return
			default:
			}
			render(s.now().Sub(start).Seconds())
		}
	}
}

// Cancel stops the loop and waits for the in-flight frame, if any, to
// finish. Safe to call at any time, including when nothing is running.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.done.Wait()
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
