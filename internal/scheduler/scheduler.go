// Package scheduler runs a job at a fixed interval in the background.
package scheduler

import (
	"context"
	"io"
	"log"
	"sync"
	"time"
)

// Job is one scheduled run. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs a Job every interval until stopped
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a scheduler. A nil logger discards output.
func New(name string, interval time.Duration, job Job, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger,
	}
}

// Start begins the scheduler loop. The job runs immediately, then once per
// interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Printf("Scheduler %s already running", s.name)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.logger.Printf("Scheduler %s started - running every %s", s.name, s.interval)

	go s.loop(ctx, s.done)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.run(ctx)

	for {
		select {
		case <-ticker.C:
			s.run(ctx)
		case <-ctx.Done():
			s.logger.Printf("Scheduler %s stopped", s.name)
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	if err := s.job(ctx); err != nil {
		s.logger.Printf("Error running %s: %v", s.name, err)
	}
}

// Stop halts the scheduler and waits for a running job to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
