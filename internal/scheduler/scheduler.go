// Package scheduler drives recurring ingestion. A ticker fires at the
// configured interval; each tick triggers one ingestion run with a cutoff
// derived from the current time minus the lookback window, so consecutive
// ticks never share an idempotency key.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultLookback is the ingestion window applied when none is configured.
const DefaultLookback = 7 * 24 * time.Hour

// Ingestor is the job triggered on every tick.
type Ingestor interface {
	// IngestRecentBills runs one ingestion for the cutoff and returns the
	// number of newly persisted documents.
	IngestRecentBills(ctx context.Context, fromDate time.Time) int
}

// Scheduler runs the ingestion job on a fixed interval until stopped.
type Scheduler struct {
	ingestor Ingestor
	interval time.Duration
	lookback time.Duration

	// now is swapped in tests.
	now func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}

	// runs tracks in-flight ingestions so Stop can drain them.
	runs sync.WaitGroup
}

// New constructs a Scheduler. Non-positive lookback falls back to
// DefaultLookback.
func New(ingestor Ingestor, interval, lookback time.Duration) *Scheduler {
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Scheduler{
		ingestor: ingestor,
		interval: interval,
		lookback: lookback,
		now:      time.Now,
	}
}

// Start launches the ticking goroutine. The first run fires immediately,
// then every interval. Calling Start on a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ingestor == nil || s.interval <= 0 || s.stop != nil {
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	log.Info().
		Dur("interval", s.interval).
		Dur("lookback", s.lookback).
		Msg("ingestion scheduler started")

	go s.run(ctx, s.stop, s.done)
}

func (s *Scheduler) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.trigger(ctx)
	for {
		select {
		case <-ticker.C:
			s.trigger(ctx)
		case <-ctx.Done():
			return
		case <-stop:
			return
		}
	}
}

// trigger launches one ingestion with a fresh cutoff on its own goroutine
// so a slow run never stalls the ticker loop. Overlapping runs are safe:
// the ingestor dedups per bill id. The ingestor owns all error handling,
// so a failed run never reaches the ticker loop.
func (s *Scheduler) trigger(ctx context.Context) {
	from := s.now().UTC().Add(-s.lookback)
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		persisted := s.ingestor.IngestRecentBills(ctx, from)
		log.Debug().
			Time("from_date", from).
			Int("documents", persisted).
			Msg("scheduled ingestion tick completed")
	}()
}

// Stop halts the ticking goroutine and waits for in-flight runs to
// finish. Safe to call on a scheduler that never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.runs.Wait()
	log.Info().Msg("ingestion scheduler stopped")
}
