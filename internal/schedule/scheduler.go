// Package schedule serializes outbound ledger reads so the aggregate call
// rate stays under the fullnode's limit. Operations run strictly one at a
// time in FIFO arrival order, and a fixed minimum delay is inserted after
// each completion before the next begins. This is a throughput throttle, not
// a correctness mechanism: an enqueued operation always eventually runs, or
// fails deterministically when the scheduler has been closed or the caller's
// context expires while waiting.
//
// On top of the serialized spacing, a token bucket (golang.org/x/time/rate)
// caps the admission rate so multiple schedulers or out-of-band calls still
// respect a process-wide ceiling.
package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrClosed is returned for operations submitted after Close.
var ErrClosed = errors.New("schedule: scheduler closed")

// job is one queued operation and its completion signal.
type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// Scheduler runs submitted operations one at a time with a minimum spacing
// after each completion. Safe for concurrent use.
type Scheduler struct {
	spacing time.Duration
	limiter *rate.Limiter
	jobs    chan job

	closeOnce sync.Once
	closed    chan struct{}
	drained   chan struct{}
}

// New constructs a Scheduler with the given inter-operation spacing and an
// admission ceiling of rps operations per second (burst 1). A spacing of 0
// disables the inter-call delay; rps <= 0 disables the token bucket.
func New(spacing time.Duration, rps float64) *Scheduler {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	s := &Scheduler{
		spacing: spacing,
		limiter: lim,
		jobs:    make(chan job, 64),
		closed:  make(chan struct{}),
		drained: make(chan struct{}),
	}
	go s.loop()
	return s
}

// Do enqueues op and blocks until it has run, returning op's error. The
// context only covers the caller's wait and the operation itself; it does not
// reorder or cancel other queued work. After Close, Do fails with ErrClosed.
func (s *Scheduler) Do(ctx context.Context, op func(ctx context.Context) error) error {
	j := job{ctx: ctx, run: op, done: make(chan error, 1)}
	select {
	case <-s.closed:
		return ErrClosed
	case s.jobs <- j:
	}
	select {
	case err := <-j.done:
		return err
	case <-s.drained:
		return ErrClosed
	case <-ctx.Done():
		// The job still runs in arrival order; only the caller stops
		// waiting for it.
		return ctx.Err()
	}
}

// Close stops admission, runs already-enqueued operations, and returns once
// the queue has drained.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
	<-s.drained
}

// loop is the single worker: it guarantees one in-flight operation and the
// post-completion spacing. After Close it drains what was already queued,
// then exits.
func (s *Scheduler) loop() {
	defer close(s.drained)
	for {
		select {
		case j := <-s.jobs:
			s.exec(j)
		case <-s.closed:
			for {
				select {
				case j := <-s.jobs:
					s.exec(j)
				default:
					return
				}
			}
		}
	}
}

// exec runs one job with the limiter and spacing applied.
func (s *Scheduler) exec(j job) {
	if j.ctx.Err() != nil {
		j.done <- j.ctx.Err()
		return
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(j.ctx); err != nil {
			j.done <- err
			return
		}
	}
	j.done <- j.run(j.ctx)
	if s.spacing > 0 {
		time.Sleep(s.spacing)
	}
}
