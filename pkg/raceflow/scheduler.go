package raceflow

import (
	"context"
	"time"
)

// RoutineFunc is the body of a timed routine. It must return promptly once
// any Routine wait method reports an error.
type RoutineFunc func(ctx context.Context, r *Routine) error

// Scheduler steps timed routines cooperatively on the caller's goroutine.
//
// Each routine body runs on its own goroutine, but control is handed back and
// forth over unbuffered channels so that exactly one side runs at a time: the
// host (inside Go, Tick or Close) or a single routine. Routine bodies may
// therefore touch the same state as the host without locking.
type Scheduler struct {
	clock    Clock
	routines []*Routine
}

func NewScheduler(clock Clock) *Scheduler {
	return &Scheduler{clock: clock}
}

// Routine is the handle a routine body uses to suspend itself.
type Routine struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	clock  Clock

	ready  func() bool
	resume chan struct{}
	yield  chan struct{}

	done bool
	err  error
}

// Go starts fn and runs it until its first suspension point before
// returning. The routine is cancelled when ctx is, or by Close.
func (s *Scheduler) Go(ctx context.Context, name string, fn RoutineFunc) *Routine {
	rctx, cancel := context.WithCancel(ctx)
	r := &Routine{
		name:   name,
		ctx:    rctx,
		cancel: cancel,
		clock:  s.clock,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	go r.run(fn)
	r.step()
	if !r.done {
		s.routines = append(s.routines, r)
	}
	return r
}

// Tick resumes every routine whose wait condition is met, or whose context
// was cancelled, and forgets routines that have finished.
func (s *Scheduler) Tick() {
	pending := s.routines
	s.routines = nil
	for _, r := range pending {
		if r.ctx.Err() != nil || r.ready() {
			r.step()
		}
		if !r.done {
			s.routines = append(s.routines, r)
		}
	}
}

// Close cancels every pending routine and waits for each body to return.
func (s *Scheduler) Close() {
	pending := s.routines
	s.routines = nil
	for _, r := range pending {
		r.cancel()
		for !r.done {
			r.step()
		}
	}
}

// Pending reports how many routines are suspended.
func (s *Scheduler) Pending() int {
	return len(s.routines)
}

func (r *Routine) run(fn RoutineFunc) {
	<-r.resume
	err := r.ctx.Err()
	if err == nil {
		err = fn(r.ctx, r)
	}
	r.err = err
	r.done = true
	r.cancel()
	r.yield <- struct{}{}
}

func (r *Routine) step() {
	r.resume <- struct{}{}
	<-r.yield
}

func (r *Routine) suspend(ready func() bool) error {
	r.ready = ready
	r.yield <- struct{}{}
	<-r.resume
	r.ready = nil
	return r.ctx.Err()
}

// Name returns the name the routine was started with.
func (r *Routine) Name() string { return r.name }

// Done reports whether the body has returned.
func (r *Routine) Done() bool { return r.done }

// Err is the body's return value once Done.
func (r *Routine) Err() error { return r.err }

// Yield suspends until the next Tick.
func (r *Routine) Yield() error {
	return r.suspend(func() bool { return true })
}

// WaitGame suspends until d has passed on the game clock.
func (r *Routine) WaitGame(d time.Duration) error {
	deadline := r.clock.Now() + d
	return r.suspend(func() bool { return r.clock.Now() >= deadline })
}

// WaitRealtime suspends until d has passed on the unscaled clock.
func (r *Routine) WaitRealtime(d time.Duration) error {
	deadline := r.clock.RealNow() + d
	return r.suspend(func() bool { return r.clock.RealNow() >= deadline })
}

// WaitUntil suspends until cond holds, checking once per Tick. It returns
// immediately when cond already holds.
func (r *Routine) WaitUntil(cond func() bool) error {
	if cond() {
		return r.ctx.Err()
	}
	return r.suspend(cond)
}
