// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jasync

import (
	"context"
	"sync"

	"github.com/creachadair/mds/queue"
)

// A Scheduler runs tasks on behalf of a parser. Tasks must be run one at a
// time, in the order they were scheduled, and every scheduled task must
// eventually run. Schedule must not run the task before it returns.
type Scheduler interface {
	Schedule(task func())
}

// A Deferred is the eventual result of a parse. It is either ready, holding
// a result or an error, or pending until the parser's remaining steps have
// been run by its scheduler.
type Deferred struct {
	sched Scheduler
	done  chan struct{}

	mu    sync.Mutex
	ready bool
	res   Result
	err   error
	thens []func(Result, error)
}

func newDeferred(s Scheduler) *Deferred {
	return &Deferred{sched: s, done: make(chan struct{})}
}

// settledDeferred returns a Deferred that is already ready with res and err.
func settledDeferred(s Scheduler, res Result, err error) *Deferred {
	d := newDeferred(s)
	d.settle(res, err)
	return d
}

// Ready reports whether d has settled.
func (d *Deferred) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Result returns the result of d. If d is not ready it reports ErrPending.
func (d *Deferred) Result() (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return Result{}, ErrPending
	}
	return d.res, d.err
}

// Done returns a channel that is closed when d settles.
func (d *Deferred) Done() <-chan struct{} { return d.done }

// Wait blocks until d settles or ctx ends, and returns the result. Wait is
// for callers whose scheduler runs on another goroutine; to drive a Loop from
// the current goroutine, use its Await method instead.
func (d *Deferred) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-d.done:
		return d.Result()
	}
}

// Then arranges for f to be called with the result of d once it settles.
// Callbacks are run by the scheduler of d, in the order they were added, and
// never before Then returns. If d has no scheduler, which is only possible
// when it was ready from the start, f is called immediately.
func (d *Deferred) Then(f func(Result, error)) {
	d.mu.Lock()
	if !d.ready {
		d.thens = append(d.thens, f)
		d.mu.Unlock()
		return
	}
	res, err := d.res, d.err
	d.mu.Unlock()
	d.dispatch(f, res, err)
}

// settle records the result of d and dispatches its callbacks. Only the
// first call has any effect.
func (d *Deferred) settle(res Result, err error) {
	d.mu.Lock()
	if d.ready {
		d.mu.Unlock()
		return
	}
	d.ready, d.res, d.err = true, res, err
	thens := d.thens
	d.thens = nil
	close(d.done)
	d.mu.Unlock()

	for _, f := range thens {
		d.dispatch(f, res, err)
	}
}

func (d *Deferred) dispatch(f func(Result, error), res Result, err error) {
	if d.sched == nil {
		f(res, err)
		return
	}
	d.sched.Schedule(func() { f(res, err) })
}

// A Loop is a single-threaded Scheduler that runs tasks in FIFO order.
// Tasks are run only when the caller asks, via RunOne, Run, or Await.
// It is safe to call Schedule from multiple goroutines, but the run methods
// must be called from only one goroutine at a time.
//
// The zero value is ready for use.
type Loop struct {
	mu sync.Mutex
	q  *queue.Queue[func()]
}

// Schedule adds task to the end of the run queue.
func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.q == nil {
		l.q = queue.New[func()]()
	}
	l.q.Add(task)
}

// Len reports the number of tasks waiting to run.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.q == nil {
		return 0
	}
	return l.q.Len()
}

// RunOne runs the task at the front of the queue, if there is one, and
// reports whether a task was run.
func (l *Loop) RunOne() bool {
	l.mu.Lock()
	if l.q == nil {
		l.mu.Unlock()
		return false
	}
	task, ok := l.q.Pop()
	l.mu.Unlock()
	if ok {
		task()
	}
	return ok
}

// Run runs tasks until the queue is empty, including tasks scheduled while it
// runs, and reports the number of tasks run.
func (l *Loop) Run() int {
	var n int
	for l.RunOne() {
		n++
	}
	return n
}

// Await runs tasks until d settles, and returns its result. It stops early
// if ctx ends, reporting the context's error, or if the queue is empty while
// d is still pending, reporting ErrStalled. Ending ctx does not stop the
// parse: the remaining tasks stay queued.
func (l *Loop) Await(ctx context.Context, d *Deferred) (Result, error) {
	for !d.Ready() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if !l.RunOne() {
			return Result{}, ErrStalled
		}
	}
	return d.Result()
}
