package jobsys

import (
	"context"

	lg "github.com/Andrej220/go-utils/zlog"
)

const (
	// fiberStackSize is the stack budget accounted to each fiber. The
	// fiber pool is sized as MemoryBudgetMB * fibersPerMB.
	fiberStackSize = 64 * 1024
	fibersPerMB    = (1 << 20) / fiberStackSize
)

// fiber is one pooled execution context. A fiber hosts at most one job at
// a time; it is free whenever it sits in the free-fibers queue.
//
// Each fiber is backed by a long-lived parked goroutine. Dispatching a
// job sends it on run and blocks the dispatcher until the fiber signals
// done; the park/dispatch/join pair is the context switch of this
// runtime, so on every worker exactly one side of the handoff executes
// at a time. Fiber identity (the pointer into the pool) is stable for
// the lifetime of the system.
type fiber struct {
	run  chan *runJob
	done chan struct{}
}

// fiberLoop is the fiber's trampoline: it parks until a job is handed
// over, invokes the callable, and hands control back to the dispatcher.
// It exits only when the system shuts down.
func (s *System) fiberLoop(f *fiber) {
	for {
		select {
		case <-s.quitCh:
			return
		case rj := <-f.run:
			s.invoke(rj.declaration())
			f.done <- struct{}{}
		}
	}
}

// invoke runs a job callable. A panicking job is contained here so it
// still completes its batch; a crashed job must not hang its waiters.
func (s *System) invoke(decl *Job) {
	defer func() {
		if r := recover(); r != nil {
			lg.FromContext(context.Background()).Error("job panicked", lg.Any("panic", r))
			s.reportJobPanic(r)
		}
	}()
	decl.Func(decl.Arg)
}

// switchTo hands rj over to its fiber and blocks until the job has run
// to completion. Returns false if the system shut down before the fiber
// picked the job up.
func (s *System) switchTo(rj *runJob) bool {
	select {
	case rj.fiber.run <- rj:
	case <-s.quitCh:
		return false
	}
	<-rj.fiber.done
	return true
}
