package jobsys

import (
	"context"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
)

// The process-wide system behind the package-level API. Engines that
// want several independent schedulers can use NewSystem directly; the
// package-level functions exist for the common one-scheduler-per-process
// case.
var process atomic.Pointer[System]

// Initialize sets up the process-wide job system. Idempotent: the first
// call takes effect, later calls log an error and do nothing.
//
// threadCount of zero means hardware concurrency minus one.
// memoryBudgetMB of zero means DefaultMemoryBudgetMB.
func Initialize(threadCount uint16, memoryBudgetMB uint64) {
	if process.Load() != nil {
		lg.FromContext(context.Background()).Error("job system is already initialized")
		return
	}
	s := NewSystem(Options{Threads: threadCount, MemoryBudgetMB: memoryBudgetMB})
	if !process.CompareAndSwap(nil, s) {
		s.Quit()
		lg.FromContext(context.Background()).Error("job system is already initialized")
	}
}

// Submit enqueues a batch on the process-wide system. See System.Submit.
func Submit(jobs []Job) *Counter { return mustProcess().Submit(jobs) }

// SubmitAsync enqueues a detached batch on the process-wide system.
// See System.SubmitAsync.
func SubmitAsync(jobs []Job) *Counter { return mustProcess().SubmitAsync(jobs) }

// SubmitAndWait enqueues a batch on the process-wide system and blocks
// cooperatively until it completes. See System.SubmitAndWait.
func SubmitAndWait(jobs []Job) { mustProcess().SubmitAndWait(jobs) }

// Wait blocks the calling job or thread on the process-wide system until
// cond is satisfied. See System.Wait.
func Wait(cond WaitCondition) { mustProcess().Wait(cond) }

// Quit shuts the process-wide system down. See System.Quit.
func Quit() { mustProcess().Quit() }

func mustProcess() *System {
	s := process.Load()
	if s == nil {
		panic("jobsys: Initialize must be called before use")
	}
	return s
}
