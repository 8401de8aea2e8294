package jobsys

import (
	"runtime"
	"sync/atomic"
)

// WaitCondition is a wake condition for a blocked job or thread.
//
// Satisfied reports whether the condition holds. SleepOn busy-waits the
// calling goroutine until it does; from inside a running job prefer
// Wait, which executes other ready jobs instead of idling.
type WaitCondition interface {
	Satisfied() bool
	SleepOn()
}

// Counter is an atomic countdown used as the completion condition of a
// submitted batch. It starts at the batch size and is decremented by the
// scheduler as jobs finish; zero means satisfied.
//
// Counters are pooled. A reference returned by Submit or SubmitAsync is
// valid until the caller observes satisfaction; after that the system
// may recycle the counter for another batch.
type Counter struct {
	count atomic.Uint64
	_     [56]byte // one counter per cache line
}

// Satisfied reports whether every job in the batch has completed.
func (c *Counter) Satisfied() bool { return c.count.Load() == 0 }

// SleepOn spins the calling goroutine until the counter reaches zero.
// This is the thread-level fallback; it does not drain the ready queue.
func (c *Counter) SleepOn() {
	for !c.Satisfied() {
		runtime.Gosched()
	}
}
