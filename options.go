package jobsys

import (
	"runtime"
	"time"
)

const (
	// DefaultMemoryBudgetMB is the fiber-stack budget used when Options
	// leaves MemoryBudgetMB at zero. 100 MB buys 1600 fibers.
	DefaultMemoryBudgetMB = 100

	// idleSpins is how many empty pops a worker tolerates before it
	// starts parking between attempts.
	idleSpins = 64

	idleParkInitial = 20 * time.Microsecond
	idleParkMax     = time.Millisecond
)

// Options configure a job System.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Threads is the number of worker threads to spawn. Zero means
	// hardware concurrency minus one.
	Threads uint16

	// MemoryBudgetMB sizes the fiber pool: each MB of budget buys 16
	// fibers (64 KiB of stack budget apiece). The counter pool and the
	// three internal queues share the same cardinality, so submission
	// never blocks on queue space while fibers remain.
	MemoryBudgetMB uint64

	// PinWorkers locks each worker to an OS thread and restricts it to
	// a single CPU core. Linux only; elsewhere workers are still locked
	// to their threads but not pinned.
	PinWorkers bool

	// Metrics receives queueing and execution events. Defaults to an
	// AtomicMetrics instance; use NoopMetrics to disable.
	Metrics MetricsPolicy
}

func (o *Options) FillDefaults() {
	if o.Threads == 0 {
		n := runtime.NumCPU() - 1
		if n < 1 {
			n = 1
		}
		o.Threads = uint16(n)
	}
	if o.MemoryBudgetMB == 0 {
		o.MemoryBudgetMB = DefaultMemoryBudgetMB
	}
	if o.Metrics == nil {
		o.Metrics = &AtomicMetrics{}
	}
}

// fiberCount derives the pool cardinality from the memory budget.
func (o *Options) fiberCount() uint64 {
	return o.MemoryBudgetMB * fibersPerMB
}
