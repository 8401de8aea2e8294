package jobsys

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the job system to report
// submission, queueing and execution activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncSubmitted increments the submitted batches counter.
	IncSubmitted()

	// IncQueued increments the queued jobs counter.
	IncQueued()

	// BatchDecQueued decrements the queued counter by n.
	//
	// Used when jobs are taken off the ready queue for execution.
	BatchDecQueued(n int64)

	// IncExecuted increments the executed jobs counter.
	IncExecuted()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	// executed is the total number of jobs processed.
	executed atomic.Uint64

	_ [56]byte // padding to avoid false sharing

	// submitted is the total number of batches submitted.
	submitted atomic.Uint64

	_ [56]byte

	// queued is the current number of jobs on the ready queue.
	queued atomic.Int64
}

// Executed returns the total number of executed jobs.
// Intended for cold-path observation.
func (m *AtomicMetrics) Executed() uint64 {
	return m.executed.Load()
}

// Submitted returns the total number of submitted batches.
func (m *AtomicMetrics) Submitted() uint64 {
	return m.submitted.Load()
}

// Queued returns the current number of queued jobs.
// Intended for cold-path observation.
func (m *AtomicMetrics) Queued() int64 {
	return m.queued.Load()
}

// IncSubmitted increments the submitted batches counter by one.
func (m *AtomicMetrics) IncSubmitted() {
	m.submitted.Add(1)
}

// IncQueued increments the queued jobs counter by one.
func (m *AtomicMetrics) IncQueued() {
	m.queued.Add(1)
}

// BatchDecQueued decrements the queued jobs counter by n.
func (m *AtomicMetrics) BatchDecQueued(n int64) {
	m.queued.Add(-n)
}

// IncExecuted increments the executed jobs counter by one.
func (m *AtomicMetrics) IncExecuted() {
	m.executed.Add(1)
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
//
// It can be used when metrics collection is disabled and
// zero overhead is desired.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted()          {}
func (m *NoopMetrics) IncQueued()             {}
func (m *NoopMetrics) BatchDecQueued(n int64) {}
func (m *NoopMetrics) IncExecuted()           {}
