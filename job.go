package jobsys

import "unsafe"

// JobFunc is the function executed when a job is scheduled.
type JobFunc func(arg any)

// Job is a single unit of work submitted to the job system.
//
// Func is invoked with Arg once a worker picks the job up. For Submit and
// SubmitAndWait the descriptor is referenced in place, so it must stay
// alive and unmoved until the batch's condition is satisfied. SubmitAsync
// copies the descriptor before returning, after which the caller's value
// may be reused or dropped.
type Job struct {
	// Func runs when the job is scheduled. For synchronous submission the
	// callable must survive until the job has completed.
	Func JobFunc

	// Arg is passed to Func.
	Arg any

	// Padding rounds the descriptor up to one cache line, so that two
	// adjacent declarations never contend for the same line. Callers may
	// use it as scratch storage for small argument payloads.
	Padding [64 - (unsafe.Sizeof(JobFunc(nil)) + unsafe.Sizeof(any(nil)))]byte
}

// A job declaration occupies exactly 64 bytes. The index underflows and
// compilation fails if the layout drifts.
var _ = [1]struct{}{}[unsafe.Sizeof(Job{})-64]

// runJob is the unit carried by the ready queue: the job declaration, the
// fiber it will run on, and the counter to decrement when it finishes.
type runJob struct {
	// decl points at the caller-owned declaration. nil for async jobs,
	// which carry their own copy in inline.
	decl    *Job
	inline  Job
	fiber   *fiber
	counter *Counter
}

// declaration returns the job to execute, regardless of submission mode.
func (rj *runJob) declaration() *Job {
	if rj.decl != nil {
		return rj.decl
	}
	return &rj.inline
}
