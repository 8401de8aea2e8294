package jobsys

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// System is a fiber-based job scheduler: a fixed pool of worker threads
// executing short jobs on pooled fibers, with cooperative waiting that
// keeps draining the ready queue instead of idling a worker.
//
// All pools and queues are built once at construction; the system does
// not resize. The ready queue, the free-fiber pool and the free-counter
// pool share one cardinality (derived from the memory budget), so a
// well-provisioned system never blocks a submitter on queue space.
type System struct {
	opts Options

	readyJobs    *Queue[runJob]
	freeFibers   *Queue[*fiber]
	freeCounters *Queue[*Counter]

	// fibers and counters are the backing pools. The slices are
	// read-only after construction; each entry is exclusively owned by
	// whichever queue or runJob currently references it.
	fibers   []fiber
	counters []Counter

	metrics MetricsPolicy

	// OnJobPanic, if set, receives values recovered from panicking job
	// callables. Set it before the first submission.
	OnJobPanic func(recovered any)

	// OnInternalError, if set, receives non-job failures such as worker
	// setup errors.
	OnInternalError func(err error)

	// emptyBatch is handed out for zero-length submissions. It is never
	// pooled and is always satisfied.
	emptyBatch Counter

	quitCh   chan struct{}
	quitOnce sync.Once
}

// NewSystem builds the pools and queues and spawns the worker threads.
func NewSystem(opts Options) *System {
	opts.FillDefaults()

	logger := lg.FromContext(context.Background())
	if int(opts.Threads) > 2*runtime.NumCPU() {
		logger.Warn("worker count exceeds twice the hardware concurrency",
			lg.Int("threads", int(opts.Threads)),
			lg.Int("cpus", runtime.NumCPU()),
		)
	}

	fiberCount := opts.fiberCount()
	s := &System{
		opts:         opts,
		readyJobs:    NewQueue[runJob](fiberCount),
		freeFibers:   NewQueue[*fiber](fiberCount),
		freeCounters: NewQueue[*Counter](fiberCount),
		fibers:       make([]fiber, fiberCount),
		counters:     make([]Counter, fiberCount),
		metrics:      opts.Metrics,
		quitCh:       make(chan struct{}),
	}

	for i := range s.fibers {
		f := &s.fibers[i]
		f.run = make(chan *runJob)
		f.done = make(chan struct{})
		s.freeFibers.Push(f)
		go s.fiberLoop(f)
	}
	for i := range s.counters {
		s.freeCounters.Push(&s.counters[i])
	}

	// Ordinals start at 2; the spawning thread is 1.
	for i := 0; i < int(opts.Threads); i++ {
		go s.worker(i + 2)
	}

	logger.Info("job system initialized",
		lg.Int("threads", int(opts.Threads)),
		lg.Int("fibers", int(fiberCount)),
	)
	return s
}

// worker is the dispatch loop of one worker thread: pop a ready job,
// switch onto its fiber, return the fiber to the free pool, decrement
// the batch counter. Idle workers spin briefly, then park with jittered
// sleeps until work shows up.
func (s *System) worker(ordinal int) {
	runtime.LockOSThread()
	if err := setThreadName(fmt.Sprintf("Thread %d", ordinal)); err != nil {
		s.reportInternalError(err)
	}
	if s.opts.PinWorkers {
		if err := PinToCPU((ordinal - 2) % runtime.NumCPU()); err != nil {
			s.reportInternalError(err)
		}
	}

	var rj runJob
	misses := 0
	for {
		select {
		case <-s.quitCh:
			return
		default:
		}

		if s.readyJobs.TryPop(&rj) {
			misses = 0
			s.runReady(&rj)
			continue
		}

		misses++
		if misses <= idleSpins {
			runtime.Gosched()
			continue
		}

		bo := boff.New(idleParkInitial, idleParkMax, time.Now().UnixNano())
		for !s.readyJobs.TryPop(&rj) {
			select {
			case <-s.quitCh:
				return
			default:
			}
			time.Sleep(bo.Next())
		}
		misses = 0
		s.runReady(&rj)
	}
}

// runReady executes one dequeued job on its fiber and releases its
// resources: the fiber goes back to the free pool, the counter is
// decremented, and the counter is recycled by whichever decrement
// reaches zero.
func (s *System) runReady(rj *runJob) {
	s.metrics.BatchDecQueued(1)
	if !s.switchTo(rj) {
		return
	}
	s.freeFibers.Push(rj.fiber)
	s.metrics.IncExecuted()
	if rj.counter.count.Add(^uint64(0)) == 0 {
		s.freeCounters.Push(rj.counter)
	}
}

// Submit enqueues a batch of jobs and returns the condition that becomes
// satisfied when all of them have completed.
//
// The declarations are referenced in place: both the callables and the
// arguments must stay alive and unmoved until the returned condition is
// satisfied. Use this when submitting jobs and doing more work before
// waiting on them.
func (s *System) Submit(jobs []Job) *Counter {
	return s.submit(jobs, false)
}

// SubmitAsync enqueues a batch like Submit, but copies every declaration
// into fiber-owned storage before returning. The caller's slice may be
// mutated or dropped immediately after the call.
func (s *System) SubmitAsync(jobs []Job) *Counter {
	return s.submit(jobs, true)
}

func (s *System) submit(jobs []Job, async bool) *Counter {
	if len(jobs) == 0 {
		return &s.emptyBatch
	}

	counter := s.freeCounters.Pop()
	counter.count.Store(uint64(len(jobs)))

	for i := range jobs {
		rj := runJob{
			fiber:   s.freeFibers.Pop(),
			counter: counter,
		}
		if async {
			rj.inline = jobs[i]
		} else {
			rj.decl = &jobs[i]
		}
		s.readyJobs.Push(rj)
		s.metrics.IncQueued()
	}
	s.metrics.IncSubmitted()
	return counter
}

// SubmitAndWait enqueues a batch and blocks the calling job or thread in
// the cooperative wait loop until the whole batch has completed. The
// batch's condition is internal and not reusable.
func (s *System) SubmitAndWait(jobs []Job) {
	if len(jobs) == 0 {
		return
	}
	s.Wait(s.submit(jobs, false))
}

// Wait blocks the calling job or thread until cond is satisfied. While
// unsatisfied it keeps executing ready jobs exactly as a worker would,
// so a waiter never idles a core that could be doing useful work.
//
// Called from inside a running job, Wait runs on that job's own fiber;
// the job resumes once the condition holds. The job must therefore be
// satisfiable without the waiter's fiber being released, or the system
// livelocks; that is a programmer error.
//
// Wait returns early if the system is shut down.
func (s *System) Wait(cond WaitCondition) {
	var rj runJob
	for !cond.Satisfied() {
		select {
		case <-s.quitCh:
			return
		default:
		}
		if !s.readyJobs.TryPop(&rj) {
			runtime.Gosched()
			continue
		}
		s.runReady(&rj)
	}
}

// Quit shuts the system down. Workers stop at their next dispatch point
// and parked fibers are released; jobs still queued are abandoned and
// their conditions never complete. A job already running on a fiber may
// still finish and decrement its counter. For process teardown only.
func (s *System) Quit() {
	s.quitOnce.Do(func() {
		close(s.quitCh)
		lg.FromContext(context.Background()).Info("job system quit",
			lg.Int("threads", int(s.opts.Threads)),
		)
	})
}

// Stats is a point-in-time snapshot of system activity, intended for
// cold-path observation and metrics export.
type Stats struct {
	Workers      int
	Queued       int
	FreeFibers   int
	FreeCounters int
	Submitted    uint64
	Executed     uint64
	Running      bool
}

// Stats snapshots current activity. Totals are only available when the
// system runs with AtomicMetrics (the default); with another policy
// they read as zero.
func (s *System) Stats() Stats {
	st := Stats{
		Workers:      int(s.opts.Threads),
		Queued:       s.readyJobs.Len(),
		FreeFibers:   s.freeFibers.Len(),
		FreeCounters: s.freeCounters.Len(),
		Running:      true,
	}
	select {
	case <-s.quitCh:
		st.Running = false
	default:
	}
	if m, ok := s.metrics.(*AtomicMetrics); ok {
		st.Submitted = m.Submitted()
		st.Executed = m.Executed()
	}
	return st
}
