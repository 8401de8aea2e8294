package jobsys_test

import (
	"sync/atomic"
	"testing"

	js "github.com/Andrej220/go-utils/jobsys"
)

// The package-level facade owns a single process-wide system; the second
// Initialize must be a no-op. One test exercises the whole facade so the
// global state is touched exactly once per test binary.
func TestProcessWideFacade(t *testing.T) {
	js.Initialize(2, 1)
	js.Initialize(2, 1) // logged and ignored

	var hits atomic.Int64
	jobs := make([]js.Job, 10)
	for i := range jobs {
		jobs[i] = js.Job{
			Func: func(arg any) { arg.(*atomic.Int64).Add(1) },
			Arg:  &hits,
		}
	}

	cond := js.Submit(jobs)
	js.Wait(cond)
	if got := hits.Load(); got != 10 {
		t.Fatalf("hits = %d; want 10", got)
	}

	hits.Store(0)
	js.SubmitAndWait(jobs)
	if got := hits.Load(); got != 10 {
		t.Fatalf("hits after SubmitAndWait = %d; want 10", got)
	}

	hits.Store(0)
	async := make([]js.Job, 3)
	copy(async, jobs[:3])
	acond := js.SubmitAsync(async)
	for i := range async {
		async[i] = js.Job{}
	}
	js.Wait(acond)
	if got := hits.Load(); got != 3 {
		t.Fatalf("hits after SubmitAsync = %d; want 3", got)
	}

	js.Quit()
}
