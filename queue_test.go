package jobsys_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	js "github.com/Andrej220/go-utils/jobsys"
)

func TestQueueCapacityRounding(t *testing.T) {
	tests := []struct {
		size uint64
		want int
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{16, 16},
		{17, 32},
		{1000, 1024},
	}
	for _, tc := range tests {
		q := js.NewQueue[int](tc.size)
		if got := q.Cap(); got != tc.want {
			t.Errorf("NewQueue(%d).Cap() = %d; want %d", tc.size, got, tc.want)
		}
	}
}

func TestQueueZeroSizePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero-size queue")
		}
	}()
	js.NewQueue[int](0)
}

func TestQueueFIFO(t *testing.T) {
	q := js.NewQueue[int](8)
	for i := 0; i < 8; i++ {
		if !q.TryPush(i) {
			t.Fatalf("TryPush(%d) failed on non-full queue", i)
		}
	}
	for i := 0; i < 8; i++ {
		var v int
		if !q.TryPop(&v) {
			t.Fatalf("TryPop failed on non-empty queue at %d", i)
		}
		if v != i {
			t.Fatalf("popped %d; want %d", v, i)
		}
	}
}

func TestQueueTryFullEmpty(t *testing.T) {
	q := js.NewQueue[int](4)

	var v int
	if q.TryPop(&v) {
		t.Fatal("TryPop succeeded on empty queue")
	}

	for i := 0; i < q.Cap(); i++ {
		if !q.TryPush(i) {
			t.Fatalf("TryPush failed before capacity at %d", i)
		}
	}
	if q.TryPush(99) {
		t.Fatal("TryPush succeeded on full queue")
	}

	for i := 0; i < q.Cap(); i++ {
		if !q.TryPop(&v) {
			t.Fatalf("TryPop failed on full queue at %d", i)
		}
	}
	if q.TryPop(&v) {
		t.Fatal("TryPop succeeded after drain")
	}
}

func TestQueueWrapAround(t *testing.T) {
	q := js.NewQueue[int](4)
	var v int
	// Cycle through the ring several times so slot turns advance past
	// their first lap.
	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			if !q.TryPush(round*10 + i) {
				t.Fatalf("push failed at round %d item %d", round, i)
			}
		}
		for i := 0; i < 3; i++ {
			if !q.TryPop(&v) {
				t.Fatalf("pop failed at round %d item %d", round, i)
			}
			if v != round*10+i {
				t.Fatalf("popped %d; want %d", v, round*10+i)
			}
		}
	}
}

func TestQueueBlockingPushPop(t *testing.T) {
	q := js.NewQueue[int](4)
	const total = 1000

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			if got := q.Pop(); got != i {
				t.Errorf("Pop() = %d; want %d", got, i)
				return
			}
		}
	}()

	for i := 0; i < total; i++ {
		q.Push(i)
	}
	<-done
}

// Every value pushed by a completed Push is popped exactly once, no
// value is popped that was never pushed.
func TestQueueMPMCStress(t *testing.T) {
	const (
		producers = 4
		consumers = 4
		perProd   = 5000
		total     = producers * perProd
	)

	q := js.NewQueue[int](64)
	seen := make([]atomic.Int32, total)

	var popped atomic.Int64
	var wg sync.WaitGroup

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				q.Push(p*perProd + i)
			}
		}(p)
	}

	for c := 0; c < consumers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var v int
			for popped.Load() < total {
				if !q.TryPop(&v) {
					runtime.Gosched()
					continue
				}
				if v < 0 || v >= total {
					t.Errorf("popped value %d was never pushed", v)
					return
				}
				seen[v].Add(1)
				popped.Add(1)
			}
		}()
	}

	wg.Wait()

	for i := range seen {
		if n := seen[i].Load(); n != 1 {
			t.Fatalf("value %d popped %d times; want 1", i, n)
		}
	}
}

func TestQueueLen(t *testing.T) {
	q := js.NewQueue[int](8)
	if q.Len() != 0 {
		t.Fatalf("Len() = %d on empty queue", q.Len())
	}
	q.Push(1)
	q.Push(2)
	if got := q.Len(); got != 2 {
		t.Fatalf("Len() = %d; want 2", got)
	}
	var v int
	q.TryPop(&v)
	if got := q.Len(); got != 1 {
		t.Fatalf("Len() = %d; want 1", got)
	}
}
