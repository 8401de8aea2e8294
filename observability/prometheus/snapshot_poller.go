// Package prometheus exports job system activity snapshots as
// Prometheus collectors.
package prometheus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Andrej220/go-utils/jobsys"
	prom "github.com/prometheus/client_golang/prometheus"
)

// SystemSnapshotProvider provides current system stats snapshots.
type SystemSnapshotProvider interface {
	Stats() jobsys.Stats
}

// SnapshotPoller periodically exports System Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	systemsMu sync.RWMutex
	systems   map[string]SystemSnapshotProvider

	jobsQueued   *prom.GaugeVec
	jobsExecuted *prom.GaugeVec
	submitted    *prom.GaugeVec
	freeFibers   *prom.GaugeVec
	freeCounters *prom.GaugeVec
	workers      *prom.GaugeVec
	running      *prom.GaugeVec

	stateMu sync.Mutex
	active  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	jobsQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "jobs_queued",
		Help:      "Jobs currently on the ready queue.",
	}, []string{"system"})
	jobsExecuted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "jobs_executed",
		Help:      "Executed job count snapshot.",
	}, []string{"system"})
	submitted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "batches_submitted",
		Help:      "Submitted batch count snapshot.",
	}, []string{"system"})
	freeFibers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "free_fibers",
		Help:      "Fibers currently in the free pool.",
	}, []string{"system"})
	freeCounters := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "free_counters",
		Help:      "Counters currently in the free pool.",
	}, []string{"system"})
	workers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "workers",
		Help:      "Worker thread count.",
	}, []string{"system"})
	running := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "jobsys",
		Name:      "running",
		Help:      "System running state (1=running, 0=quit).",
	}, []string{"system"})

	var err error
	if jobsQueued, err = registerCollector(reg, jobsQueued); err != nil {
		return nil, err
	}
	if jobsExecuted, err = registerCollector(reg, jobsExecuted); err != nil {
		return nil, err
	}
	if submitted, err = registerCollector(reg, submitted); err != nil {
		return nil, err
	}
	if freeFibers, err = registerCollector(reg, freeFibers); err != nil {
		return nil, err
	}
	if freeCounters, err = registerCollector(reg, freeCounters); err != nil {
		return nil, err
	}
	if workers, err = registerCollector(reg, workers); err != nil {
		return nil, err
	}
	if running, err = registerCollector(reg, running); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:     interval,
		systems:      make(map[string]SystemSnapshotProvider),
		jobsQueued:   jobsQueued,
		jobsExecuted: jobsExecuted,
		submitted:    submitted,
		freeFibers:   freeFibers,
		freeCounters: freeCounters,
		workers:      workers,
		running:      running,
	}, nil
}

// AddSystem adds or replaces a system snapshot provider by name.
func (p *SnapshotPoller) AddSystem(name string, provider SystemSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "system")
	p.systemsMu.Lock()
	p.systems[name] = provider
	p.systemsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.active {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.active = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.active {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.active = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.systemsMu.RLock()
	defer p.systemsMu.RUnlock()

	for name, provider := range p.systems {
		stats := provider.Stats()
		p.jobsQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.jobsExecuted.WithLabelValues(name).Set(float64(stats.Executed))
		p.submitted.WithLabelValues(name).Set(float64(stats.Submitted))
		p.freeFibers.WithLabelValues(name).Set(float64(stats.FreeFibers))
		p.freeCounters.WithLabelValues(name).Set(float64(stats.FreeCounters))
		p.workers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.running.WithLabelValues(name).Set(1)
		} else {
			p.running.WithLabelValues(name).Set(0)
		}
	}
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
