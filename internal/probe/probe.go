// Package probe periodically checks that the upstream archives are reachable
// and keeps the latest result for the health endpoint. This is the only
// mutable state in the process; nothing in the request path writes to it.
package probe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/openatmos/airhealth-api/internal/atmos/providers"
)

// Target is one upstream base URL to probe.
type Target struct {
	Name string
	URL  string
}

// Status is the latest probe outcome for one target.
type Status struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Reachable  bool      `json:"reachable"`
	StatusCode int       `json:"status_code,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Prober runs the periodic checks.
type Prober struct {
	scheduler *gocron.Scheduler
	fetcher   *providers.Fetcher
	targets   []Target
	interval  time.Duration
	log       *zap.Logger

	mu       sync.RWMutex
	statuses map[string]Status
}

// New creates a Prober for the given targets.
func New(targets []Target, interval time.Duration, fetcher *providers.Fetcher, log *zap.Logger) *Prober {
	return &Prober{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		targets:   targets,
		interval:  interval,
		log:       log,
		statuses:  make(map[string]Status),
	}
}

// Start schedules the periodic probe and runs a first pass immediately.
func (p *Prober) Start() error {
	if len(p.targets) == 0 {
		p.log.Info("probe: no targets configured; nothing to schedule")
		return nil
	}

	minutes := int(p.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	job := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		p.RunOnce(ctx)
	}

	if _, err := p.scheduler.Every(minutes).Minutes().Do(job); err != nil {
		return err
	}

	p.scheduler.StartAsync()
	go job()
	return nil
}

// Stop cancels future probe runs.
func (p *Prober) Stop() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
}

// RunOnce probes every target and records the results.
func (p *Prober) RunOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range p.targets {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()

			code, err := p.fetcher.Head(ctx, t.URL)
			status := Status{
				Name:       t.Name,
				URL:        t.URL,
				Reachable:  err == nil,
				StatusCode: code,
				CheckedAt:  time.Now().UTC(),
			}
			if err != nil {
				p.log.Warn("probe: upstream unreachable", zap.String("target", t.Name), zap.Error(err))
			}

			p.mu.Lock()
			p.statuses[t.Name] = status
			p.mu.Unlock()
		}()
	}
	wg.Wait()
}

// Snapshot returns the latest statuses, sorted by target name.
func (p *Prober) Snapshot() []Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Status, 0, len(p.statuses))
	for _, s := range p.statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
