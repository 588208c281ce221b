// Package stats counts what the watchers see. Counters are exported as
// Prometheus collectors and kept in memory for the live view.
package stats

import (
	"sort"
	"sync"

	"github.com/lumipallolabs/dirwatch/internal/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Root holds the counts for one watch target
type Root struct {
	Root         string
	Active       bool
	Batches      int64
	Overflows    int64
	DumpFailures int64
	Events       map[record.Action]int64
}

// Snapshot is a point-in-time copy of all counters
type Snapshot struct {
	Roots []Root
	// Events sums Root.Events over all roots
	Events map[record.Action]int64
	Active int
}

// Counters records per-target statistics. It is safe for concurrent use.
type Counters struct {
	events       *prometheus.CounterVec
	batches      *prometheus.CounterVec
	overflows    *prometheus.CounterVec
	dumpFailures *prometheus.CounterVec
	active       prometheus.Gauge

	mu    sync.RWMutex
	roots map[string]*Root
}

// New creates counters registered with reg. A nil reg keeps the collectors
// unregistered.
func New(reg prometheus.Registerer) *Counters {
	factory := promauto.With(reg)
	return &Counters{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dirwatch",
			Name:      "events_total",
			Help:      "Change events reported, by watch root and action.",
		}, []string{"root", "action"}),
		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dirwatch",
			Name:      "batches_total",
			Help:      "Notification batches read, by watch root.",
		}, []string{"root"}),
		overflows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dirwatch",
			Name:      "overflows_total",
			Help:      "Notification overflows where changes were lost, by watch root.",
		}, []string{"root"}),
		dumpFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dirwatch",
			Name:      "dump_failures_total",
			Help:      "Failed content dumps, by watch root.",
		}, []string{"root"}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dirwatch",
			Name:      "active_watchers",
			Help:      "Watch targets currently running.",
		}),
		roots: make(map[string]*Root),
	}
}

// root returns the entry for path. Caller must hold the write lock.
func (c *Counters) root(path string) *Root {
	r, ok := c.roots[path]
	if !ok {
		r = &Root{Root: path, Events: make(map[record.Action]int64)}
		c.roots[path] = r
	}
	return r
}

// Started marks a watch target as running
func (c *Counters) Started(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.root(root)
	if !r.Active {
		r.Active = true
		c.active.Inc()
	}
}

// Stopped marks a watch target as no longer running
func (c *Counters) Stopped(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.root(root)
	if r.Active {
		r.Active = false
		c.active.Dec()
	}
}

// Batch counts one read from the notification source
func (c *Counters) Batch(root string) {
	c.batches.WithLabelValues(root).Inc()
	c.mu.Lock()
	c.root(root).Batches++
	c.mu.Unlock()
}

// Overflow counts a read that lost changes
func (c *Counters) Overflow(root string) {
	c.overflows.WithLabelValues(root).Inc()
	c.mu.Lock()
	c.root(root).Overflows++
	c.mu.Unlock()
}

// Event counts one reported change
func (c *Counters) Event(root string, action record.Action) {
	c.events.WithLabelValues(root, action.String()).Inc()
	c.mu.Lock()
	c.root(root).Events[action]++
	c.mu.Unlock()
}

// DumpFailure counts a content dump that could not be produced
func (c *Counters) DumpFailure(root string) {
	c.dumpFailures.WithLabelValues(root).Inc()
	c.mu.Lock()
	c.root(root).DumpFailures++
	c.mu.Unlock()
}

// Snapshot returns a copy of the counters, roots sorted by path
func (c *Counters) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Roots:  make([]Root, 0, len(c.roots)),
		Events: make(map[record.Action]int64),
	}
	for _, r := range c.roots {
		cp := *r
		cp.Events = make(map[record.Action]int64, len(r.Events))
		for action, n := range r.Events {
			cp.Events[action] = n
			snap.Events[action] += n
		}
		if cp.Active {
			snap.Active++
		}
		snap.Roots = append(snap.Roots, cp)
	}
	sort.Slice(snap.Roots, func(i, j int) bool {
		return snap.Roots[i].Root < snap.Roots[j].Root
	})
	return snap
}
