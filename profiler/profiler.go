// Package profiler - timing statistics for repeated operations such as the phases of
// an equalization run.
package profiler

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultMaxSamples bounds the durations a tracker keeps for percentiles.
const DefaultMaxSamples = 1000

// Summary is a snapshot of one tracker.
type Summary struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Mean  time.Duration `json:"mean"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
}

// TimeTracker tracks operation timing statistics.
//
// Count, Min, Max and Mean cover every recorded duration; percentiles use the most
// recent maxSamples only.
type TimeTracker struct {
	name       string
	durations  []time.Duration
	maxSamples int
	totalTime  time.Duration
	minTime    time.Duration
	maxTime    time.Duration
	count      int64
}

// NewTimeTracker creates a tracker keeping at most maxSamples durations.
// Values below 1 select DefaultMaxSamples.
func NewTimeTracker(name string, maxSamples int) *TimeTracker {
	if maxSamples < 1 {
		maxSamples = DefaultMaxSamples
	}
	return &TimeTracker{name: name, maxSamples: maxSamples}
}

// Record adds one duration.
func (t *TimeTracker) Record(d time.Duration) {
	if t.count == 0 || d < t.minTime {
		t.minTime = d
	}
	if t.count == 0 || d > t.maxTime {
		t.maxTime = d
	}
	t.totalTime += d
	t.count++

	t.durations = append(t.durations, d)
	if len(t.durations) > t.maxSamples {
		t.durations = t.durations[1:]
	}
}

// Percentile returns the empirical p-quantile (0..1) of the retained durations.
func (t *TimeTracker) Percentile(p float64) time.Duration {
	if len(t.durations) == 0 {
		return 0
	}
	values := make([]float64, len(t.durations))
	for i, d := range t.durations {
		values[i] = float64(d)
	}
	sort.Float64s(values)
	return time.Duration(stat.Quantile(p, stat.Empirical, values, nil))
}

// Summary returns the tracker's statistics.
func (t *TimeTracker) Summary() Summary {
	s := Summary{Name: t.name, Count: t.count, Min: t.minTime, Max: t.maxTime}
	if t.count > 0 {
		s.Mean = t.totalTime / time.Duration(t.count)
		s.P50 = t.Percentile(0.5)
		s.P95 = t.Percentile(0.95)
	}
	return s
}

// Profiler groups named trackers. It is safe for concurrent use.
type Profiler struct {
	mu         sync.Mutex
	maxSamples int
	trackers   map[string]*TimeTracker
	order      []string
}

// New creates a profiler whose trackers keep at most maxSamples durations each.
func New(maxSamples int) *Profiler {
	return &Profiler{
		maxSamples: maxSamples,
		trackers:   make(map[string]*TimeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds a duration to the named tracker, creating it on first use.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.trackers[name]
	if !exists {
		tracker = NewTimeTracker(name, p.maxSamples)
		p.trackers[name] = tracker
		p.order = append(p.order, name)
	}
	tracker.Record(d)
}

// Summary returns the statistics of one tracker.
func (p *Profiler) Summary(name string) (Summary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, ok := p.trackers[name]
	if !ok {
		return Summary{}, false
	}
	return tracker.Summary(), true
}

// Summaries returns every tracker's statistics in first-use order.
func (p *Profiler) Summaries() []Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Summary, 0, len(p.order))
	for _, name := range p.order {
		out = append(out, p.trackers[name].Summary())
	}
	return out
}
