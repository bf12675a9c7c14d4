package metrics

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Window keeps the most recent duration samples and answers percentile
// queries over them. Prometheus histograms cover scraping; Window backs the
// in-process stats returned by the tool dispatcher.
type Window struct {
	samples []float64 // milliseconds
	mu      sync.RWMutex
	maxSize int
}

// NewWindow creates a window holding at most maxSize samples.
func NewWindow(maxSize int) *Window {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Window{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds a sample. The oldest fifth is dropped when the window is full.
func (w *Window) Record(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples = append(w.samples, float64(d.Microseconds())/1000.0)
	if len(w.samples) > w.maxSize {
		w.samples = w.samples[w.maxSize/5:]
	}
}

// Count returns the number of retained samples.
func (w *Window) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.samples)
}

// Mean returns the average in milliseconds.
func (w *Window) Mean() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range w.samples {
		sum += v
	}
	return sum / float64(len(w.samples))
}

// Percentile returns the interpolated value at p (0-100).
func (w *Window) Percentile(p float64) float64 {
	w.mu.RLock()
	sorted := make([]float64, len(w.samples))
	copy(sorted, w.samples)
	w.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	sort.Float64s(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}

// ToolStats tracks call counts and latency per tool.
type ToolStats struct {
	mu      sync.RWMutex
	windows map[string]*Window
	calls   atomic.Uint64
	errors  atomic.Uint64
}

// NewToolStats creates an empty collector.
func NewToolStats() *ToolStats {
	return &ToolStats{windows: make(map[string]*Window)}
}

// Observe records one call of tool and mirrors it to Prometheus.
func (s *ToolStats) Observe(tool string, d time.Duration, err error) {
	s.calls.Add(1)
	outcome := "ok"
	if err != nil {
		s.errors.Add(1)
		outcome = "error"
	}
	ToolCalls.WithLabelValues(tool, outcome).Inc()

	s.mu.Lock()
	w, ok := s.windows[tool]
	if !ok {
		w = NewWindow(1000)
		s.windows[tool] = w
	}
	s.mu.Unlock()

	w.Record(d)
}

// ToolSnapshot summarizes one tool.
type ToolSnapshot struct {
	Calls  int     `json:"calls"`
	MeanMs float64 `json:"meanMs"`
	P50Ms  float64 `json:"p50Ms"`
	P95Ms  float64 `json:"p95Ms"`
}

// StatsSnapshot is a point-in-time copy of ToolStats.
type StatsSnapshot struct {
	Calls  uint64                  `json:"calls"`
	Errors uint64                  `json:"errors"`
	Tools  map[string]ToolSnapshot `json:"tools"`
}

// Snapshot returns the current stats.
func (s *ToolStats) Snapshot() StatsSnapshot {
	snap := StatsSnapshot{
		Calls:  s.calls.Load(),
		Errors: s.errors.Load(),
		Tools:  make(map[string]ToolSnapshot),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for tool, w := range s.windows {
		snap.Tools[tool] = ToolSnapshot{
			Calls:  w.Count(),
			MeanMs: w.Mean(),
			P50Ms:  w.Percentile(50),
			P95Ms:  w.Percentile(95),
		}
	}
	return snap
}
