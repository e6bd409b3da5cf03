package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector accumulates per-round latency samples.
type Collector struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
	min  time.Duration
	max  time.Duration
	sum  time.Duration
}

// Stats is an aggregated snapshot of a run.
type Stats struct {
	Samples      int64         `json:"samples"`
	Min          time.Duration `json:"-"`
	Max          time.Duration `json:"-"`
	Mean         time.Duration `json:"-"`
	P50          time.Duration `json:"-"`
	P90          time.Duration `json:"-"`
	P99          time.Duration `json:"-"`
	P999         time.Duration `json:"-"`
	Duration     time.Duration `json:"-"`
	RoundsPerSec float64       `json:"rounds_per_sec"`

	// JSON-friendly microsecond fields.
	MinUs      float64 `json:"min_us"`
	MaxUs      float64 `json:"max_us"`
	MeanUs     float64 `json:"mean_us"`
	P50Us      float64 `json:"p50_us"`
	P90Us      float64 `json:"p90_us"`
	P99Us      float64 `json:"p99_us"`
	P999Us     float64 `json:"p999_us"`
	DurationMs float64 `json:"duration_ms"`
}

func NewCollector() *Collector {
	// Track latencies from 1ns up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, int64(time.Minute), 3)
	return &Collector{hist: h}
}

// Record adds one round's latency to the histogram.
func (c *Collector) Record(latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ns := latency.Nanoseconds()
	if ns < c.hist.LowestTrackableValue() {
		ns = c.hist.LowestTrackableValue()
	}
	if ns > c.hist.HighestTrackableValue() {
		ns = c.hist.HighestTrackableValue()
	}
	_ = c.hist.RecordValue(ns)
	c.sum += latency

	if c.min == 0 || latency < c.min {
		c.min = latency
	}
	if latency > c.max {
		c.max = latency
	}
}

// Stats computes and returns the current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hist.TotalCount()
	stats := Stats{
		Samples: total,
		Min:     c.min,
		Max:     c.max,
	}

	if total > 0 {
		stats.Mean = time.Duration(int64(c.sum) / total)
		stats.P50 = time.Duration(c.hist.ValueAtQuantile(50))
		stats.P90 = time.Duration(c.hist.ValueAtQuantile(90))
		stats.P99 = time.Duration(c.hist.ValueAtQuantile(99))
		stats.P999 = time.Duration(c.hist.ValueAtQuantile(99.9))
	}

	stats.MinUs = float64(stats.Min) / float64(time.Microsecond)
	stats.MaxUs = float64(stats.Max) / float64(time.Microsecond)
	stats.MeanUs = float64(stats.Mean) / float64(time.Microsecond)
	stats.P50Us = float64(stats.P50) / float64(time.Microsecond)
	stats.P90Us = float64(stats.P90) / float64(time.Microsecond)
	stats.P99Us = float64(stats.P99) / float64(time.Microsecond)
	stats.P999Us = float64(stats.P999) / float64(time.Microsecond)

	stats.Duration = elapsed
	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	if elapsed > 0 && total > 0 {
		stats.RoundsPerSec = float64(total) / elapsed.Seconds()
	}

	return stats
}
