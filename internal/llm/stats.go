package llm

import (
	"context"
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// OpSnapshot is a point-in-time aggregate of latency samples for one
// operation kind.
type OpSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Stats tracks recent provider call latencies within a rolling window, keyed
// by operation kind (embed, complete, summarize).
type Stats struct {
	mu      sync.Mutex
	samples map[string][]sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make(map[string][]sample),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(op string, d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[op] = pruneSamples(s.samples[op], now.Add(-s.maxAge))
	s.samples[op] = append(s.samples[op], sample{timestamp: now, durationMs: ms})
}

// Snapshot returns aggregates per operation kind. Operations with no samples
// inside the window are omitted.
func (s *Stats) Snapshot() map[string]OpSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]OpSnapshot, len(s.samples))
	for op, samples := range s.samples {
		samples = pruneSamples(samples, now.Add(-s.maxAge))
		s.samples[op] = samples
		if len(samples) == 0 {
			continue
		}

		values := make([]int64, 0, len(samples))
		var sum int64
		for _, sm := range samples {
			values = append(values, sm.durationMs)
			sum += sm.durationMs
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

		out[op] = OpSnapshot{
			Count: len(values),
			MinMs: values[0],
			MaxMs: values[len(values)-1],
			AvgMs: float64(sum) / float64(len(values)),
			P50Ms: percentile(values, 50),
			P95Ms: percentile(values, 95),
			P99Ms: percentile(values, 99),
		}
	}
	return out
}

func pruneSamples(samples []sample, cutoff time.Time) []sample {
	writeIdx := 0
	for _, sm := range samples {
		if !sm.timestamp.Before(cutoff) {
			samples[writeIdx] = sm
			writeIdx++
		}
	}
	return samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}

// instrumentedProvider wraps a Provider and records call latencies.
type instrumentedProvider struct {
	inner Provider
	stats *Stats
}

// Instrument returns a Provider that records latency samples for every call.
// A nil stats returns the provider unchanged.
func Instrument(p Provider, stats *Stats) Provider {
	if stats == nil {
		return p
	}
	return &instrumentedProvider{inner: p, stats: stats}
}

func (p *instrumentedProvider) Name() string { return p.inner.Name() }

func (p *instrumentedProvider) Embed(ctx context.Context, text string) (*EmbeddingResult, error) {
	start := time.Now()
	res, err := p.inner.Embed(ctx, text)
	if err == nil {
		p.stats.Record("embed", time.Since(start))
	}
	return res, err
}

func (p *instrumentedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := p.inner.Complete(ctx, prompt)
	if err == nil {
		p.stats.Record("complete", time.Since(start))
	}
	return out, err
}

func (p *instrumentedProvider) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	start := time.Now()
	out, err := p.inner.Summarize(ctx, text, maxWords)
	if err == nil {
		p.stats.Record("summarize", time.Since(start))
	}
	return out, err
}

func (p *instrumentedProvider) HealthCheck(ctx context.Context) error {
	return p.inner.HealthCheck(ctx)
}
