// Package statsreg is the statistics registry spec.md sections 2 and 6
// describe as an external collaborator: scalar/histogram sinks keyed by
// hierarchical names, a global "current cycle" counter, and a warmup gate.
// It is backed by a private github.com/prometheus/client_golang registry --
// the same metrics client ghjramos-aistore and the pack's other_examples
// repos use for exactly this kind of named counter/histogram sink -- rather
// than a hand-rolled map, even though the spec treats its implementation as
// mechanical glue.
package statsreg

import (
	"fmt"
	"io"
	"sort"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the process-wide stats sink plus the global cycle counter
// spec.md section 5 calls out as shared, single-threaded-safe-by-construction
// state.
type Registry struct {
	reg *prometheus.Registry

	counters   map[string]*Counter
	counterVec map[string]*CounterVec
	histograms map[string]*Histogram

	cycle uint64

	warmupComplete bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		reg:        prometheus.NewRegistry(),
		counters:   map[string]*Counter{},
		counterVec: map[string]*CounterVec{},
		histograms: map[string]*Histogram{},
	}
}

// Tick advances the global cycle counter by exactly one -- spec.md section
// 5: "the global cycle counter is advanced at exactly one point per tick
// loop of the driver; no component may mutate it [elsewhere]".
func (r *Registry) Tick() { r.cycle++ }

// Cycle returns the current global cycle count.
func (r *Registry) Cycle() uint64 { return r.cycle }

// MarkWarmupComplete flips the warmup gate and resets every registered
// scalar/histogram's visible value to its current reading, so that no
// pre-warmup activity contributes to post-warmup totals (spec.md section 8
// invariant 7). It mirrors Main.cpp's `Stats::reset_stats()` +
// `warmup_complete = true`.
func (r *Registry) MarkWarmupComplete() {
	r.warmupComplete = true
	for _, c := range r.counters {
		c.resetBaseline()
	}
	for _, cv := range r.counterVec {
		cv.resetBaseline()
	}
	for _, h := range r.histograms {
		h.resetBaseline()
	}
}

// WarmupComplete reports whether MarkWarmupComplete has been called.
func (r *Registry) WarmupComplete() bool { return r.warmupComplete }

// Counter registers (or returns the already-registered) scalar sink named
// name.
func (r *Registry) Counter(name, help string) *Counter {
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := newCounter(name, help)
	r.reg.MustRegister(c.metric)
	r.counters[name] = c
	return c
}

// CounterVec registers (or returns the already-registered) scalar sink
// named name, broken down by one label (e.g. "channel").
func (r *Registry) CounterVec(name, help, label string) *CounterVec {
	if c, ok := r.counterVec[name]; ok {
		return c
	}
	c := newCounterVec(name, help, label)
	r.reg.MustRegister(c.metric)
	r.counterVec[name] = c
	return c
}

// Histogram registers (or returns the already-registered) histogram sink
// named name -- used for the per-request latency distribution spec.md
// section 8 scenario S1/S2 require.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := newHistogram(name, help, buckets)
	r.reg.MustRegister(h.metric)
	r.histograms[name] = h
	return h
}

// PrintAll writes every registered scalar/histogram as "name value" lines,
// satisfying spec.md section 6's stats-output contract, sorted by name so
// output is byte-for-byte deterministic across runs (spec.md section 8
// invariant 6).
func (r *Registry) PrintAll(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("statsreg: gather: %w", err)
	}

	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	fmt.Fprintf(w, "cycle %d\n", r.cycle)

	for _, mf := range families {
		if err := printFamily(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func printFamily(w io.Writer, mf *dto.MetricFamily) error {
	name := mf.GetName()
	metrics := append([]*dto.Metric(nil), mf.GetMetric()...)
	sort.Slice(metrics, func(i, j int) bool {
		return labelString(metrics[i]) < labelString(metrics[j])
	})

	for _, m := range metrics {
		label := labelString(m)
		full := name
		if label != "" {
			full = name + "." + label
		}

		switch mf.GetType() {
		case dto.MetricType_COUNTER:
			if _, err := fmt.Fprintf(w, "%s %g %s\n", full, m.GetCounter().GetValue(), mf.GetHelp()); err != nil {
				return err
			}
		case dto.MetricType_HISTOGRAM:
			h := m.GetHistogram()
			if _, err := fmt.Fprintf(w, "%s.count %d %s\n", full, h.GetSampleCount(), mf.GetHelp()); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s.sum %g\n", full, h.GetSampleSum()); err != nil {
				return err
			}
			for _, b := range h.GetBucket() {
				if _, err := fmt.Fprintf(w, "%s.bucket[<=%g] %d\n", full, b.GetUpperBound(), b.GetCumulativeCount()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func labelString(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	return m.GetLabel()[0].GetValue()
}
