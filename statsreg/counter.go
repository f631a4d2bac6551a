package statsreg

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter is a scalar stats sink. prometheus.Counter values only ever
// increase, so "resetting" at end-of-warmup (spec.md section 8 invariant 7)
// is implemented as recording a baseline to subtract at read time rather
// than mutating the underlying collector.
type Counter struct {
	metric   prometheus.Counter
	baseline float64
}

func newCounter(name, help string) *Counter {
	return &Counter{
		metric: prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help}),
	}
}

// Inc increments the counter by 1.
func (c *Counter) Inc() { c.metric.Inc() }

// Add increments the counter by delta. delta must be non-negative, per the
// underlying prometheus.Counter contract.
func (c *Counter) Add(delta float64) { c.metric.Add(delta) }

// Value returns the counter's value since the last MarkWarmupComplete (or
// since creation, if warmup never completed).
func (c *Counter) Value() float64 {
	return readCounter(c.metric) - c.baseline
}

func (c *Counter) resetBaseline() {
	c.baseline = readCounter(c.metric)
}

func readCounter(m prometheus.Counter) float64 {
	var out dto.Metric
	_ = m.Write(&out)
	return out.GetCounter().GetValue()
}

// CounterVec is a scalar stats sink broken down by one label (e.g. one
// entry per channel).
type CounterVec struct {
	metric   *prometheus.CounterVec
	baseline map[string]float64
}

func newCounterVec(name, help, label string) *CounterVec {
	return &CounterVec{
		metric:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{label}),
		baseline: map[string]float64{},
	}
}

// WithLabel returns the per-label counter, e.g. ChannelReads.WithLabel("0").
func (cv *CounterVec) WithLabel(value string) *labeledCounter {
	return &labeledCounter{vec: cv, label: value}
}

// resetBaseline records every existing label's current value as its
// baseline, enumerating the labels through a full Collect(). A label first
// written after the reset has no baseline entry and counts from zero.
func (cv *CounterVec) resetBaseline() {
	cv.baseline = map[string]float64{}
	ch := make(chan prometheus.Metric)
	go func() {
		cv.metric.Collect(ch)
		close(ch)
	}()
	for m := range ch {
		var out dto.Metric
		_ = m.Write(&out)
		cv.baseline[labelString(&out)] = out.GetCounter().GetValue()
	}
}

type labeledCounter struct {
	vec   *CounterVec
	label string
}

func (l *labeledCounter) Inc() { l.vec.metric.WithLabelValues(l.label).Inc() }

func (l *labeledCounter) Value() float64 {
	raw := readCounter(l.vec.metric.WithLabelValues(l.label))
	return raw - l.vec.baseline[l.label]
}
