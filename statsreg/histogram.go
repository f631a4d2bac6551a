package statsreg

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Histogram is the latency-distribution sink spec.md sections 2, 8
// (scenarios S1/S2) require: one bucketed distribution per named metric.
type Histogram struct {
	metric prometheus.Histogram

	baselineCount uint64
	baselineSum   float64
}

func newHistogram(name, help string, buckets []float64) *Histogram {
	return &Histogram{
		metric: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		}),
	}
}

// Observe records one latency sample.
func (h *Histogram) Observe(v float64) { h.metric.Observe(v) }

// Count returns the number of samples observed since the last
// MarkWarmupComplete.
func (h *Histogram) Count() uint64 {
	return readHistogram(h.metric).GetSampleCount() - h.baselineCount
}

// Sum returns the sum of observed samples since the last
// MarkWarmupComplete.
func (h *Histogram) Sum() float64 {
	return readHistogram(h.metric).GetSampleSum() - h.baselineSum
}

func (h *Histogram) resetBaseline() {
	snap := readHistogram(h.metric)
	h.baselineCount = snap.GetSampleCount()
	h.baselineSum = snap.GetSampleSum()
}

func readHistogram(m prometheus.Histogram) *dto.Histogram {
	var out dto.Metric
	_ = m.(prometheus.Metric).Write(&out)
	return out.GetHistogram()
}
