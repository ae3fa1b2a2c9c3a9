package metrics

import (
	"sort"
	"strings"

	dto "github.com/prometheus/client_model/go"
)

// Sample is one gathered metric value. Histograms are reported as their
// sample count and sum under Name+"_count" and Name+"_sum".
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Summary gathers all metrics that have been observed at least once,
// sorted by name and labels.
func (r *Registry) Summary() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out = appendNonZero(out, mf.GetName(), labels, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				out = appendNonZero(out, mf.GetName(), labels, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				if h.GetSampleCount() == 0 {
					continue
				}
				out = append(out,
					Sample{Name: mf.GetName() + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: mf.GetName() + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func appendNonZero(out []Sample, name, labels string, v float64) []Sample {
	if v == 0 {
		return out
	}
	return append(out, Sample{Name: name, Labels: labels, Value: v})
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.GetName() + "=" + p.GetValue()
	}
	return strings.Join(parts, ",")
}
