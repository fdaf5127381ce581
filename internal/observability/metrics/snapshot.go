package metrics

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// UpstreamSnapshot is a point-in-time read of the upstream counters,
// rendered on the admin dashboard.
type UpstreamSnapshot struct {
	Total  int64 `json:"total"`
	Errors int64 `json:"errors"`
}

// Snapshot gathers the registry and totals the upstream request counters.
func Snapshot(g prometheus.Gatherer) (UpstreamSnapshot, error) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return UpstreamSnapshot{}, fmt.Errorf("metrics: gather: %w", err)
	}

	var snap UpstreamSnapshot
	for _, fam := range families {
		if fam.GetName() != "pharmacy_upstream_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			count := int64(m.GetCounter().GetValue())
			snap.Total += count
			if isErrorStatus(m) {
				snap.Errors += count
			}
		}
	}
	return snap, nil
}

func isErrorStatus(m *dto.Metric) bool {
	for _, label := range m.GetLabel() {
		if label.GetName() != "status" {
			continue
		}
		v := label.GetValue()
		if v == "error" || strings.HasPrefix(v, "4") || strings.HasPrefix(v, "5") {
			return true
		}
	}
	return false
}
