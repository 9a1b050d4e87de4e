package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bartgrantham/gofm/rds"
)

// Line outcomes, used as the "outcome" label.
const (
	outcomeGroup    = "group"
	outcomeBitError = "bit_error"
	outcomeIgnored  = "ignored"
)

type metrics struct {
	lines     *prometheus.CounterVec
	groups    *prometheus.CounterVec
	ber       prometheus.Gauge
	piChanges prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	var factory = promauto.With(reg)

	return &metrics{
		lines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rds_lines_total",
				Help: "Raw group records received, by outcome",
			},
			[]string{"outcome"},
		),
		groups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rds_groups_total",
				Help: "Decoded groups by group type (0A, 0B, ... 15B)",
			},
			[]string{"group"},
		),
		ber: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rds_bit_error_rate_percent",
				Help: "Bit error rate over the last 40 records, -1 when unknown",
			},
		),
		piChanges: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rds_pi_changes_total",
				Help: "Confirmed station (PI) changes",
			},
		),
	}
}

func (m *metrics) observe(res rds.IngestResult) {
	m.lines.WithLabelValues(outcomeGroup).Add(float64(res.Groups))
	m.lines.WithLabelValues(outcomeBitError).Add(float64(res.BitErrors))
	m.lines.WithLabelValues(outcomeIgnored).Add(float64(res.Ignored))
}

func (m *metrics) group(code int) {
	m.groups.WithLabelValues(rds.GroupLabel(code)).Inc()
}
