package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are latency buckets in milliseconds. Page and API reads
// land in the low range; trending refreshes and provider calls in the tail.
var HistogramBuckets = []float64{
	5, 10, 25, 50, 100, 250, 500,
	1000, 2500, 5000,
	10000, 30000, 60000,
}

// Metric describes one collector: its kind (Type), name, help text and label
// names. ID is the key used by the gin middleware's metric list.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

var builders = map[string]func(m *Metric, subsystem string) prometheus.Collector{
	"counter_vec": func(m *Metric, subsystem string) prometheus.Collector {
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	},
	"counter": func(m *Metric, subsystem string) prometheus.Collector {
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	},
	"gauge": func(m *Metric, subsystem string) prometheus.Collector {
		return prometheus.NewGauge(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	},
	"histogram_vec": func(m *Metric, subsystem string) prometheus.Collector {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	},
	"summary_vec": func(m *Metric, subsystem string) prometheus.Collector {
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	},
}

// NewMetric builds the collector for m.Type. It panics on an unknown type,
// which only happens with a typo in a package-level definition.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	build, ok := builders[m.Type]
	if !ok {
		panic("metrics: unknown metric type " + m.Type)
	}
	return build(m, subsystem)
}

