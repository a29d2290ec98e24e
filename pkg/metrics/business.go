package metrics

import "github.com/prometheus/client_golang/prometheus"

const subsystem = "blog"

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var metricCacheLookups = &Metric{
	ID:          "cacheLookups",
	Name:        "cache_lookups_total",
	Description: "Read-through cache lookups partitioned by key family and result.",
	Type:        "counter_vec",
	Args:        []string{"family", "result"},
}

var metricRealtimeEvents = &Metric{
	ID:          "realtimeEvents",
	Name:        "realtime_events_total",
	Description: "Realtime events delivered to or dropped for connected clients.",
	Type:        "counter_vec",
	Args:        []string{"type", "outcome"},
}

var metricRealtimeClients = &Metric{
	ID:          "realtimeClients",
	Name:        "realtime_clients",
	Description: "Currently connected realtime clients.",
	Type:        "gauge",
}

var metricOrderItems = &Metric{
	ID:          "orderItems",
	Name:        "order_items_total",
	Description: "Order item placements partitioned by outcome.",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

var (
	BusinessProcess = NewMetric(MetricsBusinessProcess, subsystem).(*prometheus.HistogramVec)
	CacheLookups    = NewMetric(metricCacheLookups, subsystem).(*prometheus.CounterVec)
	RealtimeEvents  = NewMetric(metricRealtimeEvents, subsystem).(*prometheus.CounterVec)
	RealtimeClients = NewMetric(metricRealtimeClients, subsystem).(prometheus.Gauge)
	OrderItems      = NewMetric(metricOrderItems, subsystem).(*prometheus.CounterVec)
)

func init() {
	prometheus.MustRegister(BusinessProcess, CacheLookups, RealtimeEvents, RealtimeClients, OrderItems)
}
