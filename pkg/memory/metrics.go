package memory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the buffer pool's prometheus instruments.
type Metrics struct {
	Hits          prometheus.Counter
	Misses        prometheus.Counter
	Evictions     prometheus.Counter
	Flushes       prometheus.Counter
	ResidentPages prometheus.Gauge
}

// NewMetrics creates the instruments and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "heapdb",
			Subsystem: "buffer_pool",
			Name:      "hits_total",
			Help:      "Page requests served from the cache.",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "heapdb",
			Subsystem: "buffer_pool",
			Name:      "misses_total",
			Help:      "Page requests that had to read from disk.",
		}),
		Evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "heapdb",
			Subsystem: "buffer_pool",
			Name:      "evictions_total",
			Help:      "Pages evicted to make room.",
		}),
		Flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "heapdb",
			Subsystem: "buffer_pool",
			Name:      "flushes_total",
			Help:      "Dirty pages written back to disk.",
		}),
		ResidentPages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "heapdb",
			Subsystem: "buffer_pool",
			Name:      "resident_pages",
			Help:      "Pages currently cached.",
		}),
	}
}
