package nasa

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spacerhq/spacer"
)

const namespace = "spacer"

// Metrics instruments Client. A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	itemsTotal      *prometheus.CounterVec
	repairsTotal    prometheus.Counter
}

// NewMetrics registers the client metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		requestsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests by outcome (ok or an error category).",
		}, []string{"outcome"}),
		requestDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Time spent on a search request, including decoding.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		itemsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_items_total",
			Help:      "Collection elements seen by the decoder, by result (direct, unwrapped or dropped).",
		}, []string{"result"}),
		repairsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_body_repairs_total",
			Help:      "Response bodies that only parsed after JSON repair.",
		}),
	}
}

func (m *Metrics) observeRequest(err error, took time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(CategoryOf(err))
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
	m.requestDuration.Observe(took.Seconds())
}

func (m *Metrics) observeStats(s spacer.Stats) {
	if m == nil {
		return
	}
	m.itemsTotal.WithLabelValues("direct").Add(float64(s.Direct))
	m.itemsTotal.WithLabelValues("unwrapped").Add(float64(s.Unwrapped))
	m.itemsTotal.WithLabelValues("dropped").Add(float64(s.Dropped))
}

func (m *Metrics) observeRepair() {
	if m == nil {
		return
	}
	m.repairsTotal.Inc()
}
