package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache effectiveness per view method. Nil records nothing.
type Metrics struct {
	CacheLookups *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "eanft_catalog_cache_lookups_total",
			Help: "Catalog view cache lookups by method and result (hit, miss, error)",
		}, []string{"method", "result"}),
	}
}

func (m *Metrics) observeLookup(method, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(method, result).Inc()
}
