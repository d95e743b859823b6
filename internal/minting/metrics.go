package minting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records mint submissions. Nil records nothing.
type Metrics struct {
	Submissions *prometheus.CounterVec
	Deposits    prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eanft_mint_submissions_total",
			Help: "Mint transactions submitted, by outcome (success, failure)",
		}, []string{"outcome"}),
		Deposits: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "eanft_mint_deposit_near",
			Help:    "Deposit attached to successful mints, in NEAR",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 50, 100},
		}),
	}
}

func (m *Metrics) observe(success bool, deposit float64) {
	if m == nil {
		return
	}
	if !success {
		m.Submissions.WithLabelValues("failure").Inc()
		return
	}
	m.Submissions.WithLabelValues("success").Inc()
	m.Deposits.Observe(deposit)
}
