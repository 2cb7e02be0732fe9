package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsAppended *prometheus.CounterVec
	ValidationErrors     *prometheus.CounterVec
	RecordsLoaded        prometheus.Counter
	Balance              prometheus.Gauge

	// Persistence metrics
	PersistErrors *prometheus.CounterVec
}

// New creates all ledger metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsAppended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_appended_total",
				Help: "Total number of transactions appended by kind",
			},
			[]string{"kind"},
		),
		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_validation_errors_total",
				Help: "Total number of rejected inputs by reason",
			},
			[]string{"reason"},
		),
		RecordsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledger_records_loaded_total",
			Help: "Total number of records loaded from the backing file",
		}),
		Balance: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_balance",
			Help: "Current running balance",
		}),
		PersistErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_persist_errors_total",
				Help: "Total number of backing file failures by operation",
			},
			[]string{"op"},
		),
	}
}
