package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for stock operations.
type Metrics struct {
	StockOperations *prometheus.CounterVec
	LedgerEntries   *prometheus.CounterVec
	Compensations   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StockOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_stock_operations_total",
			Help: "Stock operations by kind and outcome.",
		}, []string{"operation", "status"}),
		LedgerEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_ledger_entries_total",
			Help: "Movement ledger entries written, by movement type.",
		}, []string{"type"}),
		Compensations: factory.NewCounter(prometheus.CounterOpts{
			Name: "inventory_ledger_compensations_total",
			Help: "Compensating deletes issued after a failed store update.",
		}),
	}
}
