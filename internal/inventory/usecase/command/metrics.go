package command

import "github.com/prometheus/client_golang/prometheus"

var (
	adjustmentsDecided = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_adjustments_decided_total",
			Help: "Inventory adjustments approved or rejected",
		},
		[]string{"decision"},
	)

	ledgerEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_ledger_entries_total",
			Help: "Stock transactions appended by adjustment approval",
		},
		[]string{"direction"},
	)

	bulkItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_bulk_items_total",
			Help: "Tickets and check items processed by bulk operations",
		},
		[]string{"operation", "outcome"},
	)

	sequenceConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_sequence_conflicts_total",
			Help: "Retried persistence conflicts on generated codes",
		},
		[]string{"kind"},
	)

	unresolvedAlerts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_unresolved_alerts",
			Help: "Open low-stock and out-of-stock alerts",
		},
	)
)

func init() {
	prometheus.MustRegister(adjustmentsDecided)
	prometheus.MustRegister(ledgerEntries)
	prometheus.MustRegister(bulkItems)
	prometheus.MustRegister(sequenceConflicts)
	prometheus.MustRegister(unresolvedAlerts)
}
