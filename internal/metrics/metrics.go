package metrics

import (
	"dropship-pricing-service/internal/pricing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CalculationsTotal counts seller prices computed, by pricing mode
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_calculations_total",
			Help: "Total number of seller price calculations",
		},
		[]string{"mode"},
	)

	// RulesAppliedTotal counts pricing rules applied, by rule type
	RulesAppliedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_rules_applied_total",
			Help: "Total number of pricing rule applications",
		},
		[]string{"type"},
	)

	BulkItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_bulk_items_total",
			Help: "Total number of bulk operation items by outcome",
		},
		[]string{"operation", "status"},
	)

	ConsistencyWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_consistency_warnings_total",
			Help: "Total number of tolerated data consistency problems",
		},
		[]string{"kind"},
	)

	CatalogMergeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_catalog_merge_duration_seconds",
			Help:    "Duration of seller catalog merges in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordWarnings counts each warning under its kind
func RecordWarnings(warnings []pricing.ConsistencyWarning) {
	for _, w := range warnings {
		ConsistencyWarningsTotal.WithLabelValues(string(w.Kind)).Inc()
	}
}
