// Package metrics provides Prometheus observability metrics for the slate
// planner. The engine itself stays side-effect-free; the CLI records these
// after each normalization and allocation run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// SlatesProduced tracks the number of slates filled in the last run.
var SlatesProduced = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "slates_produced",
	Help:      "Number of slates filled by the last allocation run",
})

// CasesSelectedTotal tracks cases placed on a slate in the last run.
var CasesSelectedTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "cases_selected_total",
	Help:      "Total cases selected across all slates in the last run",
})

// CasesUnplacedTotal tracks cases left on the waitlist after the last run.
var CasesUnplacedTotal = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "cases_unplaced_total",
	Help:      "Cases still on the waitlist after the last allocation run",
})

// SlateUtilizationPct tracks block utilization per slate.
var SlateUtilizationPct = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "slate_utilization_pct",
	Help:      "Percentage of block minutes consumed, per slate",
}, []string{"slate"})

// SlateRiskScore tracks total clinical risk scheduled per slate.
var SlateRiskScore = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "slate_risk_score",
	Help:      "Total risk score of the selected cases, per slate",
}, []string{"slate"})

// OverdueCasesSelected tracks how many selected cases were past their
// benchmark deadline.
var OverdueCasesSelected = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "planner",
	Name:      "overdue_cases_selected",
	Help:      "Selected cases that were already past their benchmark deadline",
})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserRowsTotal tracks rows successfully normalized into cases.
var ParserRowsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "rows_total",
	Help:      "Total input rows successfully normalized into cases",
})

// ParserWarningsTotal tracks normalization warnings emitted.
var ParserWarningsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "warnings_total",
	Help:      "Total data-quality warnings emitted during normalization",
})

// ParserDurationSeconds tracks time to normalize input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to normalize the waitlist input",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// PlannerDurationSeconds tracks time to run the allocation.
var PlannerDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "planner",
	Name:      "duration_seconds",
	Help:      "Time taken to run the slate allocation",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// PlannerCasesConsidered tracks pool sizes per allocation run.
var PlannerCasesConsidered = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "planner",
	Name:      "cases_considered",
	Help:      "Number of candidate cases per allocation run",
	Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetPlannerGauges resets all planner gauges before a new run.
func ResetPlannerGauges() {
	SlatesProduced.Set(0)
	CasesSelectedTotal.Set(0)
	CasesUnplacedTotal.Set(0)
	OverdueCasesSelected.Set(0)
	SlateUtilizationPct.Reset()
	SlateRiskScore.Reset()
}
