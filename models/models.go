package models

// BenchmarkClasses is the fixed ordered set of clinical urgency buckets,
// in weeks. Normalization snaps every parsed benchmark to one of these.
var BenchmarkClasses = []int{2, 4, 6, 12, 26}

// ClinicalFlags is an open mapping from clinical-flag name (e.g. "osa",
// "diabetes") to boolean. Only registered flag names are populated during
// normalization, but the hosting layer may add further names via overrides.
type ClinicalFlags map[string]bool

// Case represents one pending procedure after normalization.
// Instances are immutable in the engine; overrides produce a new Case.
type Case struct {
	CaseID           string `json:"case_id"`
	SourceKey        string `json:"source_key"`
	BenchmarkWeeks   int    `json:"benchmark_weeks"`
	TimeToTargetDays int    `json:"time_to_target_days"`
	// EstimatedDurationMin is the time the case occupies in a block.
	EstimatedDurationMin float64       `json:"estimated_duration_min"`
	SurgeonID            string        `json:"surgeon_id"`
	ProcedureName        string        `json:"procedure_name,omitempty"`
	Inpatient            bool          `json:"inpatient"`
	Flags                ClinicalFlags `json:"flags"`
}

// ScoredCase extends a Case with the values computed by one scoring pass.
// Scores depend on the day's candidate pool and block length, so they are
// recomputed for every day of a multi-date run.
type ScoredCase struct {
	Case
	UrgencyWeight int     `json:"urgency_weight"`
	OverdueDays   int     `json:"overdue_days"`
	RiskScore     float64 `json:"risk_score"`
	ValueScore    float64 `json:"value_score"`
}

// SlateResult is the outcome of optimizing one day's block.
type SlateResult struct {
	BlockMinutes      int     `json:"block_minutes"`
	BlockStartMinutes int     `json:"block_start_minutes"`
	TotalMinutes      float64 `json:"total_minutes"`
	UtilizationPct    float64 `json:"utilization_pct"`
	TotalRiskScore    float64 `json:"total_risk_score"`
	// UtilizationWeight is the weight that was used during scoring,
	// computed over the full candidate pool, not the selected subset.
	UtilizationWeight float64 `json:"utilization_weight"`
	// Selected is ordered by descending risk score, then ascending
	// time-to-target (more overdue first).
	Selected []ScoredCase `json:"selected"`
	// Remaining holds the unselected cases rescored against this day's
	// block. No ordering is guaranteed beyond input order.
	Remaining []ScoredCase `json:"remaining"`
}
