// Package scorer converts canonical cases into scored cases. Scores mix a
// clinical risk term (urgency weight escalated by overdue days) with a
// utilization term that rewards filling the day's block, so they must be
// recomputed whenever the candidate pool or block length changes.
package scorer

import "github.com/jpwcollins/SlateBuilderPro/models"

// urgencyWeights maps benchmark class (weeks) to its urgency weight.
// Shorter benchmarks are clinically more urgent.
var urgencyWeights = map[int]int{
	2:  5,
	4:  4,
	6:  3,
	12: 2,
	26: 1,
}

const overdueEscalationDays = 14

// Score computes risk and value scores for a pool of cases against the
// given block length. Pure and total for finite inputs.
func Score(cases []models.Case, blockMinutes int) []models.ScoredCase {
	scored := make([]models.ScoredCase, len(cases))
	totalRisk := 0.0
	for i, c := range cases {
		weight, ok := urgencyWeights[c.BenchmarkWeeks]
		if !ok {
			weight = 1
		}
		overdue := 0
		if c.TimeToTargetDays < 0 {
			overdue = -c.TimeToTargetDays
		}
		risk := float64(weight) * (1 + float64(overdue)/overdueEscalationDays)
		scored[i] = models.ScoredCase{
			Case:          c,
			UrgencyWeight: weight,
			OverdueDays:   overdue,
			RiskScore:     risk,
		}
		totalRisk += risk
	}

	weight := UtilizationWeight(totalRisk, blockMinutes)
	for i := range scored {
		scored[i].ValueScore = scored[i].RiskScore + weight*scored[i].EstimatedDurationMin
	}
	return scored
}

// UtilizationWeight is the per-minute value of occupying block time,
// derived from the pool's total risk so that time utilization never
// dominates clinical urgency.
func UtilizationWeight(totalRisk float64, blockMinutes int) float64 {
	if totalRisk > 0 {
		return totalRisk / float64(blockMinutes)
	}
	return 1 / float64(blockMinutes)
}
