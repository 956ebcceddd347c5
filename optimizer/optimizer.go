// Package optimizer selects the cases that fill one or more operating-day
// blocks. A single day is a 0/1 knapsack over rounded case durations; the
// multi-date allocator runs the day optimizer repeatedly, draining the
// candidate pool so no case is scheduled twice.
package optimizer

import (
	"math"
	"sort"
	"time"

	"github.com/jpwcollins/SlateBuilderPro/calendar"
	"github.com/jpwcollins/SlateBuilderPro/models"
	"github.com/jpwcollins/SlateBuilderPro/scorer"
)

// OptimizeDay scores the candidate pool against the date's block and
// solves the value-maximizing selection. Ties in achievable value keep
// the earlier-considered solution, so output is deterministic for a given
// input order.
func OptimizeDay(cases []models.Case, date time.Time) models.SlateResult {
	blockMinutes, blockStart := calendar.ResolveBlock(date)
	scored := scorer.Score(cases, blockMinutes)

	durations := make([]int, len(scored))
	for i, item := range scored {
		durations[i] = int(math.Round(item.EstimatedDurationMin))
	}

	// dp[w] is the best achievable value with capacity w; keep[i][w]
	// records whether item i strictly improved the solution at w.
	dp := make([]float64, blockMinutes+1)
	keep := make([][]bool, len(scored))
	for i := range keep {
		keep[i] = make([]bool, blockMinutes+1)
	}

	for i, item := range scored {
		weight := durations[i]
		if weight < 0 {
			// Malformed durations can survive normalization; such a
			// case is never selectable.
			continue
		}
		for w := blockMinutes; w >= weight; w-- {
			candidate := dp[w-weight] + item.ValueScore
			if candidate > dp[w] {
				dp[w] = candidate
				keep[i][w] = true
			}
		}
	}

	// Walk items in reverse, following the strict-improvement trail.
	selectedIdx := make(map[int]bool)
	w := blockMinutes
	for i := len(scored) - 1; i >= 0; i-- {
		if keep[i][w] {
			selectedIdx[i] = true
			w -= durations[i]
		}
	}

	var selected, remaining []models.ScoredCase
	for i, item := range scored {
		if selectedIdx[i] {
			selected = append(selected, item)
		} else {
			remaining = append(remaining, item)
		}
	}
	sort.SliceStable(selected, func(a, b int) bool {
		if selected[a].RiskScore != selected[b].RiskScore {
			return selected[a].RiskScore > selected[b].RiskScore
		}
		return selected[a].TimeToTargetDays < selected[b].TimeToTargetDays
	})

	totalMinutes := 0.0
	totalRiskScore := 0.0
	for _, item := range selected {
		totalMinutes += item.EstimatedDurationMin
		totalRiskScore += item.RiskScore
	}
	utilizationPct := 0.0
	if blockMinutes > 0 {
		utilizationPct = totalMinutes / float64(blockMinutes) * 100
	}

	totalRiskAll := 0.0
	for _, item := range scored {
		totalRiskAll += item.RiskScore
	}

	return models.SlateResult{
		BlockMinutes:      blockMinutes,
		BlockStartMinutes: blockStart,
		TotalMinutes:      totalMinutes,
		UtilizationPct:    utilizationPct,
		TotalRiskScore:    totalRiskScore,
		UtilizationWeight: scorer.UtilizationWeight(totalRiskAll, blockMinutes),
		Selected:          selected,
		Remaining:         remaining,
	}
}

// AllocateDates fills the given dates in order from one candidate pool.
// It stops once the pool is empty or a day selects nothing; an empty day
// is never appended and later dates are not attempted. The final result's
// Remaining is rescored against the block of the last processed date.
func AllocateDates(cases []models.Case, dates []time.Time) []models.SlateResult {
	var results []models.SlateResult
	pool := append([]models.Case(nil), cases...)

	for _, date := range dates {
		if len(pool) == 0 {
			break
		}
		result := OptimizeDay(pool, date)
		if len(result.Selected) == 0 {
			break
		}
		results = append(results, result)
		pool = removeSelected(pool, result.Selected)
	}

	if len(results) > 0 {
		last := dates[len(results)-1]
		results[len(results)-1].Remaining = scorer.Score(pool, calendar.BlockMinutes(last))
	}
	return results
}

// OptimizeMultiple builds up to maxSlates slates for the same date,
// draining the pool between runs. Termination mirrors AllocateDates.
func OptimizeMultiple(cases []models.Case, date time.Time, maxSlates int) []models.SlateResult {
	var results []models.SlateResult
	pool := append([]models.Case(nil), cases...)

	for i := 0; i < maxSlates; i++ {
		if len(pool) == 0 {
			break
		}
		result := OptimizeDay(pool, date)
		if len(result.Selected) == 0 {
			break
		}
		results = append(results, result)
		pool = removeSelected(pool, result.Selected)
	}

	if len(results) > 0 {
		results[len(results)-1].Remaining = scorer.Score(pool, calendar.BlockMinutes(date))
	}
	return results
}

func removeSelected(pool []models.Case, selected []models.ScoredCase) []models.Case {
	taken := make(map[string]bool, len(selected))
	for _, item := range selected {
		taken[item.CaseID] = true
	}
	kept := pool[:0]
	for _, c := range pool {
		if !taken[c.CaseID] {
			kept = append(kept, c)
		}
	}
	return kept
}
