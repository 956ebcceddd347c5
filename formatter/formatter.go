// Package formatter renders allocation results for the hosting layer:
// operator-facing text, JSON, and the CSV exports (per-slate schedule,
// case-identifier mapping, priority waitlist, input template). It also
// owns the hosting-layer concerns that sit outside the engine proper:
// surgeon filtering and the two priority sort modes.
package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jpwcollins/SlateBuilderPro/calendar"
	"github.com/jpwcollins/SlateBuilderPro/models"
)

// PriorityMode selects the secondary ordering applied to exports. It
// never influences which cases the optimizer picks.
type PriorityMode string

const (
	// PriorityTimeToTarget orders by ascending time-to-target only.
	PriorityTimeToTarget PriorityMode = "ttt"
	// PriorityUrgencyThenTTT orders by benchmark class, then
	// time-to-target within a class.
	PriorityUrgencyThenTTT PriorityMode = "urgency_then_ttt"
)

// Valid reports whether m is a recognized priority mode.
func (m PriorityMode) Valid() bool {
	return m == PriorityTimeToTarget || m == PriorityUrgencyThenTTT
}

// SlateView pairs one day's result with its date and the export ordering
// of its selected cases.
type SlateView struct {
	Date    time.Time
	Result  models.SlateResult
	Ordered []models.ScoredCase
}

// BuildViews applies the priority mode to each result's selected cases.
// dates must be at least as long as results.
func BuildViews(results []models.SlateResult, dates []time.Time, mode PriorityMode) []SlateView {
	views := make([]SlateView, len(results))
	for i, result := range results {
		views[i] = SlateView{
			Date:    dates[i],
			Result:  result,
			Ordered: SortScored(result.Selected, mode),
		}
	}
	return views
}

// FilterBySurgeon keeps only the cases for one surgeon. An empty surgeon
// ID keeps everything.
func FilterBySurgeon(cases []models.Case, surgeonID string) []models.Case {
	if surgeonID == "" {
		return cases
	}
	var filtered []models.Case
	for _, c := range cases {
		if c.SurgeonID == surgeonID {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Surgeons returns the distinct surgeon IDs in a pool, sorted.
func Surgeons(cases []models.Case) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range cases {
		if !seen[c.SurgeonID] {
			seen[c.SurgeonID] = true
			ids = append(ids, c.SurgeonID)
		}
	}
	sort.Strings(ids)
	return ids
}

// SortCases returns a copy of cases ordered by the priority mode.
func SortCases(cases []models.Case, mode PriorityMode) []models.Case {
	out := append([]models.Case(nil), cases...)
	sort.SliceStable(out, func(a, b int) bool {
		return priorityLess(out[a], out[b], mode)
	})
	return out
}

// SortScored returns a copy of scored cases ordered by the priority mode.
func SortScored(cases []models.ScoredCase, mode PriorityMode) []models.ScoredCase {
	out := append([]models.ScoredCase(nil), cases...)
	sort.SliceStable(out, func(a, b int) bool {
		return priorityLess(out[a].Case, out[b].Case, mode)
	})
	return out
}

func priorityLess(a, b models.Case, mode PriorityMode) bool {
	if mode == PriorityTimeToTarget {
		return a.TimeToTargetDays < b.TimeToTargetDays
	}
	ra, rb := benchmarkRank(a.BenchmarkWeeks), benchmarkRank(b.BenchmarkWeeks)
	if ra != rb {
		return ra < rb
	}
	return a.TimeToTargetDays < b.TimeToTargetDays
}

func benchmarkRank(weeks int) int {
	for i, class := range models.BenchmarkClasses {
		if class == weeks {
			return i
		}
	}
	return len(models.BenchmarkClasses)
}

// ScheduleEntry is one booked case with its start and end offsets walked
// forward from the block start.
type ScheduleEntry struct {
	Order int
	Start int
	End   int
	Case  models.ScoredCase
}

// BuildSchedule lays the ordered cases end to end from the block start.
func BuildSchedule(items []models.ScoredCase, blockStartMinutes int) []ScheduleEntry {
	entries := make([]ScheduleEntry, len(items))
	cursor := blockStartMinutes
	for i, item := range items {
		end := cursor + int(math.Round(item.EstimatedDurationMin))
		entries[i] = ScheduleEntry{Order: i + 1, Start: cursor, End: end, Case: item}
		cursor = end
	}
	return entries
}

// FormatText returns a human-readable rendering of an allocation run.
func FormatText(views []SlateView) string {
	var sb strings.Builder
	if len(views) == 0 {
		sb.WriteString("no slates produced\n")
		return sb.String()
	}
	for i, view := range views {
		r := view.Result
		sb.WriteString(fmt.Sprintf("%s slate %d : block=%s-%s (%d min) ; selected=%d used=%smin util=%.1f%% risk=%.2f\n",
			view.Date.Format("2006-01-02"), i+1,
			calendar.FormatMinutes(r.BlockStartMinutes),
			calendar.FormatMinutes(r.BlockStartMinutes+r.BlockMinutes),
			r.BlockMinutes, len(r.Selected), formatMinutesValue(r.TotalMinutes),
			r.UtilizationPct, r.TotalRiskScore))
		for _, entry := range BuildSchedule(view.Ordered, r.BlockStartMinutes) {
			c := entry.Case
			sb.WriteString(fmt.Sprintf("  %d. %s-%s %s [%dw, ttt=%dd] %s %s risk=%.2f\n",
				entry.Order, calendar.FormatMinutes(entry.Start), calendar.FormatMinutes(entry.End),
				c.CaseID, c.BenchmarkWeeks, c.TimeToTargetDays,
				patientType(c.Inpatient), c.SurgeonID, c.RiskScore))
		}
		sb.WriteString(fmt.Sprintf("  remaining=%d\n", len(r.Remaining)))
	}
	return sb.String()
}

type slateJSON struct {
	Date     string              `json:"date"`
	Result   models.SlateResult  `json:"result"`
	Schedule []scheduleEntryJSON `json:"schedule"`
}

type scheduleEntryJSON struct {
	Order  int               `json:"order"`
	Start  string            `json:"start_time"`
	End    string            `json:"end_time"`
	CaseID string            `json:"case_id"`
	Detail models.ScoredCase `json:"detail"`
}

// FormatJSON returns the JSON rendering of an allocation run.
func FormatJSON(views []SlateView) string {
	out := make([]slateJSON, len(views))
	for i, view := range views {
		entries := BuildSchedule(view.Ordered, view.Result.BlockStartMinutes)
		schedule := make([]scheduleEntryJSON, len(entries))
		for j, entry := range entries {
			schedule[j] = scheduleEntryJSON{
				Order:  entry.Order,
				Start:  calendar.FormatMinutes(entry.Start),
				End:    calendar.FormatMinutes(entry.End),
				CaseID: entry.Case.CaseID,
				Detail: entry.Case,
			}
		}
		out[i] = slateJSON{
			Date:     view.Date.Format("2006-01-02"),
			Result:   view.Result,
			Schedule: schedule,
		}
	}
	jsonBytes, _ := json.MarshalIndent(out, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the CSV rendering of an allocation run: all slates in
// one table with slate and date columns prepended to the schedule rows.
func FormatCSV(views []SlateView) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write(append([]string{"slate", "date"}, slateHeader...))
	for i, view := range views {
		for _, entry := range BuildSchedule(view.Ordered, view.Result.BlockStartMinutes) {
			row := append([]string{
				strconv.Itoa(i + 1),
				view.Date.Format("2006-01-02"),
			}, slateRow(entry)...)
			writer.Write(row)
		}
	}
	writer.Flush()
	return sb.String()
}

var slateHeader = []string{
	"order",
	"case_id",
	"start_time",
	"end_time",
	"patient_type",
	"procedure_name",
	"benchmark_weeks",
	"time_to_target_days",
	"estimated_duration_min",
	"surgeon_id",
	"osa",
	"diabetes",
	"risk_score",
}

func slateRow(entry ScheduleEntry) []string {
	c := entry.Case
	return []string{
		strconv.Itoa(entry.Order),
		c.CaseID,
		calendar.FormatMinutes(entry.Start),
		calendar.FormatMinutes(entry.End),
		patientType(c.Inpatient),
		c.ProcedureName,
		strconv.Itoa(c.BenchmarkWeeks),
		strconv.Itoa(c.TimeToTargetDays),
		formatMinutesValue(c.EstimatedDurationMin),
		c.SurgeonID,
		yesNo(c.Flags["osa"]),
		yesNo(c.Flags["diabetes"]),
		fmt.Sprintf("%.2f", c.RiskScore),
	}
}

// SlateCSV renders one slate's schedule as a standalone CSV document.
func SlateCSV(items []models.ScoredCase, blockStartMinutes int) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write(slateHeader)
	for _, entry := range BuildSchedule(items, blockStartMinutes) {
		writer.Write(slateRow(entry))
	}
	writer.Flush()
	return sb.String()
}

// MappingCSV renders the case-to-source-key mapping for one slate. A
// non-empty secret replaces displayed case IDs with de-identified hash
// tokens so the mapping can travel separately from the schedule.
func MappingCSV(items []models.ScoredCase, secret string) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{"case_id", "source_key"})
	for _, item := range items {
		id := item.CaseID
		if secret != "" {
			id = models.HashCaseID(secret, item.SourceKey)
		}
		writer.Write([]string{id, item.SourceKey})
	}
	writer.Flush()
	return sb.String()
}

// PriorityCSV renders the full waitlist in priority order, independent of
// any slate selection.
func PriorityCSV(cases []models.Case, mode PriorityMode) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"order",
		"case_id",
		"patient_type",
		"benchmark_weeks",
		"time_to_target_days",
		"estimated_duration_min",
		"surgeon_id",
		"procedure_name",
	})
	for i, c := range SortCases(cases, mode) {
		writer.Write([]string{
			strconv.Itoa(i + 1),
			c.CaseID,
			patientType(c.Inpatient),
			strconv.Itoa(c.BenchmarkWeeks),
			strconv.Itoa(c.TimeToTargetDays),
			formatMinutesValue(c.EstimatedDurationMin),
			c.SurgeonID,
			c.ProcedureName,
		})
	}
	writer.Flush()
	return sb.String()
}

// Template returns a minimal input sample with the recognized columns.
func Template() string {
	return strings.Join([]string{
		"source_key,benchmark,time_to_target_days,estimated_duration_min,surgeon_id,procedure_name,osa,diabetes",
		"A123,2w,10,90,DR001,Laparoscopic Myomectomy,yes,no",
		"B456,6w,-4,120,DR001,Hysteroscopy,no,yes",
	}, "\n")
}

func patientType(inpatient bool) string {
	if inpatient {
		return "Inpatient"
	}
	return "Day Case"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatMinutesValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
