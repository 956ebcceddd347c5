package formatter_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jpwcollins/SlateBuilderPro/formatter"
	"github.com/jpwcollins/SlateBuilderPro/models"
	"github.com/jpwcollins/SlateBuilderPro/optimizer"
	"github.com/jpwcollins/SlateBuilderPro/parser"
)

func scoredCase(id string, weeks, ttt int, duration float64, risk float64) models.ScoredCase {
	return models.ScoredCase{
		Case: models.Case{
			CaseID:               id,
			SourceKey:            id,
			BenchmarkWeeks:       weeks,
			TimeToTargetDays:     ttt,
			EstimatedDurationMin: duration,
			SurgeonID:            "DR001",
			Flags:                models.ClinicalFlags{},
		},
		RiskScore: risk,
	}
}

func TestPriorityModeValid(t *testing.T) {
	assert.True(t, formatter.PriorityTimeToTarget.Valid())
	assert.True(t, formatter.PriorityUrgencyThenTTT.Valid())
	assert.False(t, formatter.PriorityMode("by_vibes").Valid())
}

func TestSortScored(t *testing.T) {
	items := []models.ScoredCase{
		scoredCase("lateTwelve", 12, -10, 60, 0),
		scoredCase("earlyTwo", 2, 20, 60, 0),
		scoredCase("lateTwo", 2, 30, 60, 0),
	}

	tests := map[string]struct {
		mode     formatter.PriorityMode
		expected []string
	}{
		"TimeToTargetOnly": {
			mode:     formatter.PriorityTimeToTarget,
			expected: []string{"lateTwelve", "earlyTwo", "lateTwo"},
		},
		"UrgencyClassFirst": {
			mode:     formatter.PriorityUrgencyThenTTT,
			expected: []string{"earlyTwo", "lateTwo", "lateTwelve"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			sorted := formatter.SortScored(items, tc.mode)
			ids := make([]string, len(sorted))
			for i, item := range sorted {
				ids[i] = item.CaseID
			}
			assert.Equal(t, tc.expected, ids)
			// Input order untouched.
			assert.Equal(t, "lateTwelve", items[0].CaseID)
		})
	}
}

func TestFilterBySurgeon(t *testing.T) {
	cases := []models.Case{
		{CaseID: "a", SurgeonID: "DR001"},
		{CaseID: "b", SurgeonID: "DR002"},
		{CaseID: "c", SurgeonID: "DR001"},
	}
	filtered := formatter.FilterBySurgeon(cases, "DR001")
	assert.Len(t, filtered, 2)
	assert.Equal(t, cases, formatter.FilterBySurgeon(cases, ""))
	assert.Equal(t, []string{"DR001", "DR002"}, formatter.Surgeons(cases))
}

func TestBuildSchedule(t *testing.T) {
	items := []models.ScoredCase{
		scoredCase("first", 2, 0, 90, 0),
		scoredCase("second", 4, 0, 60.4, 0),
		scoredCase("third", 6, 0, 30, 0),
	}
	entries := formatter.BuildSchedule(items, 480)
	if assert.Len(t, entries, 3) {
		assert.Equal(t, 1, entries[0].Order)
		assert.Equal(t, 480, entries[0].Start)
		assert.Equal(t, 570, entries[0].End)
		// Durations are rounded to whole minutes when walking the day.
		assert.Equal(t, 570, entries[1].Start)
		assert.Equal(t, 630, entries[1].End)
		assert.Equal(t, 630, entries[2].Start)
		assert.Equal(t, 660, entries[2].End)
	}
}

func TestSlateCSV(t *testing.T) {
	items := []models.ScoredCase{
		{
			Case: models.Case{
				CaseID:               "Patient A123",
				SourceKey:            "Patient A123",
				BenchmarkWeeks:       2,
				TimeToTargetDays:     -4,
				EstimatedDurationMin: 90,
				SurgeonID:            "DR001",
				ProcedureName:        "Laparoscopic Myomectomy",
				Inpatient:            false,
				Flags:                models.ClinicalFlags{"osa": true, "diabetes": false},
			},
			RiskScore: 5.714285714285714,
		},
		{
			Case: models.Case{
				CaseID:               "Patient B456",
				SourceKey:            "Patient B456",
				BenchmarkWeeks:       6,
				TimeToTargetDays:     10,
				EstimatedDurationMin: 120,
				SurgeonID:            "DR001",
				ProcedureName:        "Hysteroscopy",
				Inpatient:            true,
				Flags:                models.ClinicalFlags{},
			},
			RiskScore: 3,
		},
	}

	got := formatter.SlateCSV(items, 480)
	expected := strings.Join([]string{
		"order,case_id,start_time,end_time,patient_type,procedure_name,benchmark_weeks,time_to_target_days,estimated_duration_min,surgeon_id,osa,diabetes,risk_score",
		"1,Patient A123,0800,0930,Day Case,Laparoscopic Myomectomy,2,-4,90,DR001,yes,no,5.71",
		"2,Patient B456,0930,1130,Inpatient,Hysteroscopy,6,10,120,DR001,no,no,3.00",
		"",
	}, "\n")
	assert.Equal(t, expected, got)
}

func TestMappingCSV(t *testing.T) {
	items := []models.ScoredCase{
		scoredCase("Patient A123", 2, 0, 90, 0),
	}

	plain := formatter.MappingCSV(items, "")
	assert.Equal(t, "case_id,source_key\nPatient A123,Patient A123\n", plain)

	hashed := formatter.MappingCSV(items, "clinic")
	assert.Equal(t, "case_id,source_key\n01AC0TMN,Patient A123\n", hashed)
}

func TestPriorityCSV(t *testing.T) {
	cases := []models.Case{
		{CaseID: "slow", BenchmarkWeeks: 26, TimeToTargetDays: 100, EstimatedDurationMin: 60, SurgeonID: "DR001"},
		{CaseID: "urgent", BenchmarkWeeks: 2, TimeToTargetDays: -3, EstimatedDurationMin: 90, SurgeonID: "DR002", Inpatient: true},
	}
	got := formatter.PriorityCSV(cases, formatter.PriorityUrgencyThenTTT)
	expected := strings.Join([]string{
		"order,case_id,patient_type,benchmark_weeks,time_to_target_days,estimated_duration_min,surgeon_id,procedure_name",
		"1,urgent,Inpatient,2,-3,90,DR002,",
		"2,slow,Day Case,26,100,60,DR001,",
		"",
	}, "\n")
	assert.Equal(t, expected, got)
}

func TestTemplateParses(t *testing.T) {
	result := parser.ParseText(formatter.Template())
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Cases, 2)
}

func TestFormatText(t *testing.T) {
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	cases := []models.Case{
		{CaseID: "Patient A123", SourceKey: "Patient A123", BenchmarkWeeks: 2, TimeToTargetDays: -4,
			EstimatedDurationMin: 90, SurgeonID: "DR001", Flags: models.ClinicalFlags{}},
	}
	results := optimizer.AllocateDates(cases, []time.Time{day})
	views := formatter.BuildViews(results, []time.Time{day}, formatter.PriorityUrgencyThenTTT)

	text := formatter.FormatText(views)
	assert.Contains(t, text, "2026-03-09 slate 1 : block=0800-1600 (480 min)")
	assert.Contains(t, text, "1. 0800-0930 Patient A123 [2w, ttt=-4d]")
	assert.Contains(t, text, "remaining=0")

	assert.Equal(t, "no slates produced\n", formatter.FormatText(nil))
}

func TestFormatJSONDeterministic(t *testing.T) {
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	input := formatter.Template()

	render := func() string {
		result := parser.ParseText(input)
		results := optimizer.AllocateDates(result.Cases, []time.Time{day})
		views := formatter.BuildViews(results, []time.Time{day}, formatter.PriorityUrgencyThenTTT)
		return formatter.FormatJSON(views)
	}
	first := render()
	assert.Equal(t, first, render())
	assert.Contains(t, first, `"date": "2026-03-09"`)
}

func TestFormatCSVIncludesSlateAndDate(t *testing.T) {
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	cases := []models.Case{
		{CaseID: "Patient A123", SourceKey: "Patient A123", BenchmarkWeeks: 2, TimeToTargetDays: -4,
			EstimatedDurationMin: 90, SurgeonID: "DR001", Flags: models.ClinicalFlags{}},
	}
	results := optimizer.AllocateDates(cases, []time.Time{day})
	views := formatter.BuildViews(results, []time.Time{day}, formatter.PriorityUrgencyThenTTT)

	got := formatter.FormatCSV(views)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if assert.Len(t, lines, 2) {
		assert.True(t, strings.HasPrefix(lines[0], "slate,date,order,"))
		assert.True(t, strings.HasPrefix(lines[1], "1,2026-03-09,1,Patient A123,"))
	}
}
