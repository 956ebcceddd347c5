// Package parser normalizes heterogeneous waitlist extracts into canonical
// case records. Input is comma-separated tabular text with one header row;
// column names are aliased onto a canonical vocabulary, missing fields are
// derived through fallback chains, and malformed rows degrade into
// warnings rather than errors.
package parser

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jpwcollins/SlateBuilderPro/models"
	"github.com/jpwcollins/SlateBuilderPro/warnings"
)

// headerAliases maps normalized raw header names onto the canonical column
// vocabulary. Unknown headers pass through unchanged and are ignored.
var headerAliases = map[string]string{
	"source_key":             "source_key",
	"sourcekey":              "source_key",
	"patient_key":            "source_key",
	"patient_identifier":     "source_key",
	"benchmark":              "benchmark",
	"benchmark_weeks":        "benchmark",
	"benchmark_time":         "benchmark",
	"target_time":            "target_time",
	"time_to_target":         "time_to_target_days",
	"time_to_target_days":    "time_to_target_days",
	"ttt_days":               "time_to_target_days",
	"time_waiting":           "time_waiting_days",
	"time_waiting_days":      "time_waiting_days",
	"time_waiting_weeks":     "time_waiting_weeks",
	"target_time_weeks":      "target_time_weeks",
	"target_time_week":       "target_time_weeks",
	"target_weeks":           "target_time_weeks",
	"elos":                   "elos",
	"estimated_duration_min": "estimated_duration_min",
	"duration_min":           "estimated_duration_min",
	"est_duration_min":       "estimated_duration_min",
	"surgeon_id":             "surgeon_id",
	"surgeon":                "surgeon_id",
	"surgeon_desc":           "procedure_name",
	"surg_desc":              "procedure_name",
	"proc_code":              "procedure_code",
	"proc_desc":              "procedure_name",
	"procedure":              "procedure_name",
	"procedure_name":         "procedure_name",
	"procedure_desc":         "procedure_name",
	"surg_desc_name":         "procedure_name",
	"osa":                    "osa",
	"diabetes":               "diabetes",
}

// flagColumns are the clinical-flag columns populated during normalization.
var flagColumns = []string{"osa", "diabetes"}

// durationKeywords infer an estimated duration from the procedure name
// when no explicit duration column is present. Checked in order; first
// case-insensitive substring match wins.
var durationKeywords = []struct {
	substr  string
	minutes float64
}{
	{"hysterectomy", 180},
	{"hysteroscop", 60},
	{"laparoscop", 90},
}

const (
	defaultDurationMin = 60
	unknownSurgeonID   = "UNKNOWN"
	caseLabelPrefix    = "Patient "
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	headerStripRe = regexp.MustCompile(`[^a-z0-9_]`)
	numberTokenRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	numberCleanRe = regexp.MustCompile(`[^0-9.-]`)
)

// Result holds the normalized cases and the warnings produced while
// deriving them. Warnings reference 1-based row numbers over the
// non-blank lines of the input (the header is row 1).
type Result struct {
	Cases    []models.Case
	Warnings []string
}

// Parse reads tabular waitlist text and normalizes it into canonical
// cases. It never fails on malformed rows; the only error condition is a
// failure to read from r.
func Parse(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return ParseText(string(raw)), nil
}

// ParseText normalizes tabular waitlist text already held in memory.
func ParseText(text string) *Result {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			lines = append(lines, line)
		}
	}

	res := &Result{}
	if len(lines) == 0 {
		res.Warnings = append(res.Warnings, warnings.EmptyInput)
		return res
	}

	rawHeader := splitLine(lines[0])
	header := make([]string, len(rawHeader))
	for i, h := range rawHeader {
		name := normalizeHeader(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		header[i] = name
	}

	for i := 1; i < len(lines); i++ {
		row := splitLine(lines[i])

		record := make(map[string]string, len(header))
		for c, name := range header {
			value := ""
			if c < len(row) {
				value = strings.TrimSpace(row[c])
			}
			record[name] = value
		}
		if allEmpty(record) {
			continue
		}

		if c, w := normalizeRow(record, i); w != nil {
			res.Warnings = append(res.Warnings, w.String())
		} else if c != nil {
			res.Cases = append(res.Cases, *c)
		}
	}

	if !contains(header, "source_key") && !contains(header, "case_num") {
		res.Warnings = append(res.Warnings, warnings.SynthesizedKeys)
	}
	return res
}

// normalizeRow derives one canonical case from a record. A nil, nil return
// means the row was silently dropped (no benchmark-like field at all).
func normalizeRow(record map[string]string, rowIdx int) (*models.Case, *warnings.RowWarning) {
	rawID := record["source_key"]
	if rawID == "" {
		rawID = record["case_num"]
	}
	if rawID == "" {
		rawID = fmt.Sprintf("row-%d", rowIdx)
	}
	sourceKey := caseLabelPrefix + rawID

	benchmarkRaw := firstNonEmpty(record["benchmark"], record["target_time_weeks"], record["target_time"])
	if benchmarkRaw == "" &&
		record["time_to_target_days"] == "" &&
		record["time_waiting_days"] == "" &&
		record["time_waiting_weeks"] == "" {
		return nil, nil
	}
	benchmarkWeeks, ok := parseBenchmarkWeeks(benchmarkRaw)
	if !ok {
		return nil, &warnings.RowWarning{Row: rowIdx + 1, Value: benchmarkRaw, Reason: warnings.ErrUnrecognizedBenchmark}
	}

	timeToTarget := parseNumber(record["time_to_target_days"])
	timeWaitingDays := parseNumber(record["time_waiting_days"])
	timeWaitingWeeks := parseNumber(record["time_waiting_weeks"])
	targetWeeks := parseNumber(firstNonEmpty(record["target_time_weeks"], record["target_time"]))

	switch {
	case finite(timeToTarget):
		// explicit column wins
	case finite(timeWaitingDays):
		timeToTarget = float64(benchmarkWeeks)*7 - timeWaitingDays
	case finite(timeWaitingWeeks):
		timeToTarget = float64(benchmarkWeeks)*7 - timeWaitingWeeks*7
	case finite(targetWeeks) && finite(timeWaitingWeeks):
		timeToTarget = targetWeeks*7 - timeWaitingWeeks*7
	}

	procedureName := record["procedure_name"]
	duration := parseNumber(record["estimated_duration_min"])
	if !finite(duration) {
		duration = inferDuration(procedureName)
		if !finite(duration) {
			duration = defaultDurationMin
		}
	}

	if !finite(timeToTarget) || !finite(duration) {
		return nil, &warnings.RowWarning{Row: rowIdx + 1, Reason: warnings.ErrMissingTimeToTarget}
	}

	surgeonID := record["surgeon_id"]
	if surgeonID == "" {
		surgeonID = unknownSurgeonID
	}

	elos := parseNumber(record["elos"])
	inpatient := finite(elos) && elos >= 1

	flags := models.ClinicalFlags{}
	for _, name := range flagColumns {
		if value, ok := record[name]; ok {
			flags[name] = parseBool(value)
		}
	}

	return &models.Case{
		CaseID:               sourceKey,
		SourceKey:            sourceKey,
		BenchmarkWeeks:       benchmarkWeeks,
		TimeToTargetDays:     int(math.Floor(timeToTarget + 0.5)),
		EstimatedDurationMin: duration,
		SurgeonID:            surgeonID,
		ProcedureName:        procedureName,
		Inpatient:            inpatient,
		Flags:                flags,
	}, nil
}

// splitLine splits one comma-separated line honoring double-quote
// escaping: a doubled quote inside a quoted field is a literal quote.
func splitLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	result = append(result, current.String())
	return result
}

func normalizeHeader(value string) string {
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(strings.TrimSpace(value))
	value = whitespaceRe.ReplaceAllString(value, "_")
	return headerStripRe.ReplaceAllString(value, "")
}

// parseBenchmarkWeeks extracts the first numeric token from a benchmark
// field and snaps it to the nearest benchmark class. Values carrying a
// days unit, or exceeding the largest class, are converted to weeks.
// Ties snap to the lower class.
func parseBenchmarkWeeks(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	normalized := whitespaceRe.ReplaceAllString(strings.ToLower(value), "")
	token := numberTokenRe.FindString(normalized)
	if token == "" {
		return 0, false
	}
	weeks, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	daysUnit := strings.Contains(normalized, "day") || strings.HasSuffix(normalized, "d")
	if daysUnit || weeks > 26 {
		weeks /= 7
	}

	nearest := models.BenchmarkClasses[0]
	for _, class := range models.BenchmarkClasses[1:] {
		if math.Abs(float64(class)-weeks) < math.Abs(float64(nearest)-weeks) {
			nearest = class
		}
	}
	return nearest, true
}

// parseNumber strips everything except digits, minus signs, and decimal
// points before conversion. A field yielding no valid number is NaN, not
// zero.
func parseNumber(value string) float64 {
	if value == "" {
		return math.NaN()
	}
	cleaned := numberCleanRe.ReplaceAllString(value, "")
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func inferDuration(name string) float64 {
	normalized := strings.ToLower(name)
	for _, kw := range durationKeywords {
		if strings.Contains(normalized, kw.substr) {
			return kw.minutes
		}
	}
	return math.NaN()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func allEmpty(record map[string]string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func contains(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}
