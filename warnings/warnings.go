// Package warnings defines the non-fatal data-quality conditions reported
// by the waitlist normalizer. The engine never aborts on malformed rows;
// each condition renders as a human-readable warning string keyed to the
// 1-based row number in the input.
package warnings

import "fmt"

// RowWarning describes a row that was skipped or degraded during
// normalization, with context about where it occurred.
type RowWarning struct {
	Row    int
	Value  string
	Reason error
}

func (w *RowWarning) String() string {
	switch w.Reason {
	case ErrUnrecognizedBenchmark:
		return fmt.Sprintf("Row %d: unrecognized benchmark '%s'.", w.Row, w.Value)
	default:
		return fmt.Sprintf("Row %d: %v.", w.Row, w.Reason)
	}
}

// Reasons a row can be skipped, and the whole-input conditions.
var (
	ErrUnrecognizedBenchmark = fmt.Errorf("unrecognized benchmark")
	ErrMissingTimeToTarget   = fmt.Errorf("missing time-to-target or duration")
)

// EmptyInput is the single warning emitted for input with no rows at all.
const EmptyInput = "CSV is empty."

// SynthesizedKeys is the single summary warning emitted when the header
// carries neither a source_key nor a case_num column.
const SynthesizedKeys = "No source_key or case_num column found; generated row-based keys."
