package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jpwcollins/SlateBuilderPro/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveBlock(t *testing.T) {
	tests := map[string]struct {
		date          time.Time
		expectedBlock int
		expectedStart int
	}{
		// March 2026 starts on a Sunday; Tuesdays fall on the 3rd, 10th,
		// 17th, 24th, and 31st.
		"FirstTuesday_FullBlock": {
			date:          date(2026, time.March, 3),
			expectedBlock: 480,
			expectedStart: 480,
		},
		"SecondTuesday_ReducedBlock": {
			date:          date(2026, time.March, 10),
			expectedBlock: 420,
			expectedStart: 540,
		},
		"ThirdTuesday_FullBlock": {
			date:          date(2026, time.March, 17),
			expectedBlock: 480,
			expectedStart: 480,
		},
		"FourthTuesday_ReducedBlock": {
			date:          date(2026, time.March, 24),
			expectedBlock: 420,
			expectedStart: 540,
		},
		"FifthTuesday_FullBlock": {
			date:          date(2026, time.March, 31),
			expectedBlock: 480,
			expectedStart: 480,
		},
		"Monday_FullBlock": {
			date:          date(2026, time.March, 9),
			expectedBlock: 480,
			expectedStart: 480,
		},
		"SecondWednesday_FullBlock": {
			date:          date(2026, time.March, 11),
			expectedBlock: 480,
			expectedStart: 480,
		},
		"Weekend_FullBlock": {
			date:          date(2026, time.March, 8),
			expectedBlock: 480,
			expectedStart: 480,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			block, start := calendar.ResolveBlock(tc.date)
			assert.Equal(t, tc.expectedBlock, block)
			assert.Equal(t, tc.expectedStart, start)
			assert.Equal(t, tc.expectedBlock, calendar.BlockMinutes(tc.date))
		})
	}
}

func TestResolveBlock_ReducedOnlySecondAndFourthOccurrence(t *testing.T) {
	// Sweep a full year of Tuesdays: the reduced block must fire for
	// exactly the 2nd and 4th occurrence within each month.
	d := date(2026, time.January, 1)
	for d.Weekday() != time.Tuesday {
		d = d.AddDate(0, 0, 1)
	}
	for d.Year() == 2026 {
		occurrence := (d.Day()-1)/7 + 1
		block, start := calendar.ResolveBlock(d)
		if occurrence == 2 || occurrence == 4 {
			assert.Equal(t, 420, block, "date %s occurrence %d", d, occurrence)
			assert.Equal(t, 540, start, "date %s occurrence %d", d, occurrence)
		} else {
			assert.Equal(t, 480, block, "date %s occurrence %d", d, occurrence)
			assert.Equal(t, 480, start, "date %s occurrence %d", d, occurrence)
		}
		d = d.AddDate(0, 0, 7)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[string]struct {
		minutes  int
		expected string
	}{
		"Midnight":      {0, "0000"},
		"EightAM":       {480, "0800"},
		"NineAM":        {540, "0900"},
		"FourPM":        {960, "1600"},
		"WithRemainder": {505, "0825"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, calendar.FormatMinutes(tc.minutes))
		})
	}
}
