package decision

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want Outcome
	}{
		{
			name: "first run persists and notifies unconditionally",
			in: Inputs{
				NewTotal:         dec(100),
				HasLast:          false,
				HasReported:      false,
				PersistThreshold: dec(1000),
				ReportThreshold:  dec(1000),
			},
			want: Outcome{Persist: true, Notify: true},
		},
		{
			name: "never reported forces notify even without movement",
			in: Inputs{
				NewTotal:         dec(100),
				LastTotal:        dec(100),
				HasLast:          true,
				HasReported:      false,
				PersistThreshold: dec(5),
				ReportThreshold:  dec(5),
			},
			want: Outcome{Persist: true, Notify: true},
		},
		{
			name: "report move above threshold notifies and forces persist",
			in: Inputs{
				NewTotal:     dec(103),
				LastTotal:    dec(103),
				HasLast:      true,
				LastReported: dec(100),
				HasReported:  true,
				// Persist would not fire on its own: |103-103| <= 10.
				PersistThreshold: dec(10),
				ReportThreshold:  dec(2),
			},
			want: Outcome{Persist: true, Notify: true},
		},
		{
			name: "report move below threshold leaves persistence to its own knob",
			in: Inputs{
				NewTotal:         dec(101),
				LastTotal:        dec(90),
				HasLast:          true,
				LastReported:     dec(100),
				HasReported:      true,
				PersistThreshold: dec(10),
				ReportThreshold:  dec(2),
			},
			want: Outcome{Persist: true, Notify: false},
		},
		{
			name: "no move at all persists nothing",
			in: Inputs{
				NewTotal:         dec(100),
				LastTotal:        dec(100),
				HasLast:          true,
				LastReported:     dec(100),
				HasReported:      true,
				PersistThreshold: dec(0),
				ReportThreshold:  dec(2),
			},
			want: Outcome{Persist: false, Notify: false},
		},
		{
			name: "move exactly at report threshold does not notify",
			in: Inputs{
				NewTotal:         dec(102),
				LastTotal:        dec(102),
				HasLast:          true,
				LastReported:     dec(100),
				HasReported:      true,
				PersistThreshold: dec(10),
				ReportThreshold:  dec(2),
			},
			want: Outcome{Persist: false, Notify: false},
		},
		{
			name: "downward move counts by absolute distance",
			in: Inputs{
				NewTotal:         dec(97),
				LastTotal:        dec(97),
				HasLast:          true,
				LastReported:     dec(100),
				HasReported:      true,
				PersistThreshold: dec(10),
				ReportThreshold:  dec(2),
			},
			want: Outcome{Persist: true, Notify: true},
		},
		{
			name: "silent persist when only persist threshold is crossed",
			in: Inputs{
				NewTotal:         dec(100.6),
				LastTotal:        dec(100),
				HasLast:          true,
				LastReported:     dec(100),
				HasReported:      true,
				PersistThreshold: dec(0.5),
				ReportThreshold:  dec(2),
			},
			want: Outcome{Persist: true, Notify: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Decide(tt.in))
		})
	}
}
