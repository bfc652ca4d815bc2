// Package decision holds the pure change-detection logic: given the freshly
// consolidated total and the persisted baselines, decide whether the total is
// written to history and whether an operator is notified. The two thresholds
// are independent knobs with independent baselines: persistence compares
// against the last persisted row, notification against the last row that
// actually reached an operator.
package decision

import "github.com/shopspring/decimal"

// Inputs are the baselines and thresholds one decision is made against.
// LastTotal and LastReported carry their own presence flags: HasLast is false
// on a first run (no history at all), HasReported is false while no
// notification has ever been sent.
type Inputs struct {
	NewTotal         decimal.Decimal
	LastTotal        decimal.Decimal
	HasLast          bool
	LastReported     decimal.Decimal
	HasReported      bool
	PersistThreshold decimal.Decimal
	ReportThreshold  decimal.Decimal
}

// Outcome says what to do with the new total.
type Outcome struct {
	Persist bool
	Notify  bool
}

// Decide applies the two-threshold, two-baseline rules:
//
//  1. No history at all: persist and notify, unconditionally.
//  2. History but never reported: notify is forced so a baseline gets
//     established; persistence follows the normal threshold path (and is
//     then forced by rule 4).
//  3. Notify when the distance to the last reported total exceeds the report
//     threshold.
//  4. A notified change is always persisted, so the reported baseline only
//     ever advances together with an actual notification.
//  5. Otherwise persist when the distance to the last persisted total
//     exceeds the persist threshold.
func Decide(in Inputs) Outcome {
	if !in.HasLast {
		return Outcome{Persist: true, Notify: true}
	}

	notify := !in.HasReported ||
		in.NewTotal.Sub(in.LastReported).Abs().GreaterThan(in.ReportThreshold)

	if notify {
		return Outcome{Persist: true, Notify: true}
	}

	persist := in.NewTotal.Sub(in.LastTotal).Abs().GreaterThan(in.PersistThreshold)

	return Outcome{Persist: persist, Notify: false}
}
