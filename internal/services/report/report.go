// Package report derives the presentation metrics for one poll cycle from
// the persisted history and the consolidated holdings.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avibrazil/balancemb/internal/domain"
)

// daysPerMonth is the approximation used when rendering the growth period.
const daysPerMonth = 30

// Report carries everything the notifiers interpolate into a message.
// Variation, PctChange and Growth are only meaningful when their guard flag
// is true; without a prior reported baseline (or with a zero baseline) the
// ratios are undefined and must not be rendered as numbers.
type Report struct {
	FiatSymbol string
	Holdings   []domain.ConsolidatedHolding

	Balance decimal.Decimal

	// Against the last reported baseline.
	HasBaseline bool
	Prev        decimal.Decimal
	Variation   decimal.Decimal
	HasRatios   bool
	PctChange   decimal.Decimal

	// Since the first snapshot ever recorded.
	HasGrowth    bool
	Growth       decimal.Decimal
	GrowthPeriod string
}

// Build computes the report for the latest entry of history, which is the
// current cycle's snapshot when it was persisted. The reported baseline is
// looked up strictly before the latest row: the row that triggered this very
// report must not become its own comparison point.
func Build(history domain.BalanceHistory, holdings []domain.ConsolidatedHolding, fiatSymbol string) Report {
	r := Report{
		FiatSymbol: fiatSymbol,
		Holdings:   holdings,
	}

	last, ok := history.Last()
	if !ok {
		return r
	}
	r.Balance = last.Total

	if prev, ok := history[:len(history)-1].LastReported(); ok {
		r.HasBaseline = true
		r.Prev = prev.Total
		r.Variation = r.Balance.Sub(r.Prev)
		if !r.Prev.IsZero() {
			r.HasRatios = true
			r.PctChange = r.Balance.Div(r.Prev).Sub(decimal.NewFromInt(1))
		}
	}

	if first, ok := history.First(); ok && !first.Total.IsZero() {
		r.HasGrowth = true
		r.Growth = r.Balance.Div(first.Total).Sub(decimal.NewFromInt(1))
		r.GrowthPeriod = formatPeriod(last.Time.Sub(first.Time))
	}

	return r
}

// formatPeriod renders an elapsed duration as whole months plus remainder
// days, with a month fixed at 30 days: 95 days becomes "3m5d".
func formatPeriod(elapsed time.Duration) string {
	days := int(elapsed.Hours() / 24)
	return fmt.Sprintf("%dm%dd", days/daysPerMonth, days%daysPerMonth)
}

// TextTable renders the holdings breakdown as a fixed-width table suitable
// for a monospace chat message.
func (r Report) TextTable() string {
	width := 0
	for _, h := range r.Holdings {
		if len(h.Symbol) > width {
			width = len(h.Symbol)
		}
	}

	var b strings.Builder
	for _, h := range r.Holdings {
		fmt.Fprintf(&b, "%-*s  %s %s\n", width, h.Symbol, FormatAmount(h.FiatValue), strings.ToUpper(r.FiatSymbol))
	}
	return strings.TrimRight(b.String(), "\n")
}

// HTMLTable renders the holdings breakdown as a right-aligned HTML table for
// the e-mail report.
func (r Report) HTMLTable() string {
	var b strings.Builder
	b.WriteString(`<table border="1">`)
	b.WriteString("<thead><tr><th>asset</th><th>total</th></tr></thead><tbody>")
	for _, h := range r.Holdings {
		fmt.Fprintf(&b, `<tr><td>%s</td><td style="text-align: right;">%s %s</td></tr>`,
			h.Symbol, FormatAmount(h.FiatValue), strings.ToUpper(r.FiatSymbol))
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// FormatAmount renders a fiat amount with thousands separators and two
// decimal places, e.g. 216459.125 becomes "216,459.13".
func FormatAmount(value decimal.Decimal) string {
	fixed := value.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	whole := parts[0]

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a ratio as a percentage with two decimal places,
// e.g. 0.0312 becomes "3.12%".
func FormatPercent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
