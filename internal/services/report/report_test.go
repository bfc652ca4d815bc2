package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/avibrazil/balancemb/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func snap(t time.Time, total string, reported bool) domain.BalanceSnapshot {
	return domain.BalanceSnapshot{Time: t, Fund: "test", Total: dec(total), Reported: reported}
}

func TestBuild(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	history := domain.BalanceHistory{
		snap(start, "100", true),
		snap(start.AddDate(0, 0, 40), "104", false),
		snap(start.AddDate(0, 0, 80), "110", true),
		snap(start.AddDate(0, 0, 95), "121", true),
	}

	r := Build(history, nil, "brl")

	require.True(t, r.Balance.Equal(dec("121")))
	require.True(t, r.HasBaseline)
	// The baseline is the reported row before the latest one, not the
	// latest row itself.
	require.True(t, r.Prev.Equal(dec("110")))
	require.True(t, r.Variation.Equal(dec("11")))
	require.True(t, r.HasRatios)
	require.True(t, r.PctChange.Equal(dec("0.1")), "pct = %s", r.PctChange)
	require.True(t, r.HasGrowth)
	require.True(t, r.Growth.Equal(dec("0.21")), "growth = %s", r.Growth)
	require.Equal(t, "3m5d", r.GrowthPeriod)
}

func TestBuildAgainstOlderReportedBaseline(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	// The latest reported row is not the latest row.
	history := domain.BalanceHistory{
		snap(start, "100", true),
		snap(start.AddDate(0, 0, 10), "102", false),
		snap(start.AddDate(0, 0, 20), "105", false),
	}

	r := Build(history, nil, "brl")

	require.True(t, r.Balance.Equal(dec("105")))
	require.True(t, r.Prev.Equal(dec("100")))
	require.True(t, r.Variation.Equal(dec("5")))
	require.True(t, r.PctChange.Equal(dec("0.05")), "pct = %s", r.PctChange)
}

func TestBuildWithoutReportedBaseline(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := domain.BalanceHistory{
		snap(start, "100", false),
		snap(start.AddDate(0, 0, 5), "110", false),
	}

	r := Build(history, nil, "brl")

	require.True(t, r.Balance.Equal(dec("110")))
	require.False(t, r.HasBaseline)
	require.False(t, r.HasRatios)
	require.True(t, r.HasGrowth)
	require.True(t, r.Growth.Equal(dec("0.1")), "growth = %s", r.Growth)
}

func TestBuildZeroReportedBaselineSkipsRatios(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	history := domain.BalanceHistory{
		snap(start, "0", true),
		snap(start.AddDate(0, 0, 1), "50", false),
	}

	r := Build(history, nil, "brl")

	require.True(t, r.HasBaseline)
	require.True(t, r.Variation.Equal(dec("50")))
	require.False(t, r.HasRatios)
	require.False(t, r.HasGrowth)
}

func TestBuildEmptyHistory(t *testing.T) {
	r := Build(nil, nil, "brl")

	require.True(t, r.Balance.IsZero())
	require.False(t, r.HasBaseline)
	require.False(t, r.HasRatios)
	require.False(t, r.HasGrowth)
}

func TestFormatPeriod(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "0m0d"},
		{5, "0m5d"},
		{30, "1m0d"},
		{95, "3m5d"},
		{365, "12m5d"},
	}

	for _, tt := range tests {
		got := formatPeriod(time.Duration(tt.days) * 24 * time.Hour)
		require.Equal(t, tt.want, got, "days=%d", tt.days)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"999", "999.00"},
		{"1000", "1,000.00"},
		{"216459.125", "216,459.13"},
		{"-1234567.8", "-1,234,567.80"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, FormatAmount(dec(tt.in)), "in=%s", tt.in)
	}
}

func TestFormatPercent(t *testing.T) {
	require.Equal(t, "3.12%", FormatPercent(dec("0.0312")))
	require.Equal(t, "-1.50%", FormatPercent(dec("-0.015")))
}

func TestTables(t *testing.T) {
	r := Report{
		FiatSymbol: "brl",
		Holdings: []domain.ConsolidatedHolding{
			{Symbol: "brl", FiatValue: dec("212145")},
			{Symbol: "wif", FiatValue: dec("2354.71")},
		},
	}

	text := r.TextTable()
	require.Contains(t, text, "brl  212,145.00 BRL")
	require.Contains(t, text, "wif  2,354.71 BRL")

	html := r.HTMLTable()
	require.Contains(t, html, "<td>wif</td>")
	require.Contains(t, html, "2,354.71 BRL")
}
