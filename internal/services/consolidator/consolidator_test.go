package consolidator

import (
	"testing"

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

func TestConsolidate(t *testing.T) {
	balances := []domain.AssetBalance{
		{Symbol: "brl", Total: dec("1000")},
		{Symbol: "btc", Total: dec("0.5")},
		{Symbol: "eth", Total: dec("2")},
	}
	quotes := map[string]domain.PriceQuote{
		"btc": {Symbol: "btc", Last: dec("300000")},
		"eth": {Symbol: "eth", Last: dec("15000")},
	}

	holdings, total := Consolidate(balances, quotes, "brl")

	require.Len(t, holdings, 3)
	require.True(t, total.Equal(dec("181000")), "total = %s", total)

	// Sorted descending by fiat value.
	require.Equal(t, "btc", holdings[0].Symbol)
	require.True(t, holdings[0].FiatValue.Equal(dec("150000")))
	require.Equal(t, "eth", holdings[1].Symbol)
	require.True(t, holdings[1].FiatValue.Equal(dec("30000")))
	require.Equal(t, "brl", holdings[2].Symbol)
	require.True(t, holdings[2].FiatValue.Equal(dec("1000")))
}

func TestConsolidateMissingQuoteFallsBackToQuantity(t *testing.T) {
	balances := []domain.AssetBalance{
		{Symbol: "brl", Total: dec("100")},
		{Symbol: "btc", Total: dec("0.5")},
		{Symbol: "wif", Total: dec("42")},
	}
	// wif ticker lookup failed; only btc resolved.
	quotes := map[string]domain.PriceQuote{
		"btc": {Symbol: "btc", Last: dec("100000")},
	}

	holdings, total := Consolidate(balances, quotes, "brl")

	require.True(t, total.Equal(dec("50142")), "total = %s", total)

	bySymbol := make(map[string]decimal.Decimal)
	for _, h := range holdings {
		bySymbol[h.Symbol] = h.FiatValue
	}
	require.True(t, bySymbol["wif"].Equal(dec("42")))
	require.True(t, bySymbol["brl"].Equal(dec("100")))
}

func TestConsolidateEmptyQuotes(t *testing.T) {
	balances := []domain.AssetBalance{
		{Symbol: "brl", Total: dec("1234.56")},
		{Symbol: "btc", Total: dec("1")},
	}

	holdings, total := Consolidate(balances, nil, "brl")

	require.Len(t, holdings, 2)
	require.True(t, total.Equal(dec("1235.56")), "total = %s", total)
}

func TestConsolidateSolitaryFiatHolding(t *testing.T) {
	balances := []domain.AssetBalance{
		{Symbol: "brl", Total: dec("500")},
	}

	holdings, total := Consolidate(balances, map[string]domain.PriceQuote{}, "brl")

	require.Len(t, holdings, 1)
	require.True(t, total.Equal(dec("500")))
}

func TestConsolidateNoBalances(t *testing.T) {
	holdings, total := Consolidate(nil, nil, "brl")

	require.Empty(t, holdings)
	require.True(t, total.IsZero())
}

func TestConsolidateFiatNeverUsesQuote(t *testing.T) {
	balances := []domain.AssetBalance{
		{Symbol: "brl", Total: dec("100")},
	}
	// A stray quote for the fiat symbol itself must not be applied.
	quotes := map[string]domain.PriceQuote{
		"brl": {Symbol: "brl", Last: dec("2")},
	}

	_, total := Consolidate(balances, quotes, "brl")

	require.True(t, total.Equal(dec("100")))
}
