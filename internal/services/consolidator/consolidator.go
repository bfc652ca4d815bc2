// Package consolidator joins per-asset balances with ticker quotes into a
// single fiat-denominated view of the account.
package consolidator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/avibrazil/balancemb/internal/domain"
)

// Consolidate values every balance in fiat and sums the result. An asset with
// a quote is valued quantity times last price. An asset without a quote is
// valued by its raw quantity; this covers the fiat base asset itself and any
// asset whose ticker lookup failed, and is deliberately symbol-agnostic.
// Holdings are returned sorted by fiat value, largest first.
func Consolidate(balances []domain.AssetBalance, quotes map[string]domain.PriceQuote, fiatSymbol string) ([]domain.ConsolidatedHolding, decimal.Decimal) {
	holdings := make([]domain.ConsolidatedHolding, 0, len(balances))
	total := decimal.Zero

	for _, balance := range balances {
		value := balance.Total
		if balance.Symbol != fiatSymbol {
			if quote, ok := quotes[balance.Symbol]; ok {
				value = balance.Total.Mul(quote.Last)
			}
		}

		holdings = append(holdings, domain.ConsolidatedHolding{
			Symbol:    balance.Symbol,
			FiatValue: value,
		})
		total = total.Add(value)
	}

	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].FiatValue.GreaterThan(holdings[j].FiatValue)
	})

	return holdings, total
}
