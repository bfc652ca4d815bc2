package domain

import "github.com/shopspring/decimal"

// dustThreshold is the quantity below which an asset is treated as not held.
var dustThreshold = decimal.NewFromFloat(1e-6)

// AssetBalance is the exchange-reported position for a single asset.
// Quantities are denominated in units of the asset itself, not fiat.
type AssetBalance struct {
	Symbol     string
	Total      decimal.Decimal
	OpenOrders decimal.Decimal
}

// IsDust reports whether both the total and the open-order quantity are
// effectively zero, in which case the asset is excluded from consolidation.
func (b AssetBalance) IsDust() bool {
	return b.Total.LessThanOrEqual(dustThreshold) && b.OpenOrders.LessThanOrEqual(dustThreshold)
}

// PriceQuote is the last traded price for an asset against the fiat base.
type PriceQuote struct {
	Symbol string
	Last   decimal.Decimal
}

// ConsolidatedHolding is one asset's position expressed in fiat.
type ConsolidatedHolding struct {
	Symbol    string
	FiatValue decimal.Decimal
}
