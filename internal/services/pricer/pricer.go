package pricer

import (
	"context"

	"github.com/avibrazil/balancemb/internal/domain"
)

// Pricer resolves the last traded price of one asset against the fiat base.
type Pricer interface {
	Ticker(ctx context.Context, symbol string) (domain.PriceQuote, error)
}
