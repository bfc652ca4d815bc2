package pricer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/avibrazil/balancemb/internal/domain"
)

// defaultMaxInFlight caps concurrent ticker lookups so an account holding
// many assets does not hammer the exchange's public endpoint.
const defaultMaxInFlight = 180

// ConcurrentFetcher fans out one ticker lookup per asset through a bounded
// worker pool and fans the successful quotes back into a single map.
type ConcurrentFetcher struct {
	pricer      Pricer
	maxInFlight int
	logger      *zap.Logger
}

// NewConcurrentFetcher creates a fetcher over the given Pricer. maxInFlight
// values below one fall back to the default cap.
func NewConcurrentFetcher(pricer Pricer, maxInFlight int, logger *zap.Logger) *ConcurrentFetcher {
	if maxInFlight < 1 {
		maxInFlight = defaultMaxInFlight
	}
	return &ConcurrentFetcher{
		pricer:      pricer,
		maxInFlight: maxInFlight,
		logger:      logger,
	}
}

// Fetch looks up quotes for all symbols in parallel and returns every quote
// that resolved. A failed lookup is logged and leaves its symbol absent from
// the result; it never aborts lookups for the other symbols. An empty result
// is valid and means every asset will be valued by its raw quantity.
func (f *ConcurrentFetcher) Fetch(ctx context.Context, symbols []string) map[string]domain.PriceQuote {
	quotes := make(map[string]domain.PriceQuote, len(symbols))
	if len(symbols) == 0 {
		return quotes
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, f.maxInFlight)
	)

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			quote, err := f.pricer.Ticker(ctx, symbol)
			if err != nil {
				f.logger.Warn("ticker lookup failed, valuing asset by raw quantity",
					zap.String("symbol", symbol), zap.Error(err))
				return
			}

			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()

	return quotes
}
