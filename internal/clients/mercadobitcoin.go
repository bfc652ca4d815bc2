package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/avibrazil/balancemb/internal/domain"
	"github.com/avibrazil/balancemb/pkg/retrier"
)

const (
	defaultTradeAPIURL  = "https://www.mercadobitcoin.net/tapi/v3/"
	defaultTickerAPIURL = "https://www.mercadobitcoin.net/api"

	tapiMethodAccountInfo = "get_account_info"
	tapiSuccessCode       = 100

	defaultHTTPTimeout = 30 * time.Second
)

// MercadoBitcoin is a thin client for the Mercado Bitcoin trade and ticker
// APIs. The trade API is authenticated: each request carries a TAPI-ID header
// plus a TAPI-MAC header holding the hex HMAC-SHA512 of "<path>?<query>"
// keyed with the API secret. The ticker API is public.
type MercadoBitcoin struct {
	apiID      string
	apiSecret  []byte
	tradeURL   string
	tickerURL  string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// Option configures a MercadoBitcoin client.
type Option func(*MercadoBitcoin)

// WithBaseURLs overrides the trade and ticker endpoints.
func WithBaseURLs(tradeURL, tickerURL string) Option {
	return func(c *MercadoBitcoin) {
		c.tradeURL = strings.TrimSuffix(tradeURL, "/") + "/"
		c.tickerURL = strings.TrimSuffix(tickerURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *MercadoBitcoin) {
		c.httpClient = hc
	}
}

// WithRetrier overrides the retry policy used for authenticated calls.
func WithRetrier(r *retrier.Retrier) Option {
	return func(c *MercadoBitcoin) {
		c.retrier = r
	}
}

// NewMercadoBitcoin creates a client for the given API credentials.
func NewMercadoBitcoin(apiID, apiSecret string, opts ...Option) *MercadoBitcoin {
	c := &MercadoBitcoin{
		apiID:      apiID,
		apiSecret:  []byte(apiSecret),
		tradeURL:   defaultTradeAPIURL,
		tickerURL:  defaultTickerAPIURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		retrier:    retrier.New(retrier.WithMaxRetries(2)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type accountInfoResponse struct {
	ResponseData struct {
		Balance map[string]struct {
			Total            decimal.Decimal `json:"total"`
			AmountOpenOrders decimal.Decimal `json:"amount_open_orders"`
		} `json:"balance"`
	} `json:"response_data"`
	StatusCode   int    `json:"status_code"`
	ErrorMessage string `json:"error_message"`
}

type tickerResponse struct {
	Ticker struct {
		Last decimal.Decimal `json:"last"`
	} `json:"ticker"`
}

// Balances fetches the account's per-asset balances. Assets whose total and
// open-order quantities are both effectively zero are dropped. Any transport,
// authentication or API-level failure is an error; the poll cannot proceed
// without balances.
func (c *MercadoBitcoin) Balances(ctx context.Context) ([]domain.AssetBalance, error) {
	return retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]domain.AssetBalance, error) {
		return c.fetchBalances(ctx)
	})
}

func (c *MercadoBitcoin) fetchBalances(ctx context.Context) ([]domain.AssetBalance, error) {
	params := url.Values{}
	params.Set("tapi_method", tapiMethodAccountInfo)
	params.Set("tapi_nonce", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tradeURL, strings.NewReader(query))
	if err != nil {
		return nil, errors.Wrap(err, "build account info request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("TAPI-ID", c.apiID)
	req.Header.Set("TAPI-MAC", c.sign(req.URL.Path, query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request account info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("account info request failed with HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read account info response")
	}

	var parsed accountInfoResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "decode account info response")
	}
	if parsed.StatusCode != tapiSuccessCode {
		// A rejection is the exchange's definitive answer, usually bad
		// credentials; retrying the same request cannot change it.
		return nil, retrier.Permanent(fmt.Errorf("account info rejected by exchange: %s (code %d)", parsed.ErrorMessage, parsed.StatusCode))
	}

	balances := make([]domain.AssetBalance, 0, len(parsed.ResponseData.Balance))
	for symbol, entry := range parsed.ResponseData.Balance {
		balance := domain.AssetBalance{
			Symbol:     strings.ToLower(symbol),
			Total:      entry.Total,
			OpenOrders: entry.AmountOpenOrders,
		}
		if balance.IsDust() {
			continue
		}
		balances = append(balances, balance)
	}

	return balances, nil
}

// Ticker fetches the last traded price for one asset against BRL. A failed
// lookup only means the quote is absent for that asset; callers fall back to
// quantity-as-value.
func (c *MercadoBitcoin) Ticker(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	endpoint := fmt.Sprintf("%s/%s/ticker", c.tickerURL, url.PathEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.PriceQuote{}, errors.Wrapf(err, "build ticker request for %s", symbol)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.PriceQuote{}, errors.Wrapf(err, "request ticker for %s", symbol)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PriceQuote{}, fmt.Errorf("ticker request for %s failed with HTTP %d", symbol, resp.StatusCode)
	}

	var parsed tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.PriceQuote{}, errors.Wrapf(err, "decode ticker response for %s", symbol)
	}

	return domain.PriceQuote{Symbol: symbol, Last: parsed.Ticker.Last}, nil
}

func (c *MercadoBitcoin) sign(path, query string) string {
	mac := hmac.New(sha512.New, c.apiSecret)
	fmt.Fprintf(mac, "%s?%s", path, query)
	return hex.EncodeToString(mac.Sum(nil))
}
