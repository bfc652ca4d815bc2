package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/avibrazil/balancemb/internal/services/report"
	"github.com/avibrazil/balancemb/pkg/retrier"
)

const defaultTelegramAPIURL = "https://api.telegram.org"

// Telegram sends the balance report as an HTML-formatted chat message
// through the Telegram Bot API.
type Telegram struct {
	botID      string
	chatID     string
	apiURL     string
	httpClient *http.Client
	retrier    *retrier.Retrier
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithTelegramAPIURL overrides the Bot API endpoint.
func WithTelegramAPIURL(apiURL string) TelegramOption {
	return func(t *Telegram) {
		t.apiURL = strings.TrimSuffix(apiURL, "/")
	}
}

// WithTelegramHTTPClient overrides the underlying HTTP client.
func WithTelegramHTTPClient(hc *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.httpClient = hc
	}
}

// WithTelegramRetrier overrides the retry policy.
func WithTelegramRetrier(r *retrier.Retrier) TelegramOption {
	return func(t *Telegram) {
		t.retrier = r
	}
}

// NewTelegram creates a notifier for the given bot credential and chat.
func NewTelegram(botID, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		botID:      botID,
		chatID:     chatID,
		apiURL:     defaultTelegramAPIURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retrier:    retrier.New(retrier.WithMaxRetries(2)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements Notifier.
func (t *Telegram) Name() string {
	return "telegram"
}

// Send renders the report and posts it with parse_mode=html.
func (t *Telegram) Send(ctx context.Context, r report.Report) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?parse_mode=html&chat_id=%s&text=%s",
		t.apiURL, t.botID, url.QueryEscape(t.chatID), url.QueryEscape(renderMessage(r)))

	return t.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return errors.Wrap(err, "build telegram request")
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return errors.Wrap(err, "send telegram message")
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram API returned HTTP %d", resp.StatusCode)
		}

		var parsed struct {
			OK          bool   `json:"ok"`
			Description string `json:"description"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return errors.Wrap(err, "decode telegram response")
		}
		if !parsed.OK {
			return fmt.Errorf("telegram API rejected message: %s", parsed.Description)
		}

		return nil
	})
}

func renderMessage(r report.Report) string {
	fiat := strings.ToUpper(r.FiatSymbol)

	var lines []string
	lines = append(lines, fmt.Sprintf("Current balance: <strong>%s %s</strong>.\n", report.FormatAmount(r.Balance), fiat))

	if r.HasBaseline {
		lines = append(lines,
			fmt.Sprintf("Previous balance: <strong>%s %s</strong>.\n", report.FormatAmount(r.Prev), fiat),
			fmt.Sprintf("Variation: <strong>%s %s</strong>.\n", report.FormatAmount(r.Variation), fiat),
		)
	}
	if r.HasRatios {
		lines = append(lines, fmt.Sprintf("Percent change: <strong>%s</strong>.\n", report.FormatPercent(r.PctChange)))
	}
	if r.HasGrowth {
		lines = append(lines, fmt.Sprintf("Historical growth: <strong>%s</strong> in <strong>%s</strong>.\n",
			report.FormatPercent(r.Growth), r.GrowthPeriod))
	}

	lines = append(lines,
		"<strong>Breakdown by tokens and coins:</strong>",
		fmt.Sprintf("<pre>%s</pre>", r.TextTable()),
	)

	return strings.Join(lines, "\n")
}
