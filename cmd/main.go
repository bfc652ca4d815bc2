// Command balancemb fetches the consolidated Mercado Bitcoin account balance,
// appends it to a pipe-delimited history file when it moved enough, and
// reports it via Telegram and/or e-mail when it moved even more.
//
// One invocation is one poll cycle; schedule repetition with cron.
//
// Usage:
//
//	balancemb --mb-id ID --mb-secret SECRET --csv balance.csv \
//	    --report-threshold 2 --telegram-bot-id BOT --telegram-chat-id CHAT
//	balancemb --config config.yaml
//
// Credentials may also come from the MB_API_ID and MB_API_SECRET environment
// variables.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/avibrazil/balancemb/config"
	"github.com/avibrazil/balancemb/internal"
	"github.com/avibrazil/balancemb/internal/clients"
	"github.com/avibrazil/balancemb/internal/notify"
	"github.com/avibrazil/balancemb/internal/services/pricer"
	"github.com/avibrazil/balancemb/internal/storage/history"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client := clients.NewMercadoBitcoin(cfg.APIID, cfg.APISecret)
	quotes := pricer.NewConcurrentFetcher(client, 0, logger)

	var store internal.HistoryStore
	if cfg.HistoryFile != "" {
		store = history.NewFileStore(cfg.HistoryFile, cfg.FiatSymbol)
	}

	var notifiers []notify.Notifier
	if cfg.TelegramBotID != "" && cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notify.NewTelegram(cfg.TelegramBotID, cfg.TelegramChatID))
	}
	if cfg.MailRecipient != "" {
		notifiers = append(notifiers, notify.NewMail(cfg.MailRecipient, cfg.FundLabel))
	}

	var journal *notify.Journal
	if len(notifiers) > 0 && cfg.JournalDir != "" {
		journal, err = notify.NewJournal(cfg.JournalDir)
		if err != nil {
			logger.Fatal("unable to open dispatch journal", zap.Error(err))
		}
		defer journal.Close()
	}

	poller := internal.NewPoller(client, quotes, store, notifiers, journal, cfg, logger)

	if err := poller.Run(context.Background()); err != nil {
		logger.Fatal("poll cycle failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
