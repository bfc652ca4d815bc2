package internal

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/avibrazil/balancemb/config"
	"github.com/avibrazil/balancemb/internal/domain"
	"github.com/avibrazil/balancemb/internal/notify"
	"github.com/avibrazil/balancemb/internal/services/consolidator"
	"github.com/avibrazil/balancemb/internal/services/decision"
	"github.com/avibrazil/balancemb/internal/services/report"
)

// BalanceFetcher fetches the account's per-asset balances.
type BalanceFetcher interface {
	Balances(ctx context.Context) ([]domain.AssetBalance, error)
}

// QuoteFetcher resolves quotes for a set of asset symbols.
type QuoteFetcher interface {
	Fetch(ctx context.Context, symbols []string) map[string]domain.PriceQuote
}

// HistoryStore reads and appends the persisted balance ledger.
type HistoryStore interface {
	Read() (domain.BalanceHistory, error)
	Append(snapshot domain.BalanceSnapshot) error
}

// Poller runs one consolidation cycle: fetch balances, price them, compare
// the total against the persisted baselines and act on the outcome. The
// external scheduler (cron) drives repetition; there is no loop here.
type Poller struct {
	client    BalanceFetcher
	quotes    QuoteFetcher
	store     HistoryStore
	notifiers []notify.Notifier
	journal   *notify.Journal
	cfg       config.Config
	logger    *zap.Logger
}

// NewPoller assembles a poller. store may be nil when no history file is
// configured; the cycle then always reports, mirroring a first run. journal
// may be nil to skip dispatch journaling.
func NewPoller(client BalanceFetcher, quotes QuoteFetcher, store HistoryStore,
	notifiers []notify.Notifier, journal *notify.Journal, cfg config.Config, logger *zap.Logger) *Poller {
	return &Poller{
		client:    client,
		quotes:    quotes,
		store:     store,
		notifiers: notifiers,
		journal:   journal,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes one poll cycle. A balance fetch or history failure aborts the
// run before anything is written. A notification failure is journaled and
// logged but never undoes the history append.
func (p *Poller) Run(ctx context.Context) error {
	balances, err := p.client.Balances(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch account balances")
	}
	if len(balances) == 0 {
		p.logger.Info("account holds no assets, consolidated total is zero")
	}

	symbols := make([]string, 0, len(balances))
	for _, balance := range balances {
		if balance.Symbol != p.cfg.FiatSymbol {
			symbols = append(symbols, balance.Symbol)
		}
	}

	quotes := p.quotes.Fetch(ctx, symbols)
	if len(symbols) > 0 && len(quotes) == 0 {
		p.logger.Warn("no ticker quotes resolved, every asset valued by raw quantity",
			zap.Int("assets", len(symbols)))
	}

	holdings, total := consolidator.Consolidate(balances, quotes, p.cfg.FiatSymbol)
	p.logger.Info("consolidated balance",
		zap.String("total", total.String()),
		zap.String("fiat", p.cfg.FiatSymbol),
		zap.Int("assets", len(holdings)))

	history, outcome, err := p.decide(total)
	if err != nil {
		return err
	}

	if outcome.Persist && p.store != nil {
		snapshot := domain.NewBalanceSnapshot(p.cfg.FundLabel, total, outcome.Notify)
		if err := p.store.Append(snapshot); err != nil {
			return errors.Wrap(err, "append balance snapshot")
		}
		history = append(history, snapshot)
		p.logger.Info("balance snapshot persisted",
			zap.Time("time", snapshot.Time), zap.Bool("reported", snapshot.Reported))
	}

	if !outcome.Notify || len(p.notifiers) == 0 {
		p.logger.Debug("no report sent",
			zap.Bool("notify", outcome.Notify), zap.Int("notifiers", len(p.notifiers)))
		return nil
	}

	p.dispatch(ctx, report.Build(history, holdings, p.cfg.FiatSymbol))
	return nil
}

// decide loads baselines from the store and applies the decision rules. With
// no store configured the cycle behaves like a first run: the in-memory
// snapshot is the whole history and a report is always due.
func (p *Poller) decide(total decimal.Decimal) (domain.BalanceHistory, decision.Outcome, error) {
	if p.store == nil {
		history := domain.BalanceHistory{domain.NewBalanceSnapshot(p.cfg.FundLabel, total, true)}
		return history, decision.Outcome{Persist: false, Notify: true}, nil
	}

	history, err := p.store.Read()
	if err != nil {
		return nil, decision.Outcome{}, errors.Wrap(err, "read balance history")
	}

	last, hasLast := history.Last()
	lastReported, hasReported := history.LastReported()

	outcome := decision.Decide(decision.Inputs{
		NewTotal:         total,
		LastTotal:        last.Total,
		HasLast:          hasLast,
		LastReported:     lastReported.Total,
		HasReported:      hasReported,
		PersistThreshold: p.cfg.PersistThreshold,
		ReportThreshold:  p.cfg.ReportThreshold,
	})

	return history, outcome, nil
}

func (p *Poller) dispatch(ctx context.Context, r report.Report) {
	reportID := uuid.New().String()

	for _, notifier := range p.notifiers {
		err := notifier.Send(ctx, r)
		if err != nil {
			p.logger.Error("report delivery failed",
				zap.String("channel", notifier.Name()),
				zap.String("report_id", reportID),
				zap.Error(err))
		} else {
			p.logger.Info("report delivered",
				zap.String("channel", notifier.Name()),
				zap.String("report_id", reportID))
		}

		if p.journal != nil {
			if jerr := p.journal.Record(reportID, notifier.Name(), err); jerr != nil {
				p.logger.Error("dispatch journal write failed", zap.Error(jerr))
			}
		}
	}
}
