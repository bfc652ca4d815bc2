package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultFundLabel       = "Mercado Bitcoin"
	defaultFiatSymbol      = "brl"
	defaultReportThreshold = "2"
)

// Config is the validated runtime configuration for one poll cycle.
type Config struct {
	APIID     string
	APISecret string

	HistoryFile string
	FundLabel   string
	FiatSymbol  string

	// PersistThreshold gates writing the history row, ReportThreshold gates
	// bothering a human. They are independent knobs.
	PersistThreshold decimal.Decimal
	ReportThreshold  decimal.Decimal

	MailRecipient  string
	TelegramChatID string
	TelegramBotID  string

	JournalDir string
	Debug      bool
}

type configTmp struct {
	APIID               string `yaml:"mb_id"`
	APISecret           string `yaml:"mb_secret"`
	HistoryFile         string `yaml:"csv"`
	FundLabel           string `yaml:"csv_fund_name,omitempty"`
	FiatSymbol          string `yaml:"fiat,omitempty"`
	PersistThresholdStr string `yaml:"csv_threshold,omitempty"`
	ReportThresholdStr  string `yaml:"report_threshold,omitempty"`
	MailRecipient       string `yaml:"mail,omitempty"`
	TelegramChatID      string `yaml:"telegram_chat_id,omitempty"`
	TelegramBotID       string `yaml:"telegram_bot_id,omitempty"`
	JournalDir          string `yaml:"journal_dir,omitempty"`
	Debug               bool   `yaml:"debug,omitempty"`
}

// Get builds the configuration from a yaml file when --config is provided,
// otherwise from command line flags. API credentials fall back to the
// MB_API_ID and MB_API_SECRET environment variables.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")

	apiID := flag.String("mb-id", "", "Mercado Bitcoin API ID")
	apiSecret := flag.String("mb-secret", "", "Mercado Bitcoin API secret")
	historyFile := flag.String("csv", "", "append the consolidated balance to this pipe-delimited file")
	fundLabel := flag.String("csv-fund-name", defaultFundLabel, "arbitrary fund name tagging history rows")
	fiatSymbol := flag.String("fiat", defaultFiatSymbol, "fiat symbol balances are consolidated into")
	persistThreshold := flag.String("csv-threshold", "0", "record a history row only if the balance moved more than this")
	reportThreshold := flag.String("report-threshold", defaultReportThreshold, "send a report only if the balance moved more than this since the last report")
	mailRecipient := flag.String("mail", "", "e-mail address receiving the report")
	telegramChatID := flag.String("telegram-chat-id", "", "recipient's Telegram chat ID")
	telegramBotID := flag.String("telegram-bot-id", "", "Telegram bot ID as provided by BotFather")
	journalDir := flag.String("journal-dir", "", "directory for the notification dispatch journal")
	debug := flag.Bool("debug", false, "be more verbose")

	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		APIID:          *apiID,
		APISecret:      *apiSecret,
		HistoryFile:    *historyFile,
		FundLabel:      *fundLabel,
		FiatSymbol:     *fiatSymbol,
		MailRecipient:  *mailRecipient,
		TelegramChatID: *telegramChatID,
		TelegramBotID:  *telegramBotID,
		JournalDir:     *journalDir,
		Debug:          *debug,
	}

	var err error
	if cfg.PersistThreshold, err = parseThreshold("csv-threshold", *persistThreshold); err != nil {
		return Config{}, err
	}
	if cfg.ReportThreshold, err = parseThreshold("report-threshold", *reportThreshold); err != nil {
		return Config{}, err
	}

	return validated(cfg)
}

func getYaml(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, fmt.Errorf("unable to parse yaml config: %w", err)
	}

	cfg := Config{
		APIID:          tmp.APIID,
		APISecret:      tmp.APISecret,
		HistoryFile:    tmp.HistoryFile,
		FundLabel:      tmp.FundLabel,
		FiatSymbol:     tmp.FiatSymbol,
		MailRecipient:  tmp.MailRecipient,
		TelegramChatID: tmp.TelegramChatID,
		TelegramBotID:  tmp.TelegramBotID,
		JournalDir:     tmp.JournalDir,
		Debug:          tmp.Debug,
	}
	if cfg.FundLabel == "" {
		cfg.FundLabel = defaultFundLabel
	}

	if tmp.PersistThresholdStr == "" {
		tmp.PersistThresholdStr = "0"
	}
	if cfg.PersistThreshold, err = parseThreshold("csv_threshold", tmp.PersistThresholdStr); err != nil {
		return Config{}, err
	}
	if tmp.ReportThresholdStr == "" {
		tmp.ReportThresholdStr = defaultReportThreshold
	}
	if cfg.ReportThreshold, err = parseThreshold("report_threshold", tmp.ReportThresholdStr); err != nil {
		return Config{}, err
	}

	return validated(cfg)
}

func parseThreshold(name, value string) (decimal.Decimal, error) {
	threshold, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s provided: %s", name, value)
	}
	if threshold.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s must not be negative, got %s", name, threshold)
	}
	return threshold, nil
}

func validated(cfg Config) (Config, error) {
	if cfg.APIID == "" {
		cfg.APIID = os.Getenv("MB_API_ID")
	}
	if cfg.APISecret == "" {
		cfg.APISecret = os.Getenv("MB_API_SECRET")
	}
	if cfg.APIID == "" || cfg.APISecret == "" {
		return Config{}, fmt.Errorf("API credentials are required: pass --mb-id/--mb-secret or set MB_API_ID and MB_API_SECRET")
	}

	if cfg.FiatSymbol == "" {
		cfg.FiatSymbol = defaultFiatSymbol
	}

	if (cfg.TelegramChatID == "") != (cfg.TelegramBotID == "") {
		return Config{}, fmt.Errorf("telegram chat ID and bot ID must be provided together")
	}

	return cfg, nil
}
