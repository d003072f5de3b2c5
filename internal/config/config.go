// Package config loads the server configuration from environment variables.
// envconfig maps variables onto the struct fields.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP ---
	HTTPAddr              string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout       time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	HTTPWriteTimeout      time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"90s"`
	HTTPShutdownTimeout   time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	CORSAllowedOriginsRaw string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedOrigins    []string      `envconfig:"-"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`

	// --- Wallet ---
	WalletStartingBalance decimal.Decimal `envconfig:"WALLET_STARTING_BALANCE" default:"0"`
	WalletCurrency        string          `envconfig:"WALLET_CURRENCY" default:"BRL"`

	// --- Roulette ---
	RouletteMinBet      decimal.Decimal `envconfig:"ROULETTE_MIN_BET" default:"1"`
	RouletteMaxBet      decimal.Decimal `envconfig:"ROULETTE_MAX_BET" default:"1000"`
	RouletteHistorySize int             `envconfig:"ROULETTE_HISTORY_SIZE" default:"50"`

	// --- PIX ---
	PixMinDeposit         decimal.Decimal `envconfig:"PIX_MIN_DEPOSIT" default:"10"`
	PixMaxDeposit         decimal.Decimal `envconfig:"PIX_MAX_DEPOSIT" default:"5000"`
	PixMinWithdraw        decimal.Decimal `envconfig:"PIX_MIN_WITHDRAW" default:"20"`
	PixDailyWithdrawLimit decimal.Decimal `envconfig:"PIX_DAILY_WITHDRAW_LIMIT" default:"10000"`
	PixDepositTTL         time.Duration   `envconfig:"PIX_DEPOSIT_TTL" default:"30m"`
	PixPollInterval       time.Duration   `envconfig:"PIX_POLL_INTERVAL" default:"3s"`
	PixPollAttempts       int             `envconfig:"PIX_POLL_ATTEMPTS" default:"20"`
	PixReceiverKey        string          `envconfig:"PIX_RECEIVER_KEY" default:"a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"`
	PixMerchantName       string          `envconfig:"PIX_MERCHANT_NAME" default:"ROLETA"`
	PixMerchantCity       string          `envconfig:"PIX_MERCHANT_CITY" default:"SAO PAULO"`
	PixCallbackToken      string          `envconfig:"PIX_CALLBACK_TOKEN"`

	// --- Admin ---
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`
	AdminSessionTTL   time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"24h"`
	AdminMaxAttempts  int           `envconfig:"ADMIN_MAX_ATTEMPTS" default:"3"`

	// --- Telegram notifications (optional) ---
	TelegramBotToken       string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramOperatorChatID int64  `envconfig:"TELEGRAM_OPERATOR_CHAT_ID"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureRouletteEnabled bool `envconfig:"FEATURE_ROULETTE_ENABLED" default:"true"`
	FeaturePixEnabled      bool `envconfig:"FEATURE_PIX_ENABLED" default:"true"`
}

// Validate checks constraints between fields.
func (c *Config) Validate() error {
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is not set")
	}
	if !c.RouletteMinBet.IsPositive() {
		return fmt.Errorf("ROULETTE_MIN_BET must be > 0")
	}
	if c.RouletteMaxBet.LessThan(c.RouletteMinBet) {
		return fmt.Errorf("ROULETTE_MAX_BET must be >= ROULETTE_MIN_BET")
	}
	if c.RouletteHistorySize <= 0 {
		return fmt.Errorf("ROULETTE_HISTORY_SIZE must be > 0")
	}
	if c.WalletStartingBalance.IsNegative() {
		return fmt.Errorf("WALLET_STARTING_BALANCE must be >= 0")
	}
	if !c.PixMinDeposit.IsPositive() || c.PixMaxDeposit.LessThan(c.PixMinDeposit) {
		return fmt.Errorf("invalid PIX_MIN_DEPOSIT/PIX_MAX_DEPOSIT")
	}
	if !c.PixMinWithdraw.IsPositive() || c.PixDailyWithdrawLimit.LessThan(c.PixMinWithdraw) {
		return fmt.Errorf("invalid PIX_MIN_WITHDRAW/PIX_DAILY_WITHDRAW_LIMIT")
	}
	if c.PixPollAttempts <= 0 || c.PixPollInterval <= 0 {
		return fmt.Errorf("PIX_POLL_ATTEMPTS and PIX_POLL_INTERVAL must be > 0")
	}
	if c.PixDepositTTL <= 0 {
		return fmt.Errorf("PIX_DEPOSIT_TTL must be > 0")
	}
	if c.AdminMaxAttempts <= 0 || c.AdminSessionTTL <= 0 {
		return fmt.Errorf("ADMIN_MAX_ATTEMPTS and ADMIN_SESSION_TTL must be > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	if c.TelegramBotToken != "" && c.TelegramOperatorChatID == 0 {
		return fmt.Errorf("TELEGRAM_OPERATOR_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// NotificationsEnabled reports whether operator notifications go to Telegram.
func (c *Config) NotificationsEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramOperatorChatID != 0
}

// Load reads environment variables into Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.CORSAllowedOrigins = parseCSV(cfg.CORSAllowedOriginsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
