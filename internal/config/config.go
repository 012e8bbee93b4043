package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	BindAddr         string
	APIKey           string
	TelegramBotToken string
	RedisURL         string

	// Outbound HTTP discipline shared by every provider adapter.
	RequestSpacing time.Duration
	CacheTTL       time.Duration
	RequestTimeout time.Duration

	CoinGeckoBaseURL   string
	CoinPaprikaBaseURL string
	CoinLoreBaseURL    string
	BinanceBaseURL     string

	ExchangeRateBaseURL string
	ExchangeRateAPIKey  string

	// RatePollSecs > 0 enables the background cache warmer.
	RatePollSecs int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		ExchangeRateAPIKey: strings.TrimSpace(os.Getenv("EXCHANGERATE_API_KEY")),
	}

	if cfg.TelegramBotToken == "" {
		logrus.Warn("TELEGRAM_BOT_TOKEN not set, bot disabled")
	}
	if cfg.RedisURL == "" {
		logrus.Info("REDIS_URL not set, using in-process response cache")
	}
	if cfg.ExchangeRateAPIKey == "" {
		logrus.Warn("EXCHANGERATE_API_KEY not set, fiat pairs will use the crypto bridge")
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("API_KEY"))

	cfg.BindAddr = strings.TrimSpace(os.Getenv("BIND_ADDR"))
	if cfg.BindAddr == "" {
		cfg.BindAddr = ":8080"
	}

	cfg.RequestSpacing = durationEnv("REQUEST_SPACING_MS", 1500*time.Millisecond)
	cfg.CacheTTL = durationEnv("CACHE_TTL_MS", 60*time.Second)
	cfg.RequestTimeout = durationEnv("REQUEST_TIMEOUT_MS", 10*time.Second)

	cfg.CoinGeckoBaseURL = urlEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3")
	cfg.CoinPaprikaBaseURL = urlEnv("COINPAPRIKA_BASE_URL", "https://api.coinpaprika.com/v1")
	cfg.CoinLoreBaseURL = urlEnv("COINLORE_BASE_URL", "https://api.coinlore.net")
	cfg.BinanceBaseURL = urlEnv("BINANCE_BASE_URL", "https://api.binance.com")
	cfg.ExchangeRateBaseURL = urlEnv("EXCHANGERATE_BASE_URL", "https://v6.exchangerate-api.com")

	cfg.RatePollSecs = 0
	if v := strings.TrimSpace(os.Getenv("RATE_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RatePollSecs = n
		}
	}

	return cfg
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		logrus.Warnf("ignoring %s=%q, keeping %v", key, v, fallback)
		return fallback
	}
	return time.Duration(n) * time.Millisecond
}

func urlEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return strings.TrimRight(v, "/")
}
