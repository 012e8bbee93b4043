package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/httpx"
)

// binancePair maps "SYMBOL/fiat" to the exchange pair ticker. An explicit
// table instead of quote-suffix arithmetic: suffix stripping breaks for
// 5-character bases and mismatched quote-asset lengths. USD is quoted via
// USDT-margined pairs; USDT itself has no Binance leg.
var binancePair = map[string]string{
	"BTC/usd":  "BTCUSDT",
	"ETH/usd":  "ETHUSDT",
	"BNB/usd":  "BNBUSDT",
	"DOGE/usd": "DOGEUSDT",
	"BTC/eur":  "BTCEUR",
	"ETH/eur":  "ETHEUR",
	"BNB/eur":  "BNBEUR",
	"BTC/gbp":  "BTCGBP",
	"ETH/gbp":  "ETHGBP",
}

// Binance exposes exchange-style endpoints: string-encoded prices on the
// ticker, kline arrays for history. Candle interval substitutes hourly
// for ranges of a week or less.
type Binance struct {
	client  *httpx.Client
	baseURL string
}

func NewBinance(client *httpx.Client, baseURL string) *Binance {
	return &Binance{client: client, baseURL: baseURL}
}

func (p *Binance) Name() string { return "binance" }

func (p *Binance) pair(symbol, fiat string) (string, bool) {
	pair, ok := binancePair[strings.ToUpper(symbol)+"/"+strings.ToLower(fiat)]
	return pair, ok
}

func (p *Binance) SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error) {
	pair, ok := p.pair(symbol, fiat)
	if !ok {
		return nil, ErrUnsupported
	}

	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", p.baseURL, pair)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	var raw struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, normErr(p.Name(), "parse ticker: %v", err)
	}
	if raw.Symbol != pair {
		return nil, normErr(p.Name(), "expected pair %s, got %q", pair, raw.Symbol)
	}
	price, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return nil, normErr(p.Name(), "bad price %q: %v", raw.Price, err)
	}

	return domain.RateTable{strings.ToUpper(symbol): {strings.ToLower(fiat): price}}, nil
}

func (p *Binance) MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error) {
	pair, ok := p.pair(symbol, fiat)
	if !ok {
		return nil, ErrUnsupported
	}

	interval := "1d"
	limit := days
	if days <= 7 {
		interval = "1h"
		limit = days * 24
	}
	if limit > 1000 {
		limit = 1000
	}

	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d", p.baseURL, pair, interval, limit)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("binance: %w", err)
	}

	// Kline rows mix numbers and strings:
	// [openTime, "open", "high", "low", "close", "volume", ...]
	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, normErr(p.Name(), "parse klines: %v", err)
	}
	if len(rows) == 0 {
		return nil, normErr(p.Name(), "empty kline series for %s", pair)
	}

	series := make(domain.Series, 0, len(rows))
	for _, row := range rows {
		if len(row) < 5 {
			return nil, normErr(p.Name(), "short kline row (%d fields)", len(row))
		}
		openTime, ok := row[0].(float64)
		if !ok {
			return nil, normErr(p.Name(), "kline open time is %T, want number", row[0])
		}
		closeStr, ok := row[4].(string)
		if !ok {
			return nil, normErr(p.Name(), "kline close is %T, want string", row[4])
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			return nil, normErr(p.Name(), "bad kline close %q: %v", closeStr, err)
		}
		series = append(series, domain.PricePoint{Timestamp: int64(openTime), Value: closePrice})
	}
	return series, nil
}
