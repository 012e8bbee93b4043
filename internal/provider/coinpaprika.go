package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/httpx"
)

var coinPaprikaID = map[string]string{
	"BTC":  "btc-bitcoin",
	"ETH":  "eth-ethereum",
	"USDT": "usdt-tether",
	"BNB":  "bnb-binance-coin",
	"DOGE": "doge-dogecoin",
}

// paprikaQuotes are the quote currencies the free tier serves.
var paprikaQuotes = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "CNY": {}, "JPY": {},
}

// CoinPaprika quotes arrive as a singleton nested object keyed by the
// requested quote currency.
type CoinPaprika struct {
	client  *httpx.Client
	baseURL string
}

func NewCoinPaprika(client *httpx.Client, baseURL string) *CoinPaprika {
	return &CoinPaprika{client: client, baseURL: baseURL}
}

func (p *CoinPaprika) Name() string { return "coinpaprika" }

func (p *CoinPaprika) SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error) {
	id, ok := coinPaprikaID[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrUnsupported
	}
	quote := strings.ToUpper(fiat)
	if _, ok := paprikaQuotes[quote]; !ok {
		return nil, ErrUnsupported
	}

	url := fmt.Sprintf("%s/tickers/%s?quotes=%s", p.baseURL, id, quote)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("coinpaprika: %w", err)
	}

	var raw struct {
		ID     string `json:"id"`
		Quotes map[string]struct {
			Price float64 `json:"price"`
		} `json:"quotes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, normErr(p.Name(), "parse ticker: %v", err)
	}
	if len(raw.Quotes) == 0 {
		return nil, normErr(p.Name(), "quotes object missing for %s", id)
	}
	q, ok := raw.Quotes[quote]
	if !ok {
		return nil, normErr(p.Name(), "quote currency %s missing for %s", quote, id)
	}

	return domain.RateTable{strings.ToUpper(symbol): {strings.ToLower(fiat): q.Price}}, nil
}

func (p *CoinPaprika) MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error) {
	id, ok := coinPaprikaID[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrUnsupported
	}
	// Historical tickers are USD-denominated on the free tier.
	if strings.ToUpper(fiat) != "USD" {
		return nil, ErrUnsupported
	}

	interval := "1d"
	if days <= 7 {
		interval = "1h"
	}
	start := time.Now().AddDate(0, 0, -days).Unix()

	url := fmt.Sprintf("%s/tickers/%s/historical?start=%d&interval=%s", p.baseURL, id, start, interval)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("coinpaprika: %w", err)
	}

	var raw []struct {
		Timestamp string  `json:"timestamp"`
		Price     float64 `json:"price"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, normErr(p.Name(), "parse historical tickers: %v", err)
	}
	if len(raw) == 0 {
		return nil, normErr(p.Name(), "empty historical series for %s", id)
	}

	series := make(domain.Series, 0, len(raw))
	for _, row := range raw {
		ts, err := time.Parse(time.RFC3339, row.Timestamp)
		if err != nil {
			return nil, normErr(p.Name(), "bad timestamp %q: %v", row.Timestamp, err)
		}
		series = append(series, domain.PricePoint{Timestamp: ts.UnixMilli(), Value: row.Price})
	}
	return series, nil
}
