package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/httpx"
)

// coinGeckoID maps logical symbols to CoinGecko coin ids.
var coinGeckoID = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"DOGE": "dogecoin",
}

// CoinGecko is the primary source. Its simple/price response is already
// the canonical nested shape; normalization only re-keys by logical
// symbol.
type CoinGecko struct {
	client  *httpx.Client
	baseURL string
}

func NewCoinGecko(client *httpx.Client, baseURL string) *CoinGecko {
	return &CoinGecko{client: client, baseURL: baseURL}
}

func (p *CoinGecko) Name() string { return "coingecko" }

func (p *CoinGecko) SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error) {
	id, ok := coinGeckoID[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrUnsupported
	}
	vs := strings.ToLower(fiat)

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s", p.baseURL, id, vs)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}

	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, normErr(p.Name(), "parse spot price: %v", err)
	}
	quotes, ok := raw[id]
	if !ok {
		return nil, normErr(p.Name(), "coin %s missing from response", id)
	}
	rate, ok := quotes[vs]
	if !ok {
		return nil, normErr(p.Name(), "quote currency %s missing for %s", vs, id)
	}

	return domain.RateTable{strings.ToUpper(symbol): {vs: rate}}, nil
}

func (p *CoinGecko) MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error) {
	id, ok := coinGeckoID[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrUnsupported
	}
	vs := strings.ToLower(fiat)

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=%d", p.baseURL, id, vs, days)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("coingecko: %w", err)
	}

	var raw struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, normErr(p.Name(), "parse market chart: %v", err)
	}
	if raw.Prices == nil {
		return nil, normErr(p.Name(), "prices array missing for %s", id)
	}

	series := make(domain.Series, 0, len(raw.Prices))
	for _, pt := range raw.Prices {
		if len(pt) < 2 {
			continue
		}
		series = append(series, domain.PricePoint{Timestamp: int64(pt[0]), Value: pt[1]})
	}
	if len(series) == 0 {
		return nil, normErr(p.Name(), "empty price series for %s", id)
	}
	return series, nil
}
