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

// coinLoreID maps logical symbols to CoinLore's numeric coin ids.
var coinLoreID = map[string]string{
	"BTC":  "90",
	"ETH":  "80",
	"USDT": "518",
}

// CoinLore serves USD spot quotes only, with every numeric field encoded
// as a string. No historical endpoint, so it sits only in the spot chain.
type CoinLore struct {
	client  *httpx.Client
	baseURL string
}

func NewCoinLore(client *httpx.Client, baseURL string) *CoinLore {
	return &CoinLore{client: client, baseURL: baseURL}
}

func (p *CoinLore) Name() string { return "coinlore" }

func (p *CoinLore) SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error) {
	id, ok := coinLoreID[strings.ToUpper(symbol)]
	if !ok {
		return nil, ErrUnsupported
	}
	if strings.ToLower(fiat) != "usd" {
		return nil, ErrUnsupported
	}

	url := fmt.Sprintf("%s/api/ticker/?id=%s", p.baseURL, id)
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("coinlore: %w", err)
	}

	var raw []struct {
		ID       string `json:"id"`
		Symbol   string `json:"symbol"`
		PriceUSD string `json:"price_usd"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, normErr(p.Name(), "parse ticker: %v", err)
	}
	if len(raw) == 0 {
		return nil, normErr(p.Name(), "empty ticker array for id %s", id)
	}
	price, err := strconv.ParseFloat(raw[0].PriceUSD, 64)
	if err != nil {
		return nil, normErr(p.Name(), "bad price_usd %q: %v", raw[0].PriceUSD, err)
	}

	return domain.RateTable{strings.ToUpper(symbol): {"usd": price}}, nil
}

func (p *CoinLore) MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error) {
	return nil, ErrUnsupported
}
