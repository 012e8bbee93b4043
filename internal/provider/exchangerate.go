package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mo-hanxuan/crypto-converter/internal/httpx"
)

// ExchangeRate is the dedicated fiat-pair source. It sits outside the
// crypto fallback chains: the orchestrator calls it directly on the
// fiat-to-fiat route before falling back to the crypto bridge. Requests
// still go through the shared throttled client.
type ExchangeRate struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
}

func NewExchangeRate(client *httpx.Client, baseURL, apiKey string) *ExchangeRate {
	return &ExchangeRate{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (p *ExchangeRate) Name() string { return "exchangerate" }

// PairRate returns units of `to` per unit of `from`.
func (p *ExchangeRate) PairRate(ctx context.Context, from, to string) (float64, error) {
	if p.apiKey == "" {
		return 0, ErrUnsupported
	}

	url := fmt.Sprintf("%s/v6/%s/pair/%s/%s", p.baseURL, p.apiKey, strings.ToUpper(from), strings.ToUpper(to))
	body, err := p.client.Get(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("exchangerate: %w", err)
	}

	var raw struct {
		Result         string   `json:"result"`
		ErrorType      string   `json:"error-type"`
		ConversionRate *float64 `json:"conversion_rate"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, normErr(p.Name(), "parse pair response: %v", err)
	}
	if raw.Result != "success" {
		return 0, normErr(p.Name(), "result %q (%s)", raw.Result, raw.ErrorType)
	}
	if raw.ConversionRate == nil {
		return 0, normErr(p.Name(), "conversion_rate missing for %s/%s", from, to)
	}
	return *raw.ConversionRate, nil
}
