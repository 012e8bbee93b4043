package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
)

// ErrUnsupported means the adapter cannot serve the request at all: the
// symbol is absent from its mapping table, the quote currency is not
// offered, or the operation is not implemented by the source. The
// fallback resolver skips such adapters silently without counting a
// failure.
var ErrUnsupported = errors.New("provider: unsupported request")

// Adapter is one external price-data source plus its request/response
// translation logic. Implementations never return partially-populated
// results: an unexpected payload shape is a NormalizationError.
type Adapter interface {
	Name() string

	// SpotPrice returns the current rate of symbol quoted in fiat,
	// normalized into the canonical rate table.
	SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error)

	// MarketChart returns the price series of symbol quoted in fiat over
	// the trailing day range.
	MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error)
}

// NormalizationError reports a provider payload that did not match the
// source's documented shape.
type NormalizationError struct {
	Provider string
	Reason   string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %s", e.Provider, e.Reason)
}

func normErr(provider, format string, args ...any) error {
	return &NormalizationError{Provider: provider, Reason: fmt.Sprintf(format, args...)}
}

// Attempt records one failed provider try inside an AllFailedError.
type Attempt struct {
	Provider string
	Err      error
}

// AllFailedError is terminal for a resolve call: every eligible provider
// in the chain failed. It carries all per-provider messages for
// diagnostics.
type AllFailedError struct {
	Op       string
	Attempts []Attempt
}

func (e *AllFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: no provider supports this request", e.Op)
	}
	msgs := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		msgs = append(msgs, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return fmt.Sprintf("%s: all sources failed: %s", e.Op, strings.Join(msgs, "; "))
}
