package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type stubRates struct {
	spot domain.RateTable
	err  error
}

func (s *stubRates) SpotPrice(context.Context, string, string) (domain.RateTable, error) {
	return s.spot, s.err
}

func (s *stubRates) MarketChart(context.Context, string, string, int) (domain.Series, error) {
	return nil, errors.New("not used")
}

type stubPairs struct{}

func (stubPairs) PairRate(context.Context, string, string) (float64, error) {
	return 0, errors.New("not used")
}

func newTestBot(rates *stubRates) *Bot {
	tracer := trace.NewNoopTracerProvider().Tracer("bot-test")
	return New(service.NewConvertService(tracer, rates, stubPairs{}))
}

func TestStartSkipsWithoutToken(t *testing.T) {
	b := New(nil)
	b.Start("")
}

func TestPriceReply(t *testing.T) {
	b := newTestBot(&stubRates{spot: domain.RateTable{"BTC": {"usd": 50000}}})

	got := b.PriceReply(context.Background(), []string{"btc"})
	if !strings.Contains(got, "50000.00 USD") {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestPriceReplyUsage(t *testing.T) {
	b := newTestBot(&stubRates{})

	got := b.PriceReply(context.Background(), nil)
	if !strings.Contains(got, "Usage:") {
		t.Errorf("expected usage text, got %q", got)
	}
}

func TestPriceReplyUnknownSymbol(t *testing.T) {
	b := newTestBot(&stubRates{})

	got := b.PriceReply(context.Background(), []string{"XYZ"})
	if !strings.Contains(got, "Unknown crypto symbol: XYZ") {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestConvertReply(t *testing.T) {
	b := newTestBot(&stubRates{spot: domain.RateTable{"BTC": {"eur": 46000}}})

	got := b.ConvertReply(context.Background(), []string{"0.5", "btc", "eur"})
	if got != "0.5 BTC = 23000.00 EUR" {
		t.Errorf("unexpected reply: %q", got)
	}
}

func TestConvertReplyUsage(t *testing.T) {
	b := newTestBot(&stubRates{})

	got := b.ConvertReply(context.Background(), []string{"0.5", "btc"})
	if !strings.Contains(got, "Usage:") {
		t.Errorf("expected usage text, got %q", got)
	}
}

func TestConvertReplyUpstreamError(t *testing.T) {
	b := newTestBot(&stubRates{err: errors.New("providers down")})

	got := b.ConvertReply(context.Background(), []string{"1", "btc", "usd"})
	if !strings.Contains(got, "Error converting") {
		t.Errorf("expected error reply, got %q", got)
	}
}
