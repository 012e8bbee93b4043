package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/series"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// bridgeSymbol is the crypto asset used to derive a fiat cross-rate when
// the dedicated fiat source is down: both fiats are priced against it and
// the ratio gives the pair rate.
const bridgeSymbol = "BTC"

// RateSource resolves spot prices and historical charts across the
// provider fallback chain.
type RateSource interface {
	SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error)
	MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error)
}

// FiatPairSource is the dedicated fiat-to-fiat rate endpoint.
type FiatPairSource interface {
	PairRate(ctx context.Context, from, to string) (float64, error)
}

// ConvertService routes conversion requests by the crypto/fiat nature of
// the two currencies and composes resolver calls per route. It holds no
// state between invocations.
type ConvertService struct {
	tracer trace.Tracer
	rates  RateSource
	fiat   FiatPairSource
}

func NewConvertService(tracer trace.Tracer, rates RateSource, fiat FiatPairSource) *ConvertService {
	return &ConvertService{tracer: tracer, rates: rates, fiat: fiat}
}

// Convert turns amount units of from into to. The amount arrives as the
// raw user string so validation lives here, not in the UI glue.
func (s *ConvertService) Convert(ctx context.Context, amount string, from, to domain.Currency) (*domain.Conversion, error) {
	ctx, span := s.tracer.Start(ctx, "convert-service.convert")
	span.SetAttributes(
		attribute.String("from", from.Code),
		attribute.String("to", to.Code),
	)
	defer span.End()

	qty, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}

	var value float64
	switch domain.Classify(from, to) {
	case domain.RouteCryptoToCrypto:
		value, err = s.cryptoToCrypto(ctx, qty, from, to)
	case domain.RouteCryptoToFiat:
		value, err = s.cryptoToFiat(ctx, qty, from, to)
	case domain.RouteFiatToCrypto:
		value, err = s.fiatToCrypto(ctx, qty, from, to)
	default:
		value, err = s.fiatToFiat(ctx, qty, from, to)
	}
	if err != nil {
		return nil, err
	}

	return round(value, to), nil
}

func parseAmount(amount string) (float64, error) {
	trimmed := strings.TrimSpace(amount)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty input", domain.ErrInvalidAmount)
	}
	qty, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, amount)
	}
	return qty, nil
}

// round applies the fixed presentation rule: 8 decimal places for crypto
// destinations, 2 otherwise. A display policy, not a precision guarantee.
func round(value float64, to domain.Currency) *domain.Conversion {
	decimals := int32(2)
	if to.IsCrypto() {
		decimals = 8
	}
	d := decimal.NewFromFloat(value).Round(decimals)
	return &domain.Conversion{
		Value:     d.InexactFloat64(),
		Formatted: d.StringFixed(decimals),
		Decimals:  decimals,
	}
}

// cryptoToCrypto prices both legs against USD concurrently and converts
// through the ratio.
func (s *ConvertService) cryptoToCrypto(ctx context.Context, qty float64, from, to domain.Currency) (float64, error) {
	var fromTable, toTable domain.RateTable

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromTable, err = s.rates.SpotPrice(gctx, from.Code, "usd")
		return err
	})
	g.Go(func() error {
		var err error
		toTable, err = s.rates.SpotPrice(gctx, to.Code, "usd")
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	fromPrice, ok := fromTable.Rate(from.Code, "usd")
	if !ok || fromPrice <= 0 {
		return 0, &domain.MissingRateError{Symbol: from.Code, Fiat: "USD"}
	}
	toPrice, ok := toTable.Rate(to.Code, "usd")
	if !ok || toPrice <= 0 {
		return 0, &domain.MissingRateError{Symbol: to.Code, Fiat: "USD"}
	}
	return qty * (fromPrice / toPrice), nil
}

func (s *ConvertService) cryptoToFiat(ctx context.Context, qty float64, from, to domain.Currency) (float64, error) {
	table, err := s.rates.SpotPrice(ctx, from.Code, strings.ToLower(to.Code))
	if err != nil {
		return 0, err
	}
	rate, ok := table.Rate(from.Code, to.Code)
	if !ok || rate <= 0 {
		return 0, &domain.MissingRateError{Symbol: from.Code, Fiat: to.Code}
	}
	return qty * rate, nil
}

func (s *ConvertService) fiatToCrypto(ctx context.Context, qty float64, from, to domain.Currency) (float64, error) {
	table, err := s.rates.SpotPrice(ctx, to.Code, strings.ToLower(from.Code))
	if err != nil {
		return 0, err
	}
	rate, ok := table.Rate(to.Code, from.Code)
	if !ok || rate <= 0 {
		return 0, &domain.MissingRateError{Symbol: to.Code, Fiat: from.Code}
	}
	return qty / rate, nil
}

// fiatToFiat asks the dedicated pair source first and falls back to the
// crypto bridge: 1 from-fiat = (bridge priced in to-fiat) / (bridge
// priced in from-fiat) to-fiat.
func (s *ConvertService) fiatToFiat(ctx context.Context, qty float64, from, to domain.Currency) (float64, error) {
	rate, pairErr := s.fiat.PairRate(ctx, from.Code, to.Code)
	if pairErr == nil {
		return qty * rate, nil
	}

	bridgeRate, bridgeErr := s.bridgeRate(ctx, from, to)
	if bridgeErr != nil {
		return 0, &domain.FiatConversionError{PairErr: pairErr, BridgeErr: bridgeErr}
	}
	return qty * bridgeRate, nil
}

func (s *ConvertService) bridgeRate(ctx context.Context, from, to domain.Currency) (float64, error) {
	fromTable, err := s.rates.SpotPrice(ctx, bridgeSymbol, strings.ToLower(from.Code))
	if err != nil {
		return 0, err
	}
	fromRate, ok := fromTable.Rate(bridgeSymbol, from.Code)
	if !ok || fromRate <= 0 {
		return 0, &domain.MissingRateError{Symbol: bridgeSymbol, Fiat: from.Code}
	}

	toTable, err := s.rates.SpotPrice(ctx, bridgeSymbol, strings.ToLower(to.Code))
	if err != nil {
		return 0, err
	}
	toRate, ok := toTable.Rate(bridgeSymbol, to.Code)
	if !ok || toRate <= 0 {
		return 0, &domain.MissingRateError{Symbol: bridgeSymbol, Fiat: to.Code}
	}

	return toRate / fromRate, nil
}

// History returns the aligned price series for the pair over the
// trailing day range, expressed as units of to per unit of from. Chart
// failures never affect the scalar conversion, which takes a separate
// call path.
func (s *ConvertService) History(ctx context.Context, from, to domain.Currency, days int) (domain.Series, error) {
	ctx, span := s.tracer.Start(ctx, "convert-service.history")
	span.SetAttributes(
		attribute.String("from", from.Code),
		attribute.String("to", to.Code),
		attribute.Int("days", days),
	)
	defer span.End()

	if !domain.ValidRange(days) {
		return nil, fmt.Errorf("%w: %d days", domain.ErrInvalidRange, days)
	}

	switch domain.Classify(from, to) {
	case domain.RouteFiatToFiat:
		return nil, domain.ErrChartUnavailable
	case domain.RouteCryptoToFiat:
		raw, err := s.rates.MarketChart(ctx, from.Code, strings.ToLower(to.Code), days)
		if err != nil {
			return nil, err
		}
		return finishSingleLeg(series.Clean(raw))
	case domain.RouteFiatToCrypto:
		raw, err := s.rates.MarketChart(ctx, to.Code, strings.ToLower(from.Code), days)
		if err != nil {
			return nil, err
		}
		// invert so the series reads "units of crypto per unit of fiat"
		return finishSingleLeg(series.Invert(series.Clean(raw)))
	default:
		return s.dualLegHistory(ctx, from, to, days)
	}
}

func finishSingleLeg(s domain.Series) (domain.Series, error) {
	if len(s) < 2 {
		return nil, &domain.InsufficientDataError{Points: len(s)}
	}
	return s, nil
}

// dualLegHistory fetches both crypto legs against USD concurrently and
// reconciles them into a single ratio series.
func (s *ConvertService) dualLegHistory(ctx context.Context, from, to domain.Currency, days int) (domain.Series, error) {
	var fromSeries, toSeries domain.Series

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fromSeries, err = s.rates.MarketChart(gctx, from.Code, "usd", days)
		return err
	})
	g.Go(func() error {
		var err error
		toSeries, err = s.rates.MarketChart(gctx, to.Code, "usd", days)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return series.Reconcile(fromSeries, toSeries)
}
