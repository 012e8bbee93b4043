package provider

import (
	"context"
	"errors"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Resolver tries providers in a fixed priority order until one succeeds.
// The order is operation-dependent: a source usable for spot prices need
// not offer historical charts. Each provider gets exactly one attempt per
// resolve call; retrying is the job of the next source in the chain.
type Resolver struct {
	spot   []Adapter
	chart  []Adapter
	tracer trace.Tracer
}

func NewResolver(tracer trace.Tracer, spot, chart []Adapter) *Resolver {
	return &Resolver{spot: spot, chart: chart, tracer: tracer}
}

// SpotPrice resolves a current rate across the spot chain.
func (r *Resolver) SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error) {
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "resolver.spot-price")
		span.SetAttributes(attribute.String("symbol", symbol), attribute.String("fiat", fiat))
		defer span.End()
	}

	var attempts []Attempt
	for _, a := range r.spot {
		table, err := a.SpotPrice(ctx, symbol, fiat)
		if err == nil {
			return table, nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		logrus.Warnf("spot price via %s failed: %v", a.Name(), err)
		attempts = append(attempts, Attempt{Provider: a.Name(), Err: err})
	}
	return nil, &AllFailedError{Op: "spot_price", Attempts: attempts}
}

// MarketChart resolves a historical series across the chart chain.
func (r *Resolver) MarketChart(ctx context.Context, symbol, fiat string, days int) (domain.Series, error) {
	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "resolver.market-chart")
		span.SetAttributes(
			attribute.String("symbol", symbol),
			attribute.String("fiat", fiat),
			attribute.Int("days", days),
		)
		defer span.End()
	}

	var attempts []Attempt
	for _, a := range r.chart {
		series, err := a.MarketChart(ctx, symbol, fiat, days)
		if err == nil {
			return series, nil
		}
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		logrus.Warnf("market chart via %s failed: %v", a.Name(), err)
		attempts = append(attempts, Attempt{Provider: a.Name(), Err: err})
	}
	return nil, &AllFailedError{Op: "market_chart", Attempts: attempts}
}
