package job

import (
	"context"
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// SpotWarmer is the slice of the resolver the poller needs.
type SpotWarmer interface {
	SpotPrice(ctx context.Context, symbol, fiat string) (domain.RateTable, error)
}

// RatePoller keeps the USD spot rates of the supported cryptos warm in
// the response cache so interactive requests rarely pay a network round
// trip. One symbol per tick, round-robin, so the shared request spacing
// is never saturated by background work.
type RatePoller struct {
	tracer       trace.Tracer
	rates        SpotWarmer
	pollInterval time.Duration
}

func NewRatePoller(tracer trace.Tracer, rates SpotWarmer, pollIntervalSecs int) *RatePoller {
	return &RatePoller{
		tracer:       tracer,
		rates:        rates,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (p *RatePoller) Start(ctx context.Context) {
	logrus.Info("Rate poller starting...")

	idx := 0
	p.warmNext(ctx, &idx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Rate poller stopped")
			return
		case <-ticker.C:
			p.warmNext(ctx, &idx)
		}
	}
}

func (p *RatePoller) warmNext(ctx context.Context, idx *int) {
	ctx, span := p.tracer.Start(ctx, "rate-poller.warm")
	defer span.End()

	symbol := domain.SupportedCryptos[*idx%len(domain.SupportedCryptos)]
	*idx++

	if _, err := p.rates.SpotPrice(ctx, symbol, "usd"); err != nil {
		logrus.Warnf("rate warm for %s failed: %v", symbol, err)
	}
}
