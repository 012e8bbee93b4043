package series

import (
	"time"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
)

const (
	// minTierMatches is the match count below which the next, more
	// lenient tier is tried.
	minTierMatches = 5
	// minChartPoints is the floor under which a chart is meaningless.
	minChartPoints = 2
	// nearestWindow bounds how far apart two samples may be and still
	// be treated as simultaneous by the nearest-neighbor tier.
	nearestWindow = 24 * time.Hour
)

// Clean drops non-positive values, sorts ascending, and deduplicates by
// timestamp (last sample wins). Every raw series passes through here
// before alignment.
func Clean(s domain.Series) domain.Series {
	out := make(domain.Series, 0, len(s))
	for _, p := range s {
		if p.Value > 0 {
			out = append(out, p)
		}
	}
	domain.SortSeries(out)

	dedup := out[:0]
	for _, p := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Timestamp == p.Timestamp {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// Invert maps every value to its reciprocal, so a series of "fiat per
// crypto" becomes "crypto per fiat". Non-positive values are dropped.
func Invert(s domain.Series) domain.Series {
	out := make(domain.Series, 0, len(s))
	for _, p := range s {
		if p.Value > 0 {
			out = append(out, domain.PricePoint{Timestamp: p.Timestamp, Value: 1 / p.Value})
		}
	}
	return out
}

// Reconcile aligns two independently sampled series into one series of
// a/b ratios. Providers sample at different, non-aligned cadences, so
// rigid equality matching starves the chart; three increasingly lenient
// tiers trade timestamp precision for data availability only as needed.
// Each tier re-reads the raw inputs.
func Reconcile(a, b domain.Series) (domain.Series, error) {
	a, b = Clean(a), Clean(b)

	aligned := AlignHourly(a, b)
	if len(aligned) < minTierMatches {
		if nearest := AlignNearest(a, b, nearestWindow); len(nearest) > len(aligned) {
			aligned = nearest
		}
	}
	if len(aligned) < minTierMatches {
		if daily := AlignDaily(a, b); len(daily) > len(aligned) {
			aligned = daily
		}
	}
	if len(aligned) < minChartPoints {
		return nil, &domain.InsufficientDataError{Points: len(aligned)}
	}

	domain.SortSeries(aligned)
	return aligned, nil
}

// AlignHourly emits one ratio point for every hour both series sampled,
// flooring timestamps to the containing hour.
func AlignHourly(a, b domain.Series) domain.Series {
	bByHour := make(map[int64]float64, len(b))
	for _, p := range b {
		bByHour[floorTo(p.Timestamp, time.Hour)] = p.Value
	}

	seen := make(map[int64]struct{}, len(a))
	out := make(domain.Series, 0, len(a))
	for _, p := range a {
		hour := floorTo(p.Timestamp, time.Hour)
		if _, dup := seen[hour]; dup {
			continue
		}
		bVal, ok := bByHour[hour]
		if !ok {
			continue
		}
		ratio := p.Value / bVal
		if ratio <= 0 {
			continue
		}
		seen[hour] = struct{}{}
		out = append(out, domain.PricePoint{Timestamp: hour, Value: ratio})
	}
	return out
}

// AlignNearest pairs every a-point with the closest b-point by absolute
// timestamp difference, accepting the pair only when the gap is under
// window. Inputs must be sorted ascending (Clean guarantees this).
func AlignNearest(a, b domain.Series, window time.Duration) domain.Series {
	if len(b) == 0 {
		return nil
	}
	maxGap := window.Milliseconds()

	out := make(domain.Series, 0, len(a))
	j := 0
	for _, p := range a {
		// advance while the next b-point is closer
		for j+1 < len(b) && absDiff(b[j+1].Timestamp, p.Timestamp) <= absDiff(b[j].Timestamp, p.Timestamp) {
			j++
		}
		if absDiff(b[j].Timestamp, p.Timestamp) >= maxGap {
			continue
		}
		ratio := p.Value / b[j].Value
		if ratio <= 0 {
			continue
		}
		out = append(out, domain.PricePoint{Timestamp: p.Timestamp, Value: ratio})
	}
	return out
}

// AlignDaily buckets each series by UTC calendar day (arithmetic mean of
// the day's samples) and emits one ratio per day both series cover.
func AlignDaily(a, b domain.Series) domain.Series {
	aDays := dailyMeans(a)
	bDays := dailyMeans(b)

	out := make(domain.Series, 0, len(aDays))
	for day, aMean := range aDays {
		bMean, ok := bDays[day]
		if !ok {
			continue
		}
		ratio := aMean / bMean
		if ratio <= 0 {
			continue
		}
		out = append(out, domain.PricePoint{Timestamp: day, Value: ratio})
	}
	domain.SortSeries(out)
	return out
}

func dailyMeans(s domain.Series) map[int64]float64 {
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, p := range s {
		day := floorTo(p.Timestamp, 24*time.Hour)
		sums[day] += p.Value
		counts[day]++
	}
	means := make(map[int64]float64, len(sums))
	for day, sum := range sums {
		means[day] = sum / float64(counts[day])
	}
	return means
}

func floorTo(tsMillis int64, d time.Duration) int64 {
	step := d.Milliseconds()
	return tsMillis - tsMillis%step
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
