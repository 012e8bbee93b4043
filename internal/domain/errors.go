package domain

import (
	"errors"
	"fmt"
)

// Input errors: surfaced immediately, never retried.
var (
	ErrInvalidAmount = errors.New("amount must be a valid number")
	ErrInvalidRange  = errors.New("unsupported time range")

	// ErrChartUnavailable marks pairs with no crypto leg: there is no
	// chart source for a pure fiat pair. Never blocks the scalar
	// conversion, which takes a separate path.
	ErrChartUnavailable = errors.New("historical chart requires at least one crypto currency")
)

type UnsupportedCurrencyError struct {
	Code string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q (%s)", e.Code, FormatSupported())
}

// MissingRateError reports a provider response that succeeded but lacked
// the rate the route needed.
type MissingRateError struct {
	Symbol string
	Fiat   string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no %s rate available for %s", e.Fiat, e.Symbol)
}

// FiatConversionError wraps both failures of the fiat-to-fiat route: the
// dedicated pair source and the bridge-through-crypto fallback.
type FiatConversionError struct {
	PairErr   error
	BridgeErr error
}

func (e *FiatConversionError) Error() string {
	return fmt.Sprintf("fiat conversion failed: pair source: %v; bridge fallback: %v", e.PairErr, e.BridgeErr)
}

func (e *FiatConversionError) Unwrap() []error {
	return []error{e.PairErr, e.BridgeErr}
}

// InsufficientDataError is terminal for chart requests only: even the most
// lenient reconciliation tier produced fewer than the minimum number of
// points a chart needs.
type InsufficientDataError struct {
	Points int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("not enough overlapping data points to build a chart (got %d, need at least 2)", e.Points)
}
