package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Kind distinguishes the two currency families the converter handles.
type Kind int

const (
	KindFiat Kind = iota
	KindCrypto
)

type Currency struct {
	Code string
	Kind Kind
}

func Fiat(code string) Currency   { return Currency{Code: strings.ToUpper(code), Kind: KindFiat} }
func Crypto(code string) Currency { return Currency{Code: strings.ToUpper(code), Kind: KindCrypto} }

func (c Currency) IsCrypto() bool { return c.Kind == KindCrypto }

func (c Currency) String() string { return c.Code }

// SupportedCryptos and SupportedFiats are the process-wide static sets the
// converter knows about. Provider adapters carry their own native-identifier
// tables; a symbol listed here may still be unsupported by an individual
// provider.
var SupportedCryptos = []string{"BTC", "ETH", "USDT", "BNB", "DOGE"}

var SupportedFiats = []string{"USD", "EUR", "GBP", "CNY", "JPY"}

var cryptoSet = toSet(SupportedCryptos)
var fiatSet = toSet(SupportedFiats)

func toSet(codes []string) map[string]struct{} {
	m := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

// Parse classifies a currency code against the supported sets.
func Parse(code string) (Currency, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := cryptoSet[upper]; ok {
		return Crypto(upper), nil
	}
	if _, ok := fiatSet[upper]; ok {
		return Fiat(upper), nil
	}
	return Currency{}, &UnsupportedCurrencyError{Code: code}
}

// Route classifies a conversion request by the crypto/fiat nature of its
// two currencies. Fixed for the lifetime of one request.
type Route int

const (
	RouteCryptoToCrypto Route = iota
	RouteCryptoToFiat
	RouteFiatToCrypto
	RouteFiatToFiat
)

func (r Route) String() string {
	switch r {
	case RouteCryptoToCrypto:
		return "crypto-to-crypto"
	case RouteCryptoToFiat:
		return "crypto-to-fiat"
	case RouteFiatToCrypto:
		return "fiat-to-crypto"
	default:
		return "fiat-to-fiat"
	}
}

func Classify(from, to Currency) Route {
	switch {
	case from.IsCrypto() && to.IsCrypto():
		return RouteCryptoToCrypto
	case from.IsCrypto():
		return RouteCryptoToFiat
	case to.IsCrypto():
		return RouteFiatToCrypto
	default:
		return RouteFiatToFiat
	}
}

// PricePoint is one sample of a price series. Timestamp is epoch
// milliseconds, matching the wire format of every chart source.
type PricePoint struct {
	Timestamp int64   `json:"t"`
	Value     float64 `json:"v"`
}

type Series []PricePoint

// RateTable is the canonical normalized spot-price shape shared by all
// provider adapters: logical symbol (upper case) -> fiat code (lower case)
// -> rate.
type RateTable map[string]map[string]float64

// Rate looks up a rate, reporting whether the table carries it.
func (t RateTable) Rate(symbol, fiat string) (float64, bool) {
	quotes, ok := t[strings.ToUpper(symbol)]
	if !ok {
		return 0, false
	}
	rate, ok := quotes[strings.ToLower(fiat)]
	return rate, ok
}

// Conversion is the scalar outcome handed back to callers. Formatted holds
// the fixed-decimal rendering (8 places for crypto destinations, 2
// otherwise); Value carries the same rounded number.
type Conversion struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Decimals  int32   `json:"decimals"`
}

// SortSeries orders points ascending by timestamp in place.
func SortSeries(s Series) {
	sort.Slice(s, func(i, j int) bool { return s[i].Timestamp < s[j].Timestamp })
}

// SupportedRanges are the chart day-ranges the history operation accepts.
var SupportedRanges = []int{5, 30, 90, 365}

func ValidRange(days int) bool {
	for _, d := range SupportedRanges {
		if d == days {
			return true
		}
	}
	return false
}

// FormatSupported renders the supported currency sets for user-facing
// error messages.
func FormatSupported() string {
	return fmt.Sprintf("crypto: %s; fiat: %s",
		strings.Join(SupportedCryptos, ", "), strings.Join(SupportedFiats, ", "))
}
