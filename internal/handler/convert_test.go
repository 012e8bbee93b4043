package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/provider"
	"github.com/mo-hanxuan/crypto-converter/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubRates struct {
	spot     domain.RateTable
	spotErr  error
	chart    domain.Series
	chartErr error
}

func (s *stubRates) SpotPrice(context.Context, string, string) (domain.RateTable, error) {
	return s.spot, s.spotErr
}

func (s *stubRates) MarketChart(context.Context, string, string, int) (domain.Series, error) {
	return s.chart, s.chartErr
}

type stubPairs struct {
	rate float64
	err  error
}

func (s *stubPairs) PairRate(context.Context, string, string) (float64, error) {
	return s.rate, s.err
}

func newTestRouter(rates *stubRates, pairs *stubPairs) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	svc := service.NewConvertService(tracer, rates, pairs)
	h := New(tracer, svc)

	r := gin.New()
	h.RegisterRoutes(r, "")
	return r
}

func doGet(t *testing.T, r *gin.Engine, url string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", url, nil)
	r.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return w, body
}

func TestGetConvert(t *testing.T) {
	rates := &stubRates{spot: domain.RateTable{"BTC": {"usd": 50000}}}
	r := newTestRouter(rates, &stubPairs{})

	w, body := doGet(t, r, "/api/convert?amount=2&from=btc&to=usd")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	result, ok := body["result"].(map[string]any)
	if !ok {
		t.Fatalf("missing result object: %v", body)
	}
	if result["formatted"] != "100000.00" {
		t.Errorf("expected 100000.00, got %v", result["formatted"])
	}
	if body["from"] != "BTC" || body["to"] != "USD" {
		t.Errorf("expected normalized currency codes, got %v/%v", body["from"], body["to"])
	}
}

func TestGetConvertUnknownCurrency(t *testing.T) {
	r := newTestRouter(&stubRates{}, &stubPairs{})

	w, body := doGet(t, r, "/api/convert?amount=1&from=XYZ&to=usd")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["supported"] == nil {
		t.Error("expected supported currency sets in error payload")
	}
}

func TestGetConvertInvalidAmount(t *testing.T) {
	r := newTestRouter(&stubRates{}, &stubPairs{})

	w, _ := doGet(t, r, "/api/convert?amount=abc&from=btc&to=usd")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetConvertUpstreamExhausted(t *testing.T) {
	rates := &stubRates{spotErr: &provider.AllFailedError{Op: "spot_price"}}
	r := newTestRouter(rates, &stubPairs{})

	w, _ := doGet(t, r, "/api/convert?amount=1&from=btc&to=usd")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestGetConvertMissingRate(t *testing.T) {
	rates := &stubRates{spot: domain.RateTable{}}
	r := newTestRouter(rates, &stubPairs{})

	w, _ := doGet(t, r, "/api/convert?amount=1&from=btc&to=usd")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	rates := &stubRates{chart: domain.Series{
		{Timestamp: 1000, Value: 50000},
		{Timestamp: 2000, Value: 51000},
	}}
	r := newTestRouter(rates, &stubPairs{})

	w, body := doGet(t, r, "/api/history?from=btc&to=usd&days=30")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	points, ok := body["points"].([]any)
	if !ok || len(points) != 2 {
		t.Fatalf("expected 2 points, got %v", body["points"])
	}
}

func TestGetHistoryBadRange(t *testing.T) {
	r := newTestRouter(&stubRates{}, &stubPairs{})

	w, _ := doGet(t, r, "/api/history?from=btc&to=usd&days=17")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetHistoryFiatPairUnavailable(t *testing.T) {
	r := newTestRouter(&stubRates{}, &stubPairs{})

	w, body := doGet(t, r, "/api/history?from=usd&to=eur&days=30")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if body["supported_days"] == nil {
		t.Error("expected supported_days hint in payload")
	}
}

func TestGetHistoryInsufficientData(t *testing.T) {
	rates := &stubRates{chart: domain.Series{{Timestamp: 1000, Value: 50000}}}
	r := newTestRouter(rates, &stubPairs{})

	w, body := doGet(t, r, "/api/history?from=btc&to=usd&days=5")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if body["suggestions"] == nil {
		t.Error("expected suggestions in thin-data payload")
	}
}

func TestGetCurrencies(t *testing.T) {
	r := newTestRouter(&stubRates{}, &stubPairs{})

	w, body := doGet(t, r, "/api/currencies")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["crypto"] == nil || body["fiat"] == nil {
		t.Errorf("expected crypto and fiat lists, got %v", body)
	}
}

func TestWriteErrorDefaultsTo500(t *testing.T) {
	rates := &stubRates{spotErr: errors.New("boom")}
	r := newTestRouter(rates, &stubPairs{})

	w, _ := doGet(t, r, "/api/convert?amount=1&from=btc&to=usd")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
