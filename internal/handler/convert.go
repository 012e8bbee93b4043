package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mo-hanxuan/crypto-converter/internal/domain"
	"github.com/mo-hanxuan/crypto-converter/internal/provider"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetCurrencies godoc
// @Summary      List supported currencies
// @Description  Returns the crypto and fiat codes the converter accepts
// @Tags         convert
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/currencies [get]
func (h *Handler) GetCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"crypto": domain.SupportedCryptos,
		"fiat":   domain.SupportedFiats,
	})
}

// GetConvert godoc
// @Summary      Convert an amount between two currencies
// @Description  Converts amount units of from into to, any mix of crypto and fiat
// @Tags         convert
// @Produce      json
// @Param        amount  query  string  true  "Amount to convert"
// @Param        from    query  string  true  "Source currency code (e.g., BTC, USD)"
// @Param        to      query  string  true  "Target currency code (e.g., ETH, EUR)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/convert [get]
func (h *Handler) GetConvert(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.convert")
	defer span.End()

	from, err := domain.Parse(c.Query("from"))
	if err != nil {
		badCurrency(c, err)
		return
	}
	to, err := domain.Parse(c.Query("to"))
	if err != nil {
		badCurrency(c, err)
		return
	}
	span.SetAttributes(
		attribute.String("from", from.Code),
		attribute.String("to", to.Code),
	)

	result, err := h.convertService.Convert(ctx, c.Query("amount"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":   from.Code,
		"to":     to.Code,
		"amount": c.Query("amount"),
		"result": result,
	})
}

// GetHistory godoc
// @Summary      Historical rate series for a pair
// @Description  Returns the aligned price series over a trailing day range
// @Tags         convert
// @Produce      json
// @Param        from  query  string  true   "Source currency code"
// @Param        to    query  string  true   "Target currency code"
// @Param        days  query  int     false  "Range in days (5, 30, 90, 365)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.history")
	defer span.End()

	from, err := domain.Parse(c.Query("from"))
	if err != nil {
		badCurrency(c, err)
		return
	}
	to, err := domain.Parse(c.Query("to"))
	if err != nil {
		badCurrency(c, err)
		return
	}

	days := 30
	if d := c.Query("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":          "invalid days: " + d,
				"supported_days": domain.SupportedRanges,
			})
			return
		}
		days = n
	}
	span.SetAttributes(
		attribute.String("from", from.Code),
		attribute.String("to", to.Code),
		attribute.Int("days", days),
	)

	points, err := h.convertService.History(ctx, from, to, days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":   from.Code,
		"to":     to.Code,
		"days":   days,
		"points": points,
	})
}

func badCurrency(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":     err.Error(),
		"supported": domain.FormatSupported(),
	})
}

// writeError maps service errors to response codes: caller mistakes are
// 400, thin-data outcomes are 422, exhausted upstreams are 502.
func writeError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientDataError
	var allFailed *provider.AllFailedError
	var fiatErr *domain.FiatConversionError
	var missing *domain.MissingRateError

	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrChartUnavailable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          err.Error(),
			"supported_days": domain.SupportedRanges,
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
			"suggestions": []string{
				"try a narrower range, recent data is denser",
				"try a different pair, this one has little shared history",
				"retry later, one of the chart sources may be down",
			},
		})
	case errors.As(err, &allFailed), errors.As(err, &fiatErr), errors.As(err, &missing):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
