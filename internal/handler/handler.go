package handler

import (
	"github.com/mo-hanxuan/crypto-converter/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer         trace.Tracer
	convertService *service.ConvertService
}

func New(tracer trace.Tracer, convertService *service.ConvertService) *Handler {
	return &Handler{
		tracer:         tracer,
		convertService: convertService,
	}
}

// RegisterRoutes mounts the API. The health probe stays outside the
// key-gated group so orchestrators can reach it unauthenticated.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/currencies", h.GetCurrencies)
	api.GET("/convert", h.GetConvert)
	api.GET("/history", h.GetHistory)
}
