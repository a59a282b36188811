package handler

import (
	"context"

	"etf-advisor/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Recommender is the generator behind the reference recommendation service.
type Recommender interface {
	ListModels(ctx context.Context) ([]domain.LLMModel, error)
	Recommend(ctx context.Context, req domain.AdvisorRequest) (domain.AdvisorResult, error)
}

type Handler struct {
	tracer         trace.Tracer
	log            zerolog.Logger
	recommender    Recommender
	investmentStep float64
}

func New(tracer trace.Tracer, log zerolog.Logger, recommender Recommender, investmentStep float64) *Handler {
	return &Handler{
		tracer:         tracer,
		log:            log.With().Str("component", "handler").Logger(),
		recommender:    recommender,
		investmentStep: investmentStep,
	}
}

// RegisterRoutes mounts the service. analyzeLimit guards only /api/analyze,
// the one route that starts LLM work.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string, analyzeLimit gin.HandlerFunc) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.GET("/health", h.Health)
	api.GET("/models", h.ListModels)
	api.POST("/analyze", analyzeLimit, h.Analyze)
}
