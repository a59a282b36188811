package handler

import (
	"context"
	"errors"
	"net/http"

	"etf-advisor/internal/catalog"
	"etf-advisor/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the recommendation service
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ListModels godoc
// @Summary      List models
// @Description  Returns the models that can be chosen for each analysis role, in catalog order
// @Tags         models
// @Produce      json
// @Success      200  {array}   domain.LLMModel
// @Failure      500  {object}  map[string]string
// @Router       /api/models [get]
func (h *Handler) ListModels(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-models")
	defer span.End()

	models, err := h.recommender.ListModels(ctx)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if models == nil {
		models = []domain.LLMModel{}
	}
	span.SetAttributes(attribute.Int("model_count", len(models)))
	c.JSON(http.StatusOK, models)
}

// Analyze godoc
// @Summary      Generate and analyze a portfolio
// @Description  Builds a strategy, an ETF portfolio and an analyst review for the given preferences
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body      domain.AdvisorRequest  true  "Preferences and model selection"
// @Success      200      {object}  domain.AdvisorResult
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]string
// @Failure      502      {object}  map[string]string
// @Router       /api/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	var req domain.AdvisorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	span.SetAttributes(attribute.String("goal", string(req.Preferences.Goal)))

	if err := req.Preferences.Validate(h.investmentStep); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.recommender.Recommend(ctx, req)
	if err != nil {
		span.RecordError(err)
		var unknown *catalog.UnknownModelError
		switch {
		case errors.As(err, &unknown):
			c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
		case errors.Is(err, context.Canceled):
			c.Status(http.StatusRequestTimeout)
		default:
			h.log.Error().Err(err).Str("goal", string(req.Preferences.Goal)).Msg("recommendation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "recommendation failed: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
