package job

import (
	"context"
	"time"

	"etf-advisor/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultRefreshInterval = time.Minute

type CatalogSource interface {
	Warm(ctx context.Context) error
	Refresh(ctx context.Context) ([]domain.LLMModel, error)
}

// CatalogRefresher keeps the model catalog current in the background.
type CatalogRefresher struct {
	tracer   trace.Tracer
	log      zerolog.Logger
	catalog  CatalogSource
	interval time.Duration
}

func NewCatalogRefresher(tracer trace.Tracer, log zerolog.Logger, catalog CatalogSource, intervalSecs int) *CatalogRefresher {
	interval := time.Duration(intervalSecs) * time.Second
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &CatalogRefresher{
		tracer:   tracer,
		log:      log.With().Str("component", "catalog-refresher").Logger(),
		catalog:  catalog,
		interval: interval,
	}
}

// Start warms the catalog from the mirror, refreshes immediately and then on
// every interval. Blocks until ctx is cancelled. Failures wait for the next
// tick.
func (r *CatalogRefresher) Start(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("catalog refresher starting")

	if err := r.catalog.Warm(ctx); err != nil {
		r.log.Warn().Err(err).Msg("catalog warm failed")
	}
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("catalog refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *CatalogRefresher) refresh(ctx context.Context) {
	ctx, span := r.tracer.Start(ctx, "job.catalog-refresh")
	defer span.End()

	models, err := r.catalog.Refresh(ctx)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() == nil {
			r.log.Warn().Err(err).Msg("catalog refresh failed")
		}
		return
	}
	span.SetAttributes(attribute.Int("catalog.model_count", len(models)))
	r.log.Debug().Int("models", len(models)).Msg("catalog refreshed")
}
