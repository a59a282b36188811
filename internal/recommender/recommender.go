// Package recommender generates portfolio recommendations for the reference
// recommendation service. A request runs three stages (strategy, portfolio,
// analysis), each on the model chosen for that role.
package recommender

import (
	"context"
	"fmt"

	"etf-advisor/internal/catalog"
	"etf-advisor/internal/domain"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Generator runs the stages for one provider. model is the provider's model name.
type Generator interface {
	Strategy(ctx context.Context, model string, pref domain.PortfolioPreference) (domain.Strategy, error)
	Portfolio(ctx context.Context, model string, pref domain.PortfolioPreference, strategy domain.Strategy) (domain.Portfolio, error)
	Analyze(ctx context.Context, model string, pref domain.PortfolioPreference, portfolio domain.Portfolio) (domain.AnalysisResponse, error)
}

// GenerationError wraps a failure of one stage.
type GenerationError struct {
	Stage string
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s stage on %s: %v", e.Stage, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Service struct {
	tracer     trace.Tracer
	log        zerolog.Logger
	models     []domain.LLMModel
	generators map[string]Generator
}

func NewService(tracer trace.Tracer, log zerolog.Logger, models []domain.LLMModel, generators map[string]Generator) *Service {
	return &Service{
		tracer:     tracer,
		log:        log.With().Str("component", "recommender").Logger(),
		models:     append([]domain.LLMModel{}, models...),
		generators: generators,
	}
}

// ListModels returns the models whose provider has a generator, in
// configuration order.
func (s *Service) ListModels(ctx context.Context) ([]domain.LLMModel, error) {
	out := make([]domain.LLMModel, 0, len(s.models))
	for _, m := range s.models {
		if _, ok := s.generators[m.Provider]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Resolve maps every role of req to a served model.
func (s *Service) Resolve(req domain.AdvisorRequest) (map[catalog.Role]domain.LLMModel, error) {
	sel := catalog.Selection{Investment: req.InvestmentModel, Portfolio: req.PortfolioModel, Analyst: req.AnalystModel}
	out := make(map[catalog.Role]domain.LLMModel, 3)
	for _, role := range catalog.Roles() {
		id := sel.Get(role)
		m, ok := s.lookup(id)
		if !ok {
			return nil, &catalog.UnknownModelError{Role: role, ID: id}
		}
		out[role] = m
	}
	return out, nil
}

// Recommend runs the three stages. Unknown model ids fail with
// catalog.UnknownModelError before any stage runs; stage failures are
// GenerationError.
func (s *Service) Recommend(ctx context.Context, req domain.AdvisorRequest) (domain.AdvisorResult, error) {
	ctx, span := s.tracer.Start(ctx, "recommender.recommend")
	defer span.End()

	models, err := s.Resolve(req)
	if err != nil {
		span.RecordError(err)
		return domain.AdvisorResult{}, err
	}
	pref := req.Preferences
	span.SetAttributes(
		attribute.String("recommender.goal", string(pref.Goal)),
		attribute.String("recommender.investment_model", models[catalog.RoleInvestment].ModelName),
		attribute.String("recommender.portfolio_model", models[catalog.RolePortfolio].ModelName),
		attribute.String("recommender.analyst_model", models[catalog.RoleAnalyst].ModelName),
	)

	fail := func(stage string, m domain.LLMModel, err error) (domain.AdvisorResult, error) {
		gerr := &GenerationError{Stage: stage, Model: m.ModelName, Err: err}
		span.RecordError(gerr)
		span.SetStatus(codes.Error, stage+" failed")
		s.log.Warn().Err(err).Str("stage", stage).Str("model", m.ModelName).Msg("recommendation stage failed")
		return domain.AdvisorResult{}, gerr
	}

	im := models[catalog.RoleInvestment]
	strategy, err := s.generators[im.Provider].Strategy(ctx, im.ModelName, pref)
	if err != nil {
		return fail("strategy", im, err)
	}
	fillStrategyDefaults(&strategy, pref)

	pm := models[catalog.RolePortfolio]
	portfolio, err := s.generators[pm.Provider].Portfolio(ctx, pm.ModelName, pref, strategy)
	if err != nil {
		return fail("portfolio", pm, err)
	}
	portfolio.Strategy = strategy

	am := models[catalog.RoleAnalyst]
	summary, err := s.generators[am.Provider].Analyze(ctx, am.ModelName, pref, portfolio)
	if err != nil {
		return fail("analysis", am, err)
	}

	s.log.Info().
		Str("goal", string(pref.Goal)).
		Int("holdings", len(portfolio.Holdings)).
		Bool("approved", summary.IsApproved).
		Msg("recommendation generated")
	return domain.AdvisorResult{
		Portfolio: portfolio,
		Analysis:  domain.Analysis{Summary: summary},
	}, nil
}

func (s *Service) lookup(id string) (domain.LLMModel, bool) {
	for _, m := range s.models {
		if m.ID() != id {
			continue
		}
		if _, ok := s.generators[m.Provider]; ok {
			return m, true
		}
	}
	return domain.LLMModel{}, false
}

// fillStrategyDefaults echoes the preference into fields a generator left empty.
func fillStrategyDefaults(s *domain.Strategy, pref domain.PortfolioPreference) {
	if s.StockExchange == "" {
		s.StockExchange = pref.StockExchange
	}
	if s.RiskTolerance == "" {
		s.RiskTolerance = string(pref.RiskProfile)
	}
	if s.TimeHorizon == "" {
		s.TimeHorizon = string(pref.InvestmentHorizon)
	}
}
