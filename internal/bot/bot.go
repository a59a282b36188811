// Package bot is the Telegram front end. Every /analyze command runs on its
// own lifecycle controller.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"etf-advisor/internal/advisor"
	"etf-advisor/internal/catalog"
	"etf-advisor/internal/domain"
	"etf-advisor/internal/lifecycle"
	"etf-advisor/internal/view"

	"github.com/rs/zerolog"
)

const defaultAnalyzeTimeout = 2 * time.Minute

const usage = `Usage: /analyze goal | risk | horizon [| currency | exchange | amount]
Example: /analyze Retirement | Moderate | Long Term | USD | NYSE | 10000`

// AdvisorAPI is the slice of advisor.Client the bot needs.
type AdvisorAPI interface {
	lifecycle.Analyzer
	CheckHealth(ctx context.Context) (advisor.Health, error)
}

type ModelCatalog interface {
	Refresh(ctx context.Context) ([]domain.LLMModel, error)
	Models() []domain.LLMModel
	FetchedAt() time.Time
	DefaultSelection() (catalog.Selection, bool)
	Validate(sel catalog.Selection) error
}

type Bot struct {
	api            AdvisorAPI
	catalog        ModelCatalog
	log            zerolog.Logger
	investmentStep float64
	timeout        time.Duration
	ctrlOpts       []lifecycle.Option
}

func New(api AdvisorAPI, cat ModelCatalog, log zerolog.Logger, investmentStep float64, ctrlOpts ...lifecycle.Option) *Bot {
	return &Bot{
		api:            api,
		catalog:        cat,
		log:            log.With().Str("component", "bot").Logger(),
		investmentStep: investmentStep,
		timeout:        defaultAnalyzeTimeout,
		ctrlOpts:       ctrlOpts,
	}
}

func (b *Bot) Health(ctx context.Context) string {
	health, err := b.api.CheckHealth(ctx)
	if err != nil {
		return advisor.UserMessage(err)
	}
	return "Advisor status: " + health.Status
}

func (b *Bot) Models(ctx context.Context) string {
	models, err := b.catalog.Refresh(ctx)
	if err != nil {
		models = b.catalog.Models()
		if b.catalog.FetchedAt().IsZero() {
			return advisor.UserMessage(err)
		}
	}
	if len(models) == 0 {
		return "No models are available."
	}
	var sb strings.Builder
	sb.WriteString("Available models:\n")
	for _, m := range models {
		sb.WriteString(fmt.Sprintf("  %s (%s, %s)\n", m.DisplayName, m.ModelName, m.Provider))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Analyze runs one analysis for payload and renders the reply.
func (b *Bot) Analyze(ctx context.Context, payload string) string {
	pref, err := ParseAnalyzeArgs(payload, b.investmentStep)
	if err != nil {
		return "Could not read the request: " + err.Error() + ".\n\n" + usage
	}

	sel, err := b.selection(ctx)
	switch {
	case errors.Is(err, errNoModels):
		return "No models are available."
	case err != nil:
		return advisor.UserMessage(err)
	}

	opts := append([]lifecycle.Option{
		lifecycle.WithInvestmentStep(b.investmentStep),
		lifecycle.WithSelectionCheck(b.catalog.Validate),
		lifecycle.WithLogger(b.log),
	}, b.ctrlOpts...)
	ctrl := lifecycle.New(b.api, opts...)

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := ctrl.Submit(ctx, pref, sel); err != nil {
		return "Could not start the analysis: " + err.Error()
	}

	state, err := ctrl.Wait(ctx)
	if err != nil || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ctrl.Cancel()
		b.log.Warn().Dur("timeout", b.timeout).Msg("analysis timed out")
		return "The advisor took too long to respond. Please try again later."
	}
	return b.reply(state)
}

func (b *Bot) reply(state lifecycle.State) string {
	switch state.Phase {
	case lifecycle.PhaseCompleted:
		result, _ := state.Result()
		return FormatResult(view.NewResult(result))
	case lifecycle.PhaseFailed:
		if state.Cancelled() {
			return "The analysis was cancelled."
		}
		return advisor.UserMessage(state.Err)
	}
	return "The analysis did not finish."
}

func (b *Bot) selection(ctx context.Context) (catalog.Selection, error) {
	if b.catalog.FetchedAt().IsZero() {
		if _, err := b.catalog.Refresh(ctx); err != nil {
			return catalog.Selection{}, err
		}
	}
	sel, ok := b.catalog.DefaultSelection()
	if !ok {
		return catalog.Selection{}, errNoModels
	}
	return sel, nil
}

var errNoModels = errors.New("no models available")

// ErrFieldCount is returned for an /analyze payload outside 3 to 6 fields.
var ErrFieldCount = errors.New("expected 3 to 6 fields separated by |")

// ParseAnalyzeArgs reads "goal | risk | horizon [| currency | exchange | amount]".
// Omitted fields keep the draft defaults.
func ParseAnalyzeArgs(payload string, step float64) (domain.PortfolioPreference, error) {
	parts := strings.Split(payload, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if strings.TrimSpace(payload) == "" || len(parts) < 3 || len(parts) > 6 {
		return domain.PortfolioPreference{}, ErrFieldCount
	}

	draft := domain.NewPreferenceDraft()
	var err error
	if draft.Goal, err = domain.ParseInvestmentGoal(parts[0]); err != nil {
		return domain.PortfolioPreference{}, err
	}
	if draft.RiskProfile, err = domain.ParseRiskProfile(parts[1]); err != nil {
		return domain.PortfolioPreference{}, err
	}
	if draft.InvestmentHorizon, err = domain.ParseInvestmentHorizon(parts[2]); err != nil {
		return domain.PortfolioPreference{}, err
	}
	if len(parts) > 3 && parts[3] != "" {
		if draft.Currency, err = domain.ParseCurrency(parts[3]); err != nil {
			return domain.PortfolioPreference{}, err
		}
	}
	if len(parts) > 4 && parts[4] != "" {
		if draft.StockExchange, err = domain.ParseStockExchange(parts[4]); err != nil {
			return domain.PortfolioPreference{}, err
		}
	}
	if len(parts) > 5 && parts[5] != "" {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(parts[5], ",", ""), 64)
		if err != nil {
			return domain.PortfolioPreference{}, fmt.Errorf("invalid amount %q", parts[5])
		}
		draft.InitialInvestment = amount
	}
	return draft.Freeze(step)
}

// FormatResult renders a completed analysis as plain text.
func FormatResult(r view.Result) string {
	var sb strings.Builder
	sb.WriteString(r.Banner.Title + "\n")
	sb.WriteString(r.Banner.Message + "\n\n")

	sb.WriteString(r.Name + "\n")
	sb.WriteString("Strategy: " + r.Strategy.Name + "\n")
	if r.Strategy.Description != "" {
		sb.WriteString(r.Strategy.Description + "\n")
	}
	for _, m := range r.Metrics {
		if m.Value != "" {
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.Label, m.Value))
		}
	}

	if len(r.Allocation) > 0 {
		sb.WriteString("\nAsset allocation\n")
		for _, s := range r.Allocation {
			sb.WriteString(fmt.Sprintf("  %s: %g%%\n", s.Label, s.Value))
		}
	}
	if len(r.Holdings) > 0 {
		sb.WriteString("\nHoldings\n")
		for _, h := range r.Holdings {
			sb.WriteString(fmt.Sprintf("  %s %s: %g%%\n", h.Symbol, h.Name, h.Weight))
		}
	}
	for _, s := range r.Sections {
		sb.WriteString("\n" + s.Title + "\n" + s.Body + "\n")
	}
	for _, w := range r.SumWarnings {
		sb.WriteString(fmt.Sprintf("\nNote: %s weights total %g%%.\n", view.Label(w.Axis), w.Total))
	}
	return strings.TrimRight(sb.String(), "\n")
}
