package recommender

import (
	"encoding/json"
	"fmt"
	"strings"

	"etf-advisor/internal/domain"
)

const jsonRule = `Reply with a single JSON object and nothing else. Do not wrap it in markdown.`

const strategyPrompt = `You are an investment strategist. Given an investor's preferences, design an ETF investment strategy.

Return JSON with these fields:
- name, description
- asset_allocation: stocks_percentage, bonds_percentage, real_estate_percentage, commodities_percentage, cryptocurrency_percentage, cash_percentage (omit unused buckets; the total must not exceed 100)
- geographical_diversification: {"regions": [{"region", "weight"}]}
- sector_diversification: {"sectors": [{"sector", "weight"}]}
- stock_exchange, risk_tolerance, time_horizon, expected_returns (for example "7-9% annually")

` + jsonRule

const portfolioPrompt = `You are a portfolio builder. Given an investor's preferences and a strategy, select ETFs listed on the requested stock exchange that implement the strategy.

Return JSON with:
- name
- holdings: [{"symbol", "name", "isin", "asset_class", "weight"}], weights in percent summing to 100

` + jsonRule

const analystPrompt = `You are a portfolio analyst. Review the portfolio against the investor's preferences.

Return JSON with:
- is_approved (boolean)
- strengths, weaknesses, overall_assessment, advices (short paragraphs)

` + jsonRule

// StrategyInput is the user message of the strategy stage.
func StrategyInput(pref domain.PortfolioPreference) string {
	var sb strings.Builder
	sb.WriteString("Investor preferences:\n")
	writePreference(&sb, pref)
	return sb.String()
}

func PortfolioInput(pref domain.PortfolioPreference, strategy domain.Strategy) string {
	var sb strings.Builder
	sb.WriteString("Investor preferences:\n")
	writePreference(&sb, pref)
	sb.WriteString("\nStrategy:\n")
	writeJSON(&sb, strategy)
	return sb.String()
}

func AnalysisInput(pref domain.PortfolioPreference, portfolio domain.Portfolio) string {
	var sb strings.Builder
	sb.WriteString("Investor preferences:\n")
	writePreference(&sb, pref)
	sb.WriteString("\nPortfolio:\n")
	writeJSON(&sb, portfolio)
	return sb.String()
}

func writePreference(sb *strings.Builder, pref domain.PortfolioPreference) {
	sb.WriteString(fmt.Sprintf("  Goal: %s\n", pref.Goal))
	sb.WriteString(fmt.Sprintf("  Risk profile: %s\n", pref.RiskProfile))
	sb.WriteString(fmt.Sprintf("  Investment horizon: %s\n", pref.InvestmentHorizon))
	sb.WriteString(fmt.Sprintf("  Stock exchange: %s\n", pref.StockExchange))
	sb.WriteString(fmt.Sprintf("  Initial investment: %s%.0f (%s)\n", pref.Currency.Symbol(), pref.InitialInvestment, pref.Currency))
}

func writeJSON(sb *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		sb.WriteString("unavailable\n")
		return
	}
	sb.Write(data)
	sb.WriteString("\n")
}

// ExtractJSON strips markdown fences and any text around the outermost JSON
// object of an LLM reply.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}
