package recommender

import (
	"context"
	"fmt"
	"strings"

	"etf-advisor/internal/domain"
)

const ProviderStatic = "static"

// Static returns the same reference portfolio for every request, parameterised
// only by the preference. It needs no credentials.
type Static struct{}

func (Static) Strategy(ctx context.Context, model string, pref domain.PortfolioPreference) (domain.Strategy, error) {
	if err := ctx.Err(); err != nil {
		return domain.Strategy{}, err
	}
	return domain.Strategy{
		Name:        fmt.Sprintf("%s Strategy", pref.Goal),
		Description: fmt.Sprintf("A balanced strategy tailored for %s", strings.ToLower(string(pref.Goal))),
		AssetAllocation: domain.AssetAllocation{
			StocksPercentage:     domain.Pct(60),
			BondsPercentage:      domain.Pct(30),
			RealEstatePercentage: domain.Pct(5),
			CashPercentage:       domain.Pct(5),
		},
		GeographicalDiversification: domain.GeographicalDiversification{Regions: []domain.Region{
			{Region: "North America", Weight: 50},
			{Region: "Europe", Weight: 25},
			{Region: "Asia Pacific", Weight: 20},
			{Region: "Emerging Markets", Weight: 5},
		}},
		SectorDiversification: domain.SectorDiversification{Sectors: []domain.Sector{
			{Sector: "Technology", Weight: 25},
			{Sector: "Healthcare", Weight: 20},
			{Sector: "Financial Services", Weight: 15},
			{Sector: "Consumer", Weight: 15},
			{Sector: "Industrial", Weight: 15},
			{Sector: "Other", Weight: 10},
		}},
		StockExchange:   pref.StockExchange,
		RiskTolerance:   string(pref.RiskProfile),
		TimeHorizon:     string(pref.InvestmentHorizon),
		ExpectedReturns: "7-9% annually",
	}, nil
}

func (Static) Portfolio(ctx context.Context, model string, pref domain.PortfolioPreference, strategy domain.Strategy) (domain.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return domain.Portfolio{}, err
	}
	return domain.Portfolio{
		Name: "AI-Generated Portfolio",
		Holdings: []domain.Holding{
			{Symbol: "VTI", Name: "Vanguard Total Stock Market ETF", ISIN: "US9229087690", AssetClass: "Stocks", Weight: 40},
			{Symbol: "BND", Name: "Vanguard Total Bond Market ETF", ISIN: "US9219378356", AssetClass: "Bonds", Weight: 30},
			{Symbol: "VNQ", Name: "Vanguard Real Estate ETF", ISIN: "US92204A1088", AssetClass: "Real Estate", Weight: 20},
			{Symbol: "VXUS", Name: "Vanguard Total International Stock ETF", ISIN: "US92204A5065", AssetClass: "Stocks", Weight: 10},
		},
		Strategy: strategy,
	}, nil
}

func (Static) Analyze(ctx context.Context, model string, pref domain.PortfolioPreference, portfolio domain.Portfolio) (domain.AnalysisResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.AnalysisResponse{}, err
	}
	return domain.AnalysisResponse{
		IsApproved:        true,
		Strengths:         "Well-diversified portfolio with low fees. Strong geographical and sector diversification. Alignment with risk profile is excellent.",
		Weaknesses:        "Slightly lower expected returns compared to more aggressive strategies. Limited exposure to emerging markets.",
		OverallAssessment: "This is a solid portfolio recommendation that balances growth potential with risk management. The ETF selection provides broad market exposure with minimal costs.",
		Advices:           "Consider rebalancing quarterly. Monitor performance against benchmarks. Evaluate increasing emerging market exposure if comfortable with additional risk.",
	}, nil
}
