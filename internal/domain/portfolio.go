package domain

import "encoding/json"

// LLMModel is one entry of the recommendation service's model catalog.
type LLMModel struct {
	Provider    string `json:"provider"`
	ModelName   string `json:"model_name"`
	DisplayName string `json:"display_name"`
}

// ID is the key an AdvisorRequest uses to reference the model.
func (m LLMModel) ID() string {
	return m.ModelName
}

// AdvisorRequest is the body of POST /analyze.
type AdvisorRequest struct {
	Preferences     PortfolioPreference `json:"preferences"`
	InvestmentModel string              `json:"investment_model" binding:"required"`
	PortfolioModel  string              `json:"portfolio_model" binding:"required"`
	AnalystModel    string              `json:"analyst_model" binding:"required"`
}

// AssetAllocation holds optional bucket percentages. Field order is the
// display order of the buckets.
type AssetAllocation struct {
	StocksPercentage         *float64 `json:"stocks_percentage,omitempty"`
	BondsPercentage          *float64 `json:"bonds_percentage,omitempty"`
	RealEstatePercentage     *float64 `json:"real_estate_percentage,omitempty"`
	CommoditiesPercentage    *float64 `json:"commodities_percentage,omitempty"`
	CryptocurrencyPercentage *float64 `json:"cryptocurrency_percentage,omitempty"`
	CashPercentage           *float64 `json:"cash_percentage,omitempty"`
}

// AllocationBucket is one named bucket; Value is nil when the bucket is absent.
type AllocationBucket struct {
	Key   string
	Value *float64
}

// Buckets returns every bucket in declaration order, keyed by wire name.
func (a AssetAllocation) Buckets() []AllocationBucket {
	return []AllocationBucket{
		{Key: "stocks_percentage", Value: a.StocksPercentage},
		{Key: "bonds_percentage", Value: a.BondsPercentage},
		{Key: "real_estate_percentage", Value: a.RealEstatePercentage},
		{Key: "commodities_percentage", Value: a.CommoditiesPercentage},
		{Key: "cryptocurrency_percentage", Value: a.CryptocurrencyPercentage},
		{Key: "cash_percentage", Value: a.CashPercentage},
	}
}

type Region struct {
	Region string  `json:"region"`
	Weight float64 `json:"weight"`
}

type GeographicalDiversification struct {
	Regions []Region `json:"regions"`
}

type Sector struct {
	Sector string  `json:"sector"`
	Weight float64 `json:"weight"`
}

type SectorDiversification struct {
	Sectors []Sector `json:"sectors"`
}

type Strategy struct {
	Name                        string                      `json:"name"`
	Description                 string                      `json:"description,omitempty"`
	AssetAllocation             AssetAllocation             `json:"asset_allocation"`
	GeographicalDiversification GeographicalDiversification `json:"geographical_diversification"`
	SectorDiversification       SectorDiversification       `json:"sector_diversification"`
	StockExchange               StockExchange               `json:"stock_exchange"`
	RiskTolerance               string                      `json:"risk_tolerance"`
	TimeHorizon                 string                      `json:"time_horizon"`
	ExpectedReturns             string                      `json:"expected_returns"`
}

// Holding weights are percentages of the portfolio and are not reconciled
// against the strategy's allocation buckets.
type Holding struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	ISIN       string  `json:"isin"`
	AssetClass string  `json:"asset_class"`
	Weight     float64 `json:"weight"`
}

type Portfolio struct {
	Name     string    `json:"name"`
	Holdings []Holding `json:"holdings"`
	Strategy Strategy  `json:"strategy"`
}

type AnalysisResponse struct {
	IsApproved        bool   `json:"is_approved"`
	Strengths         string `json:"strengths,omitempty"`
	Weaknesses        string `json:"weaknesses,omitempty"`
	OverallAssessment string `json:"overall_assessment,omitempty"`
	Advices           string `json:"advices,omitempty"`
}

// UnmarshalJSON also accepts the "weeknesses" spelling emitted by older
// services.
func (a *AnalysisResponse) UnmarshalJSON(data []byte) error {
	type plain AnalysisResponse
	var raw struct {
		plain
		Weeknesses string `json:"weeknesses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AnalysisResponse(raw.plain)
	if a.Weaknesses == "" {
		a.Weaknesses = raw.Weeknesses
	}
	return nil
}

type Analysis struct {
	Summary AnalysisResponse `json:"summary"`
}

// AdvisorResult is the body returned by POST /analyze.
type AdvisorResult struct {
	Portfolio Portfolio `json:"portfolio"`
	Analysis  Analysis  `json:"analysis"`
}

// Clone returns a deep copy so callers never share slices or bucket pointers.
func (r AdvisorResult) Clone() AdvisorResult {
	out := r
	out.Portfolio.Holdings = append([]Holding(nil), r.Portfolio.Holdings...)
	s := &out.Portfolio.Strategy
	s.GeographicalDiversification.Regions = append([]Region(nil), r.Portfolio.Strategy.GeographicalDiversification.Regions...)
	s.SectorDiversification.Sectors = append([]Sector(nil), r.Portfolio.Strategy.SectorDiversification.Sectors...)
	a := &s.AssetAllocation
	a.StocksPercentage = clonePct(a.StocksPercentage)
	a.BondsPercentage = clonePct(a.BondsPercentage)
	a.RealEstatePercentage = clonePct(a.RealEstatePercentage)
	a.CommoditiesPercentage = clonePct(a.CommoditiesPercentage)
	a.CryptocurrencyPercentage = clonePct(a.CryptocurrencyPercentage)
	a.CashPercentage = clonePct(a.CashPercentage)
	return out
}

func clonePct(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Pct is a helper for building allocations in literals.
func Pct(v float64) *float64 {
	return &v
}
