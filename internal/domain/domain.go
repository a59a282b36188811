package domain

import (
	"fmt"
	"strings"
)

// Currency is the denomination of the initial investment.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyCHF Currency = "CHF"
)

func AllCurrencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR, CurrencyJPY, CurrencyGBP, CurrencyCAD, CurrencyAUD, CurrencyCHF}
}

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyJPY, CurrencyGBP, CurrencyCAD, CurrencyAUD, CurrencyCHF:
		return true
	}
	return false
}

// Symbol returns the display prefix used next to amounts.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD, CurrencyCAD, CurrencyAUD:
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyJPY:
		return "¥"
	case CurrencyGBP:
		return "£"
	case CurrencyCHF:
		return "CHF "
	}
	return ""
}

type StockExchange string

const (
	ExchangeNYSE          StockExchange = "NYSE"
	ExchangeNASDAQ        StockExchange = "NASDAQ"
	ExchangeLSE           StockExchange = "LSE"
	ExchangeEuronext      StockExchange = "EURONEXT"
	ExchangeTSE           StockExchange = "TSE"
	ExchangeTSX           StockExchange = "TSX"
	ExchangeASX           StockExchange = "ASX"
	ExchangeSIX           StockExchange = "SIX"
	ExchangeBorsaItaliana StockExchange = "BORSA_ITALIANA"
)

func AllStockExchanges() []StockExchange {
	return []StockExchange{
		ExchangeNYSE, ExchangeNASDAQ, ExchangeLSE, ExchangeEuronext, ExchangeTSE,
		ExchangeTSX, ExchangeASX, ExchangeSIX, ExchangeBorsaItaliana,
	}
}

func (e StockExchange) IsValid() bool {
	switch e {
	case ExchangeNYSE, ExchangeNASDAQ, ExchangeLSE, ExchangeEuronext, ExchangeTSE,
		ExchangeTSX, ExchangeASX, ExchangeSIX, ExchangeBorsaItaliana:
		return true
	}
	return false
}

type InvestmentGoal string

const (
	GoalRetirement          InvestmentGoal = "Retirement"
	GoalWealthBuilding      InvestmentGoal = "Wealth Building"
	GoalIncomeGeneration    InvestmentGoal = "Income Generation"
	GoalCapitalPreservation InvestmentGoal = "Capital Preservation"
	GoalEducationFunding    InvestmentGoal = "Education Funding"
	GoalHousePurchase       InvestmentGoal = "House Purchase"
	GoalEmergencyFund       InvestmentGoal = "Emergency Fund"
	GoalShortTermSavings    InvestmentGoal = "Short Term Savings"
)

func AllInvestmentGoals() []InvestmentGoal {
	return []InvestmentGoal{
		GoalRetirement, GoalWealthBuilding, GoalIncomeGeneration, GoalCapitalPreservation,
		GoalEducationFunding, GoalHousePurchase, GoalEmergencyFund, GoalShortTermSavings,
	}
}

func (g InvestmentGoal) IsValid() bool {
	switch g {
	case GoalRetirement, GoalWealthBuilding, GoalIncomeGeneration, GoalCapitalPreservation,
		GoalEducationFunding, GoalHousePurchase, GoalEmergencyFund, GoalShortTermSavings:
		return true
	}
	return false
}

type RiskProfile string

const (
	RiskUltraConservative    RiskProfile = "Ultra Conservative"
	RiskConservative         RiskProfile = "Conservative"
	RiskModerateConservative RiskProfile = "Moderate Conservative"
	RiskModerate             RiskProfile = "Moderate"
	RiskModerateAggressive   RiskProfile = "Moderate Aggressive"
	RiskAggressive           RiskProfile = "Aggressive"
	RiskUltraAggressive      RiskProfile = "Ultra Aggressive"
)

func AllRiskProfiles() []RiskProfile {
	return []RiskProfile{
		RiskUltraConservative, RiskConservative, RiskModerateConservative, RiskModerate,
		RiskModerateAggressive, RiskAggressive, RiskUltraAggressive,
	}
}

func (r RiskProfile) IsValid() bool {
	switch r {
	case RiskUltraConservative, RiskConservative, RiskModerateConservative, RiskModerate,
		RiskModerateAggressive, RiskAggressive, RiskUltraAggressive:
		return true
	}
	return false
}

type InvestmentHorizon string

const (
	HorizonShortTerm    InvestmentHorizon = "Short Term (1-3 years)"
	HorizonMediumTerm   InvestmentHorizon = "Medium Term (3-7 years)"
	HorizonLongTerm     InvestmentHorizon = "Long Term (7-15 years)"
	HorizonVeryLongTerm InvestmentHorizon = "Very Long Term (15+ years)"
)

func AllInvestmentHorizons() []InvestmentHorizon {
	return []InvestmentHorizon{HorizonShortTerm, HorizonMediumTerm, HorizonLongTerm, HorizonVeryLongTerm}
}

func (h InvestmentHorizon) IsValid() bool {
	switch h {
	case HorizonShortTerm, HorizonMediumTerm, HorizonLongTerm, HorizonVeryLongTerm:
		return true
	}
	return false
}

// ParseCurrency matches the wire identifier case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	return parseEnum("currency", s, AllCurrencies())
}

func ParseStockExchange(s string) (StockExchange, error) {
	return parseEnum("stock exchange", s, AllStockExchanges())
}

func ParseInvestmentGoal(s string) (InvestmentGoal, error) {
	return parseEnum("investment goal", s, AllInvestmentGoals())
}

func ParseRiskProfile(s string) (RiskProfile, error) {
	return parseEnum("risk profile", s, AllRiskProfiles())
}

// ParseInvestmentHorizon also accepts the label without the year range,
// e.g. "long term".
func ParseInvestmentHorizon(s string) (InvestmentHorizon, error) {
	h, err := parseEnum("investment horizon", s, AllInvestmentHorizons())
	if err == nil {
		return h, nil
	}
	want := strings.TrimSpace(s)
	for _, candidate := range AllInvestmentHorizons() {
		label, _, _ := strings.Cut(string(candidate), " (")
		if strings.EqualFold(label, want) {
			return candidate, nil
		}
	}
	return "", err
}

func parseEnum[T ~string](kind, s string, values []T) (T, error) {
	want := strings.TrimSpace(s)
	for _, v := range values {
		if strings.EqualFold(string(v), want) {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s: %q", kind, s)
}
