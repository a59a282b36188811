package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinimumInvestment     = 100
	DefaultInvestmentStep = 100
	DefaultInvestment     = 10000
)

// PortfolioPreference is the frozen form of a PreferenceDraft. Build it with
// PreferenceDraft.Freeze; a zero value never passes Validate.
type PortfolioPreference struct {
	Goal              InvestmentGoal    `json:"goal"`
	RiskProfile       RiskProfile       `json:"risk_profile"`
	InvestmentHorizon InvestmentHorizon `json:"investment_horizon"`
	Currency          Currency          `json:"currency"`
	StockExchange     StockExchange     `json:"stock_exchange"`
	InitialInvestment float64           `json:"initial_investment"`
}

// PreferenceDraft is the partially filled preference edited by a front end.
// Zero-valued fields are unset.
type PreferenceDraft struct {
	Goal              InvestmentGoal
	RiskProfile       RiskProfile
	InvestmentHorizon InvestmentHorizon
	Currency          Currency
	StockExchange     StockExchange
	InitialInvestment float64
}

// NewPreferenceDraft returns a draft preloaded with the form defaults.
func NewPreferenceDraft() PreferenceDraft {
	return PreferenceDraft{
		Currency:          CurrencyUSD,
		StockExchange:     ExchangeNYSE,
		InitialInvestment: DefaultInvestment,
	}
}

// FieldError names one rejected field using its wire name.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every missing or invalid preference field.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "invalid preferences: " + strings.Join(parts, "; ")
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validate checks every field; step <= 0 selects DefaultInvestmentStep.
func (d PreferenceDraft) Validate(step float64) error {
	var fields []FieldError
	add := func(field, reason string) {
		fields = append(fields, FieldError{Field: field, Reason: reason})
	}

	if d.Goal == "" {
		add("goal", "required")
	} else if !d.Goal.IsValid() {
		add("goal", fmt.Sprintf("unknown value %q", d.Goal))
	}
	if d.RiskProfile == "" {
		add("risk_profile", "required")
	} else if !d.RiskProfile.IsValid() {
		add("risk_profile", fmt.Sprintf("unknown value %q", d.RiskProfile))
	}
	if d.InvestmentHorizon == "" {
		add("investment_horizon", "required")
	} else if !d.InvestmentHorizon.IsValid() {
		add("investment_horizon", fmt.Sprintf("unknown value %q", d.InvestmentHorizon))
	}
	if d.Currency == "" {
		add("currency", "required")
	} else if !d.Currency.IsValid() {
		add("currency", fmt.Sprintf("unknown value %q", d.Currency))
	}
	if d.StockExchange == "" {
		add("stock_exchange", "required")
	} else if !d.StockExchange.IsValid() {
		add("stock_exchange", fmt.Sprintf("unknown value %q", d.StockExchange))
	}
	if reason := checkAmount(d.InitialInvestment, step); reason != "" {
		add("initial_investment", reason)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Freeze validates the draft and returns the submittable preference.
func (d PreferenceDraft) Freeze(step float64) (PortfolioPreference, error) {
	if err := d.Validate(step); err != nil {
		return PortfolioPreference{}, err
	}
	return PortfolioPreference{
		Goal:              d.Goal,
		RiskProfile:       d.RiskProfile,
		InvestmentHorizon: d.InvestmentHorizon,
		Currency:          d.Currency,
		StockExchange:     d.StockExchange,
		InitialInvestment: d.InitialInvestment,
	}, nil
}

// Validate re-checks a preference, e.g. one decoded from the wire.
func (p PortfolioPreference) Validate(step float64) error {
	return p.Draft().Validate(step)
}

// Draft reopens the preference for editing.
func (p PortfolioPreference) Draft() PreferenceDraft {
	return PreferenceDraft{
		Goal:              p.Goal,
		RiskProfile:       p.RiskProfile,
		InvestmentHorizon: p.InvestmentHorizon,
		Currency:          p.Currency,
		StockExchange:     p.StockExchange,
		InitialInvestment: p.InitialInvestment,
	}
}

// checkAmount uses decimal arithmetic so that 10000.0 mod 100 is exactly zero.
func checkAmount(amount, step float64) string {
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		step = DefaultInvestmentStep
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "must be a finite number"
	}
	if amount == 0 {
		return "required"
	}

	value := decimal.NewFromFloat(amount)
	if value.LessThan(decimal.NewFromInt(MinimumInvestment)) {
		return fmt.Sprintf("must be at least %d", MinimumInvestment)
	}
	stepValue := decimal.NewFromFloat(step)
	if !value.Mod(stepValue).IsZero() {
		return fmt.Sprintf("must be a multiple of %s", stepValue.String())
	}
	return ""
}
