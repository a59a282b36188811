package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func validDraft() PreferenceDraft {
	d := NewPreferenceDraft()
	d.Goal = GoalRetirement
	d.RiskProfile = RiskModerate
	d.InvestmentHorizon = HorizonLongTerm
	return d
}

func TestNewPreferenceDraftDefaults(t *testing.T) {
	d := NewPreferenceDraft()
	if d.Currency != CurrencyUSD || d.StockExchange != ExchangeNYSE || d.InitialInvestment != 10000 {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.Goal != "" || d.RiskProfile != "" || d.InvestmentHorizon != "" {
		t.Fatalf("selectable fields should start unset: %+v", d)
	}
}

func TestFreezeValidDraft(t *testing.T) {
	pref, err := validDraft().Freeze(DefaultInvestmentStep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pref.Goal != GoalRetirement || pref.InitialInvestment != 10000 {
		t.Fatalf("unexpected preference: %+v", pref)
	}
	if err := pref.Validate(DefaultInvestmentStep); err != nil {
		t.Fatalf("frozen preference should stay valid: %v", err)
	}
}

func TestValidateListsEveryMissingField(t *testing.T) {
	err := PreferenceDraft{}.Validate(DefaultInvestmentStep)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"goal", "risk_profile", "investment_horizon", "currency", "stock_exchange", "initial_investment"} {
		if !verr.Has(field) {
			t.Fatalf("expected %s in %v", field, verr.Fields)
		}
	}
	if len(verr.Fields) != 6 {
		t.Fatalf("expected 6 field errors, got %d", len(verr.Fields))
	}
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		amount float64
		step   float64
		ok     bool
	}{
		{100, 100, true},
		{10000, 100, true},
		{250, 50, true},
		{99, 100, false},
		{50, 100, false},
		{-100, 100, false},
		{150, 100, false},
		{100.5, 100, false},
		{0, 100, false},
		{1000, 0, true},
		{1050, 0, false},
	}
	for _, tc := range tests {
		d := validDraft()
		d.InitialInvestment = tc.amount
		err := d.Validate(tc.step)
		if tc.ok && err != nil {
			t.Fatalf("amount %v step %v: unexpected error %v", tc.amount, tc.step, err)
		}
		if !tc.ok {
			var verr *ValidationError
			if !errors.As(err, &verr) || !verr.Has("initial_investment") || len(verr.Fields) != 1 {
				t.Fatalf("amount %v step %v: expected only initial_investment error, got %v", tc.amount, tc.step, err)
			}
		}
	}
}

func TestValidateRejectsUnknownEnumValue(t *testing.T) {
	d := validDraft()
	d.RiskProfile = "Reckless"
	err := d.Validate(DefaultInvestmentStep)
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("risk_profile") {
		t.Fatalf("expected risk_profile error, got %v", err)
	}
}

func TestZeroPreferenceIsNotSubmittable(t *testing.T) {
	if err := (PortfolioPreference{}).Validate(DefaultInvestmentStep); err == nil {
		t.Fatal("zero preference must fail validation")
	}
}

func TestParseEnums(t *testing.T) {
	if g, err := ParseInvestmentGoal("wealth building"); err != nil || g != GoalWealthBuilding {
		t.Fatalf("unexpected goal %q err %v", g, err)
	}
	if h, err := ParseInvestmentHorizon("Long Term"); err != nil || h != HorizonLongTerm {
		t.Fatalf("unexpected horizon %q err %v", h, err)
	}
	if h, err := ParseInvestmentHorizon("Very Long Term (15+ years)"); err != nil || h != HorizonVeryLongTerm {
		t.Fatalf("unexpected horizon %q err %v", h, err)
	}
	if e, err := ParseStockExchange("borsa_italiana"); err != nil || e != ExchangeBorsaItaliana {
		t.Fatalf("unexpected exchange %q err %v", e, err)
	}
	if _, err := ParseCurrency("BTC"); err == nil {
		t.Fatal("expected error for unknown currency")
	}
}

func TestAllEnumsAreValid(t *testing.T) {
	for _, c := range AllCurrencies() {
		if !c.IsValid() || c.Symbol() == "" {
			t.Fatalf("currency %s not fully mapped", c)
		}
	}
	for _, e := range AllStockExchanges() {
		if !e.IsValid() {
			t.Fatalf("exchange %s invalid", e)
		}
	}
	for _, g := range AllInvestmentGoals() {
		if !g.IsValid() {
			t.Fatalf("goal %s invalid", g)
		}
	}
	for _, r := range AllRiskProfiles() {
		if !r.IsValid() {
			t.Fatalf("risk %s invalid", r)
		}
	}
	for _, h := range AllInvestmentHorizons() {
		if !h.IsValid() {
			t.Fatalf("horizon %s invalid", h)
		}
	}
	if len(AllStockExchanges()) != 9 || len(AllInvestmentGoals()) != 8 || len(AllRiskProfiles()) != 7 {
		t.Fatal("unexpected enum sizes")
	}
}

func TestAnalysisResponseAcceptsLegacySpelling(t *testing.T) {
	var a AnalysisResponse
	if err := json.Unmarshal([]byte(`{"is_approved":true,"weeknesses":"fees"}`), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.IsApproved || a.Weaknesses != "fees" {
		t.Fatalf("unexpected analysis: %+v", a)
	}

	if err := json.Unmarshal([]byte(`{"is_approved":false,"weaknesses":"new","weeknesses":"old"}`), &a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.IsApproved || a.Weaknesses != "new" {
		t.Fatalf("current spelling should win: %+v", a)
	}
}

func TestAllocationBucketsOrder(t *testing.T) {
	a := AssetAllocation{StocksPercentage: Pct(60), CashPercentage: Pct(10)}
	buckets := a.Buckets()
	if len(buckets) != 6 || buckets[0].Key != "stocks_percentage" || buckets[5].Key != "cash_percentage" {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
	if buckets[1].Value != nil || *buckets[5].Value != 10 {
		t.Fatalf("unexpected bucket values: %+v", buckets)
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	orig := AdvisorResult{Portfolio: Portfolio{
		Holdings: []Holding{{Symbol: "VTI", Weight: 40}},
		Strategy: Strategy{AssetAllocation: AssetAllocation{StocksPercentage: Pct(60)}},
	}}
	c := orig.Clone()
	c.Portfolio.Holdings[0].Weight = 1
	*c.Portfolio.Strategy.AssetAllocation.StocksPercentage = 1
	if orig.Portfolio.Holdings[0].Weight != 40 || *orig.Portfolio.Strategy.AssetAllocation.StocksPercentage != 60 {
		t.Fatalf("clone shares memory with original: %+v", orig)
	}
}
