// Package view derives display data from an AdvisorResult. Nothing here
// mutates its input.
package view

import (
	"strings"

	"etf-advisor/internal/domain"

	"github.com/shopspring/decimal"
)

// Slice is one displayed allocation bucket.
type Slice struct {
	Label string
	Value float64
}

// AllocationSlices keeps the buckets with a strictly positive value, in
// declaration order.
func AllocationSlices(a domain.AssetAllocation) []Slice {
	var out []Slice
	for _, b := range a.Buckets() {
		if b.Value == nil || *b.Value <= 0 {
			continue
		}
		out = append(out, Slice{Label: Label(b.Key), Value: *b.Value})
	}
	return out
}

// Label turns a bucket key such as real_estate_percentage into "real estate".
func Label(key string) string {
	key = strings.TrimSuffix(key, "_percentage")
	return strings.Join(strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	}), " ")
}

// Holdings returns the holdings in the order received.
func Holdings(p domain.Portfolio) []domain.Holding {
	return append([]domain.Holding(nil), p.Holdings...)
}

type BannerKind int

const (
	BannerApproved BannerKind = iota
	BannerReview
)

type Banner struct {
	Kind    BannerKind
	Title   string
	Message string
}

func NewBanner(summary domain.AnalysisResponse) Banner {
	if summary.IsApproved {
		return Banner{
			Kind:    BannerApproved,
			Title:   "Portfolio Approved",
			Message: "This portfolio meets all analysis criteria and aligns with your investment goals.",
		}
	}
	return Banner{
		Kind:    BannerReview,
		Title:   "Review Recommended",
		Message: "Some aspects of this portfolio may need adjustment based on the analysis.",
	}
}

type Section struct {
	Title string
	Body  string
}

// Sections lists the non-empty analysis texts in display order.
func Sections(summary domain.AnalysisResponse) []Section {
	all := []Section{
		{Title: "Strengths", Body: summary.Strengths},
		{Title: "Areas for Improvement", Body: summary.Weaknesses},
		{Title: "Overall Assessment", Body: summary.OverallAssessment},
		{Title: "Recommendations", Body: summary.Advices},
	}
	out := make([]Section, 0, len(all))
	for _, s := range all {
		if strings.TrimSpace(s.Body) != "" {
			out = append(out, s)
		}
	}
	return out
}

type Metric struct {
	Label string
	Value string
}

func Metrics(s domain.Strategy) []Metric {
	return []Metric{
		{Label: "Risk Tolerance", Value: s.RiskTolerance},
		{Label: "Time Horizon", Value: s.TimeHorizon},
		{Label: "Expected Returns", Value: s.ExpectedReturns},
	}
}

// Result bundles everything a front end renders for a completed analysis.
type Result struct {
	Name        string
	Strategy    domain.Strategy
	Banner      Banner
	Metrics     []Metric
	Allocation  []Slice
	Holdings    []domain.Holding
	Regions     []domain.Region
	Sectors     []domain.Sector
	Sections    []Section
	SumWarnings []SumWarning
}

func NewResult(r domain.AdvisorResult) Result {
	r = r.Clone()
	s := r.Portfolio.Strategy
	return Result{
		Name:        r.Portfolio.Name,
		Strategy:    s,
		Banner:      NewBanner(r.Analysis.Summary),
		Metrics:     Metrics(s),
		Allocation:  AllocationSlices(s.AssetAllocation),
		Holdings:    Holdings(r.Portfolio),
		Regions:     s.GeographicalDiversification.Regions,
		Sectors:     s.SectorDiversification.Sectors,
		Sections:    Sections(r.Analysis.Summary),
		SumWarnings: CheckSums(r),
	}
}

type Stage struct {
	Label string
	Done  bool
}

var stages = []struct {
	label string
	after float64
}{
	{"Analyzing investment goals and risk profile", -1},
	{"Generating investment strategy", 30},
	{"Building ETF portfolio", 60},
	{"Running performance analysis", 90},
}

// Stages is the progress checklist for a progress value in [0, 100].
func Stages(progress float64) []Stage {
	out := make([]Stage, len(stages))
	for i, s := range stages {
		out[i] = Stage{Label: s.label, Done: progress > s.after}
	}
	return out
}

// SumWarning reports a weight axis whose total exceeds 100.
type SumWarning struct {
	Axis  string
	Total float64
}

// CheckSums flags, without rescaling, any axis of r that sums above 100.
// Allocation buckets and holdings are independent axes and are not reconciled
// with each other.
func CheckSums(r domain.AdvisorResult) []SumWarning {
	hundred := decimal.NewFromInt(100)
	var out []SumWarning
	check := func(axis string, values []float64) {
		total := decimal.Zero
		for _, v := range values {
			total = total.Add(decimal.NewFromFloat(v))
		}
		if total.GreaterThan(hundred) {
			out = append(out, SumWarning{Axis: axis, Total: total.InexactFloat64()})
		}
	}

	var alloc []float64
	for _, b := range r.Portfolio.Strategy.AssetAllocation.Buckets() {
		if b.Value != nil && *b.Value > 0 {
			alloc = append(alloc, *b.Value)
		}
	}
	check("asset_allocation", alloc)

	holdings := make([]float64, 0, len(r.Portfolio.Holdings))
	for _, h := range r.Portfolio.Holdings {
		holdings = append(holdings, h.Weight)
	}
	check("holdings", holdings)

	regions := make([]float64, 0, len(r.Portfolio.Strategy.GeographicalDiversification.Regions))
	for _, reg := range r.Portfolio.Strategy.GeographicalDiversification.Regions {
		regions = append(regions, reg.Weight)
	}
	check("regions", regions)

	sectors := make([]float64, 0, len(r.Portfolio.Strategy.SectorDiversification.Sectors))
	for _, sec := range r.Portfolio.Strategy.SectorDiversification.Sectors {
		sectors = append(sectors, sec.Weight)
	}
	check("sectors", sectors)
	return out
}
