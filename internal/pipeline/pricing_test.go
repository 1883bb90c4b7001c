package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestBasePriceRange(t *testing.T) {
	tests := []struct {
		name       string
		service    string
		complexity model.ComplexityLevel
		want       model.PriceRange
	}{
		{"web development high", "Web Development", model.ComplexityHigh, model.PriceRange{Min: 95_000, Max: 200_000}},
		{"web development low", "web development", model.ComplexityLow, model.PriceRange{Min: 15_000, Max: 35_000}},
		{"seo medium", "SEO Services", model.ComplexityMedium, model.PriceRange{Min: 20_000, Max: 45_000}},
		{"ecommerce beats web development", "E-Commerce Web Development", model.ComplexityLow, model.PriceRange{Min: 20_000, Max: 45_000}},
		{"unknown service falls back", "Drone Photography", model.ComplexityMedium, model.PriceRange{Min: 30_000, Max: 80_000}},
		{"empty service falls back", "", model.ComplexityHigh, model.PriceRange{Min: 80_000, Max: 175_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BasePriceRange(tt.service, tt.complexity))
		})
	}
}

func TestCalculatePriceMidpointMarkup(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Corporate site rebuild", Services: []string{"Web Development"}}
	market := model.MarketRateEstimate{LocalityFactor: 1.0}

	quote := p.CalculatePrice(bid, model.ClientCommercial, model.ComplexityLow, market, nil)

	// midpoint of 15000..35000 is 25000, times the 8% markup.
	assert.Equal(t, 27_000.0, quote.ProposedPrice)
	assert.Equal(t, model.PriceRange{Min: 15_000, Max: 35_000}, quote.PriceRange)
	assert.Equal(t, model.ComplexityLow, quote.Complexity)
	assert.Nil(t, quote.Budget)
	assert.NotEmpty(t, quote.Justification)
}

func TestCalculatePriceAverageRateClamped(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Site rebuild", Services: []string{"Web Development"}}
	market := model.MarketRateEstimate{LocalityFactor: 1.0, AverageRate: floatPtr(40_000)}

	quote := p.CalculatePrice(bid, model.ClientCommercial, model.ComplexityLow, market, nil)

	// 40000 * 1.05 = 42000, clamped to the adjusted range max of 35000.
	assert.Equal(t, 35_000.0, quote.ProposedPrice)
}

func TestCalculatePriceLocalityAdjustment(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Site rebuild", Services: []string{"Web Development"}}
	market := model.MarketRateEstimate{LocalityFactor: 1.5}

	quote := p.CalculatePrice(bid, model.ClientCommercial, model.ComplexityLow, market, nil)

	assert.Equal(t, model.PriceRange{Min: 22_500, Max: 52_500}, quote.PriceRange)
	assert.Equal(t, 40_500.0, quote.ProposedPrice)
}

func TestCalculatePriceMinimumEngagement(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Local SEO tune-up", Services: []string{"SEO"}}
	// Cheap market: adjusted range 5600..14000, average rate clamps to 5600.
	market := model.MarketRateEstimate{LocalityFactor: 0.7, AverageRate: floatPtr(5_000)}

	quote := p.CalculatePrice(bid, model.ClientCommercial, model.ComplexityLow, market, nil)

	assert.Equal(t, 10_000.0, quote.ProposedPrice)
}

func TestCalculatePriceBudgetCap(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Citywide portal", Services: []string{"Web Development"}}
	market := model.MarketRateEstimate{LocalityFactor: 1.0}
	budget := &model.AdoptedBudgetData{
		ClientType:        model.ClientGovernment,
		TotalAnnualBudget: floatPtr(2_500_000),
		FiscalYear:        "FY2026",
	}

	quote := p.CalculatePrice(bid, model.ClientGovernment, model.ComplexityHigh, market, budget)

	// Uncapped candidate would be 147500 * 1.08; the 0.5% total-budget cap
	// brings it down to 12500.
	assert.Equal(t, 12_500.0, quote.ProposedPrice)
	require.NotNil(t, quote.Budget)
	assert.NotEmpty(t, quote.Budget.ProportionalityAnalysis)
}

func TestCalculatePriceCapPicksTightestShare(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Portal", Services: []string{"Web Development"}}
	market := model.MarketRateEstimate{LocalityFactor: 1.0}
	budget := &model.AdoptedBudgetData{
		ClientType:               model.ClientGovernment,
		TotalAnnualBudget:        floatPtr(100_000_000), // 0.5% -> 500k
		RelevantDepartmentBudget: floatPtr(1_000_000),   // 3% -> 30k
		CapitalProgramBudget:     floatPtr(800_000),     // 10% -> 80k
	}

	quote := p.CalculatePrice(bid, model.ClientGovernment, model.ComplexityHigh, market, budget)

	assert.Equal(t, 30_000.0, quote.ProposedPrice)
}

func TestCalculatePriceCapNeverExceeded(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	market := model.MarketRateEstimate{LocalityFactor: 1.2, AverageRate: floatPtr(90_000)}
	budgets := []*model.AdoptedBudgetData{
		{ClientType: model.ClientGovernment, TotalAnnualBudget: floatPtr(4_000_000)},
		{ClientType: model.ClientGovernment, RelevantDepartmentBudget: floatPtr(600_000)},
		{ClientType: model.ClientEnterprise, CapitalProgramBudget: floatPtr(350_000)},
	}

	for _, budget := range budgets {
		bid := model.BidRequest{Title: "Engagement", Services: []string{"Consulting"}}
		quote := p.CalculatePrice(bid, budget.ClientType, model.ComplexityHigh, market, budget)
		ceiling, ok := budgetCap(budget)
		require.True(t, ok)
		assert.LessOrEqual(t, quote.ProposedPrice, ceiling)
	}
}

func TestJustificationNeverLeaksBudget(t *testing.T) {
	p := &Pipeline{minimumEngagement: 10_000}
	bid := model.BidRequest{Title: "Citywide portal", IssuingOrg: "City of Springfield", Services: []string{"Web Development"}}
	market := model.MarketRateEstimate{
		LocalityFactor: 1.0,
		Insights:       "Regional rates for municipal web work run slightly above the national average.",
	}
	budget := &model.AdoptedBudgetData{
		ClientType:           model.ClientGovernment,
		TotalAnnualBudget:    floatPtr(45_000_000),
		CapitalProgramBudget: floatPtr(2_500_000),
		FiscalYear:           "FY2026",
		BudgetSource:         "FY2026 Adopted Budget, City of Springfield Finance Department",
	}

	quote := p.CalculatePrice(bid, model.ClientGovernment, model.ComplexityHigh, market, budget)

	for _, leaked := range []string{
		"45,000,000", "45000000", "45 million", "45M",
		"2,500,000", "2500000", "2.5 million", "2.5M",
		budget.BudgetSource,
	} {
		assert.NotContains(t, quote.Justification, leaked)
	}
	// The internal analysis keeps the figures; only client-facing text is clean.
	assert.Contains(t, quote.Budget.ProportionalityAnalysis, "45,000,000")
	assert.Contains(t, quote.Justification, "budgetary prudence")
	assert.Contains(t, quote.Justification, strings.TrimSpace(market.Insights))
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "$125,000", FormatDollars(125_000))
	assert.Equal(t, "$1,250,000", FormatDollars(1_250_000))
	assert.Equal(t, "$9,800", FormatDollars(9_800.4))
}
