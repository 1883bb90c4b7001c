package pipeline

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/proposal-cli/internal/model"
)

// Candidate price rules. A researched comparable rate gets a 5% lift and is
// trusted over the matrix midpoint; an unanchored midpoint gets an 8% markup.
const (
	averageRateMarkup = 1.05
	midpointMarkup    = 1.08
)

// Budget cap fractions. An engagement should not exceed these shares of the
// client's known budget figures; the tightest applicable share wins.
const (
	capitalBudgetShare    = 0.10
	departmentBudgetShare = 0.03
	totalBudgetShare      = 0.005
)

// serviceMatchOrder fixes the keyword probe order. Ecommerce precedes web
// development so "E-Commerce Website Development" lands in the ecommerce
// bucket rather than whichever matched first.
var serviceMatchOrder = []string{
	"ecommerce",
	"web development",
	"digital marketing",
	"seo",
	"branding",
	"consulting",
}

// baseRanges is the static price matrix keyed by service keyword, in
// low/medium/high complexity order. Dollar figures reflect the firm's
// published engagement tiers.
var baseRanges = map[string][3]model.PriceRange{
	"web development": {
		{Min: 15_000, Max: 35_000},
		{Min: 35_000, Max: 95_000},
		{Min: 95_000, Max: 200_000},
	},
	"digital marketing": {
		{Min: 10_000, Max: 25_000},
		{Min: 25_000, Max: 60_000},
		{Min: 60_000, Max: 150_000},
	},
	"seo": {
		{Min: 8_000, Max: 20_000},
		{Min: 20_000, Max: 45_000},
		{Min: 45_000, Max: 100_000},
	},
	"branding": {
		{Min: 12_000, Max: 30_000},
		{Min: 30_000, Max: 70_000},
		{Min: 70_000, Max: 160_000},
	},
	"ecommerce": {
		{Min: 20_000, Max: 45_000},
		{Min: 45_000, Max: 110_000},
		{Min: 110_000, Max: 250_000},
	},
	"consulting": {
		{Min: 10_000, Max: 30_000},
		{Min: 30_000, Max: 75_000},
		{Min: 75_000, Max: 180_000},
	},
}

// defaultRanges covers bids whose service mix matches no matrix keyword.
var defaultRanges = [3]model.PriceRange{
	{Min: 12_000, Max: 30_000},
	{Min: 30_000, Max: 80_000},
	{Min: 80_000, Max: 175_000},
}

// BasePriceRange selects the matrix row for a service and complexity.
// Matching is by keyword containment so "E-Commerce Website Development"
// hits the ecommerce bucket.
func BasePriceRange(service string, complexity model.ComplexityLevel) model.PriceRange {
	idx := complexityIndex(complexity)
	normalized := strings.ToLower(strings.ReplaceAll(service, "-", ""))
	for _, keyword := range serviceMatchOrder {
		if strings.Contains(normalized, keyword) {
			return baseRanges[keyword][idx]
		}
	}
	return defaultRanges[idx]
}

func complexityIndex(c model.ComplexityLevel) int {
	switch c {
	case model.ComplexityHigh:
		return 2
	case model.ComplexityMedium:
		return 1
	default:
		return 0
	}
}

// CalculatePrice runs the deterministic pricing algorithm. Pure function of
// its inputs: base matrix lookup, locality adjustment, candidate selection,
// confidential budget capping, and justification assembly. When budget data
// is present its analysis fields are filled in as a side effect.
func (p *Pipeline) CalculatePrice(
	bid model.BidRequest,
	clientType model.ClientType,
	complexity model.ComplexityLevel,
	market model.MarketRateEstimate,
	budget *model.AdoptedBudgetData,
) *model.PriceQuote {
	base := BasePriceRange(bid.PrimaryService(), complexity)
	adjusted := base.Scale(market.LocalityFactor)

	var candidate float64
	if market.AverageRate != nil {
		candidate = adjusted.Clamp(*market.AverageRate * averageRateMarkup)
	} else {
		candidate = adjusted.Midpoint() * midpointMarkup
	}

	if candidate < p.minimumEngagement {
		candidate = p.minimumEngagement
	}

	if ceiling, ok := budgetCap(budget); ok && candidate > ceiling {
		candidate = ceiling
	}
	candidate = math.Round(candidate)

	if budget != nil {
		budget.ProportionalityAnalysis = proportionalityAnalysis(candidate, budget)
		budget.StrategicAlignment = strategicAlignment(bid, budget)
	}

	return &model.PriceQuote{
		ProposedPrice: candidate,
		PriceRange:    adjusted,
		ClientType:    clientType,
		Complexity:    complexity,
		Justification: buildJustification(bid, clientType, complexity, market, budget),
		Market:        market,
		Budget:        budget,
	}
}

// budgetCap derives the confidential price ceiling from whichever budget
// figures are known. Returns false when no figure is available.
func budgetCap(budget *model.AdoptedBudgetData) (float64, bool) {
	if !budget.HasFigures() {
		return 0, false
	}
	ceiling := math.Inf(1)
	if budget.CapitalProgramBudget != nil {
		ceiling = math.Min(ceiling, *budget.CapitalProgramBudget*capitalBudgetShare)
	}
	if budget.RelevantDepartmentBudget != nil {
		ceiling = math.Min(ceiling, *budget.RelevantDepartmentBudget*departmentBudgetShare)
	}
	if budget.TotalAnnualBudget != nil {
		ceiling = math.Min(ceiling, *budget.TotalAnnualBudget*totalBudgetShare)
	}
	return ceiling, true
}

// proportionalityAnalysis expresses the proposed price as a share of each
// known budget figure. Internal use only; it carries the client's actual
// figures and must never reach client-facing text.
func proportionalityAnalysis(price float64, budget *model.AdoptedBudgetData) string {
	if !budget.HasFigures() {
		return ""
	}
	var parts []string
	if budget.TotalAnnualBudget != nil {
		parts = append(parts, fmt.Sprintf("%.3f%% of the %s total annual budget (%s)",
			price / *budget.TotalAnnualBudget*100, budget.FiscalYear, FormatDollars(*budget.TotalAnnualBudget)))
	}
	if budget.RelevantDepartmentBudget != nil {
		parts = append(parts, fmt.Sprintf("%.2f%% of the relevant department budget (%s)",
			price / *budget.RelevantDepartmentBudget*100, FormatDollars(*budget.RelevantDepartmentBudget)))
	}
	if budget.CapitalProgramBudget != nil {
		parts = append(parts, fmt.Sprintf("%.2f%% of the capital program budget (%s)",
			price / *budget.CapitalProgramBudget*100, FormatDollars(*budget.CapitalProgramBudget)))
	}
	return fmt.Sprintf("Proposed price of %s represents %s.", FormatDollars(price), strings.Join(parts, "; "))
}

// strategicAlignment ties the engagement to the client's stated funding
// priorities. Internal use only.
func strategicAlignment(bid model.BidRequest, budget *model.AdoptedBudgetData) string {
	if len(budget.FundingPriorities) == 0 {
		return ""
	}
	return fmt.Sprintf("The %s engagement aligns with stated funding priorities: %s.",
		bid.PrimaryService(), strings.Join(budget.FundingPriorities, "; "))
}

// buildJustification assembles the client-facing pricing rationale. For
// government and enterprise clients it closes with a budgetary-prudence
// paragraph that carries no dollar figures or percentages from the client's
// budget; the actual figures live only in the internal analysis fields.
func buildJustification(
	bid model.BidRequest,
	clientType model.ClientType,
	complexity model.ComplexityLevel,
	market model.MarketRateEstimate,
	budget *model.AdoptedBudgetData,
) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"This price reflects a %s-complexity %s engagement, scoped from the solicitation requirements and priced against our published engagement tiers.",
		complexity, serviceLabel(bid))

	if market.Insights != "" {
		b.WriteString(" ")
		b.WriteString(strings.TrimSpace(market.Insights))
	}
	if market.AverageRate != nil {
		b.WriteString(" The proposed figure is anchored to prevailing rates for comparable regional engagements.")
	}

	if clientType == model.ClientGovernment || clientType == model.ClientEnterprise {
		b.WriteString(" Our pricing is structured with budgetary prudence in mind: the engagement is sized to deliver the required scope while remaining a responsible use of ")
		if clientType == model.ClientGovernment {
			b.WriteString("public funds, with transparent deliverable-based milestones and no open-ended billing.")
		} else {
			b.WriteString("allocated program funds, with transparent deliverable-based milestones and no open-ended billing.")
		}
	}

	// Enforced, not just avoided: scrub any budget figure that slipped in.
	return RedactBudgetFigures(b.String(), budget)
}

func serviceLabel(bid model.BidRequest) string {
	if s := bid.PrimaryService(); s != "" {
		return strings.ToLower(s)
	}
	return "professional services"
}

var dollarPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatDollars renders a dollar amount with thousands separators, e.g.
// "$125,000".
func FormatDollars(v float64) string {
	return dollarPrinter.Sprintf("$%d", int64(math.Round(v)))
}
