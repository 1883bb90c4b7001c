package pipeline

import (
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

// heavyComplexityKeywords each add 0.5 to the complexity score.
var heavyComplexityKeywords = []string{
	"enterprise",
	"integration",
	"api",
	"database",
	"migration",
	"authentication",
	"security",
	"compliance",
	"scalab",
	"crm",
	"erp",
	"single sign-on",
	"accessibility audit",
}

// lightComplexityKeywords each add 0.3 to the complexity score.
var lightComplexityKeywords = []string{
	"responsive",
	"cms",
	"seo",
	"analytics",
	"redesign",
	"e-commerce",
	"payment",
	"multilingual",
	"newsletter",
}

// budgetScaleKeywords each add a full point: language that signals
// large-program scope regardless of technical detail.
var budgetScaleKeywords = []string{
	"million",
	"multi-phase",
	"multi-year",
	"statewide",
	"enterprise-wide",
}

// AnalyzeComplexity grades the requested work from the combined description
// and supplemental document text plus the selected services. Pure function:
// a length-tier base score (1-3) accumulates weighted keyword hits; totals of
// 6 or more are high, 3 or more medium, anything else low.
func AnalyzeComplexity(bid model.BidRequest) model.ComplexityLevel {
	combined := strings.ToLower(bid.Description + " " + bid.DocumentsText)

	score := lengthTier(len(combined))

	for _, kw := range heavyComplexityKeywords {
		if strings.Contains(combined, kw) {
			score += 0.5
		}
	}
	for _, kw := range lightComplexityKeywords {
		if strings.Contains(combined, kw) {
			score += 0.3
		}
	}

	if len(bid.Services) > 3 {
		score++
	}
	for _, kw := range budgetScaleKeywords {
		if strings.Contains(combined, kw) {
			score++
		}
	}

	switch {
	case score >= 6:
		return model.ComplexityHigh
	case score >= 3:
		return model.ComplexityMedium
	default:
		return model.ComplexityLow
	}
}

// lengthTier maps combined text length to a base score of 1-3.
func lengthTier(n int) float64 {
	switch {
	case n >= 8000:
		return 3
	case n >= 3000:
		return 2
	default:
		return 1
	}
}
