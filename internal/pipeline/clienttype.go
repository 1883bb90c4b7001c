package pipeline

import (
	"strings"

	"github.com/sells-group/proposal-cli/internal/model"
)

// governmentKeywords identify public-sector issuers. Any single hit
// classifies the client as government.
var governmentKeywords = []string{
	"city of",
	"county of",
	"state of",
	"town of",
	"village of",
	"borough of",
	"department of",
	"school district",
	"school board",
	"housing authority",
	"transit authority",
	"water district",
	"public works",
	"municipal",
	"township",
	"federal agency",
	"government of",
}

// enterpriseKeywords contribute to the enterprise score; two or more signals
// classify the client as enterprise.
var enterpriseKeywords = []string{
	"corporation",
	"enterprises",
	"holdings",
	"incorporated",
	"international",
	"global",
	"fortune 500",
	"fortune 1000",
	"nationwide",
	"subsidiaries",
	"conglomerate",
}

// DetectClientType classifies the issuing organization from the bid's text.
// Pure function: lower-cases and concatenates the issuing org, description,
// and title; a government keyword hit wins outright, otherwise an enterprise
// score of 2 or more (keyword hits plus scale heuristics) yields enterprise,
// and everything else is commercial.
func DetectClientType(bid model.BidRequest) model.ClientType {
	combined := strings.ToLower(bid.IssuingOrg + " " + bid.Description + " " + bid.Title)

	for _, kw := range governmentKeywords {
		if strings.Contains(combined, kw) {
			return model.ClientGovernment
		}
	}

	enterpriseScore := 0
	for _, kw := range enterpriseKeywords {
		if strings.Contains(combined, kw) {
			enterpriseScore++
		}
	}

	// Scale heuristics: long formal descriptions, verbose solicitation
	// titles, and multi-year/multi-million language all point at large
	// organizations.
	if len(bid.Description) > 3000 {
		enterpriseScore++
	}
	if len(bid.Title) > 200 {
		enterpriseScore++
	}
	if strings.Contains(combined, "multi-year") || strings.Contains(combined, "multi-million") {
		enterpriseScore++
	}

	if enterpriseScore >= 2 {
		return model.ClientEnterprise
	}
	return model.ClientCommercial
}
