package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/proposal-cli/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func sampleQuote() (model.BidRequest, *model.PriceQuote) {
	bid := model.BidRequest{
		Title:      "Citywide Website Redesign",
		IssuingOrg: "City of Springfield",
		Location:   "Springfield, IL",
		Services:   []string{"Web Development", "SEO"},
	}
	quote := &model.PriceQuote{
		ProposedPrice: 38_500,
		PriceRange:    model.PriceRange{Min: 16_500, Max: 38_500},
		ClientType:    model.ClientGovernment,
		Complexity:    model.ComplexityLow,
		Justification: "Priced against our published engagement tiers.",
		Market: model.MarketRateEstimate{
			LocalityFactor: 1.1,
			AverageRate:    floatPtr(48_000),
			Insights:       "Regional rates run near the national average.",
		},
		Budget: &model.AdoptedBudgetData{
			ClientType:              model.ClientGovernment,
			TotalAnnualBudget:       floatPtr(45_000_000),
			FiscalYear:              "FY2026",
			BudgetSource:            "FY2026 Adopted Budget",
			FundingPriorities:       []string{"digital services"},
			ProportionalityAnalysis: "Proposed price of $38,500 represents 0.086% of the FY2026 total annual budget ($45,000,000).",
		},
	}
	return bid, quote
}

func TestQuoteWorkbookSheets(t *testing.T) {
	bid, quote := sampleQuote()

	f, err := QuoteWorkbook(bid, quote)

	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "Quote", f.Sheets[0].Name)
	assert.Equal(t, "Internal Analysis", f.Sheets[1].Name)
}

func TestQuoteWorkbookQuoteSheetIsClientSafe(t *testing.T) {
	bid, quote := sampleQuote()

	f, err := QuoteWorkbook(bid, quote)
	require.NoError(t, err)

	var flat string
	for _, row := range f.Sheets[0].Rows {
		for _, cell := range row.Cells {
			flat += cell.Value + "\n"
		}
	}
	assert.Contains(t, flat, "$38,500")
	assert.Contains(t, flat, "City of Springfield")
	assert.Contains(t, flat, "Web Development, SEO")
	assert.NotContains(t, flat, "45,000,000")
	assert.NotContains(t, flat, "FY2026 Adopted Budget")
}

func TestQuoteWorkbookInternalSheetKeepsFigures(t *testing.T) {
	bid, quote := sampleQuote()

	f, err := QuoteWorkbook(bid, quote)
	require.NoError(t, err)

	var flat string
	for _, row := range f.Sheets[1].Rows {
		for _, cell := range row.Cells {
			flat += cell.Value + "\n"
		}
	}
	assert.Contains(t, flat, "$45,000,000")
	assert.Contains(t, flat, "FY2026 Adopted Budget")
	assert.Contains(t, flat, "$48,000")
}

func TestQuoteWorkbookNoBudget(t *testing.T) {
	bid, quote := sampleQuote()
	quote.Budget = nil
	quote.Market.AverageRate = nil

	f, err := QuoteWorkbook(bid, quote)

	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
}

func TestWriteQuoteXLSXRoundTrip(t *testing.T) {
	bid, quote := sampleQuote()
	path := filepath.Join(t.TempDir(), "quote.xlsx")

	require.NoError(t, WriteQuoteXLSX(path, bid, quote))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)
	assert.Equal(t, "Quote", f.Sheets[0].Name)
}
