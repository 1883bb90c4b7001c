// Package export renders quotes and generated documents to files.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/pipeline"
)

// QuoteWorkbook builds a two-sheet workbook for a priced bid: a client-safe
// "Quote" sheet, and an "Internal Analysis" sheet carrying the confidential
// budget intelligence. The internal sheet exists because this tool is for
// the firm's own proposal team; nothing here is sent to clients directly.
func QuoteWorkbook(bid model.BidRequest, quote *model.PriceQuote) (*xlsx.File, error) {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("Quote")
	if err != nil {
		return nil, eris.Wrap(err, "export: add quote sheet")
	}
	addPair(sheet, "Solicitation", bid.Title)
	addPair(sheet, "Issuing Organization", bid.IssuingOrg)
	addPair(sheet, "Location", bid.Location)
	addPair(sheet, "Services", joinStrings(bid.Services))
	addPair(sheet, "Client Type", string(quote.ClientType))
	addPair(sheet, "Complexity", string(quote.Complexity))
	addPair(sheet, "Proposed Price", pipeline.FormatDollars(quote.ProposedPrice))
	addPair(sheet, "Engagement Range Min", pipeline.FormatDollars(quote.PriceRange.Min))
	addPair(sheet, "Engagement Range Max", pipeline.FormatDollars(quote.PriceRange.Max))
	addFloatPair(sheet, "Locality Factor", quote.Market.LocalityFactor)
	addPair(sheet, "Justification", quote.Justification)

	internal, err := f.AddSheet("Internal Analysis")
	if err != nil {
		return nil, eris.Wrap(err, "export: add internal sheet")
	}
	addPair(internal, "Market Insights", quote.Market.Insights)
	if quote.Market.AverageRate != nil {
		addPair(internal, "Researched Average Rate", pipeline.FormatDollars(*quote.Market.AverageRate))
	}
	if b := quote.Budget; b != nil {
		addPair(internal, "Fiscal Year", b.FiscalYear)
		addPair(internal, "Budget Source", b.BudgetSource)
		if b.TotalAnnualBudget != nil {
			addPair(internal, "Total Annual Budget", pipeline.FormatDollars(*b.TotalAnnualBudget))
		}
		if b.RelevantDepartmentBudget != nil {
			addPair(internal, "Department Budget", pipeline.FormatDollars(*b.RelevantDepartmentBudget))
		}
		if b.CapitalProgramBudget != nil {
			addPair(internal, "Capital Program Budget", pipeline.FormatDollars(*b.CapitalProgramBudget))
		}
		addPair(internal, "Funding Priorities", joinStrings(b.FundingPriorities))
		addPair(internal, "Proportionality", b.ProportionalityAnalysis)
		addPair(internal, "Strategic Alignment", b.StrategicAlignment)
	}

	return f, nil
}

// WriteQuoteXLSX writes the quote workbook to path.
func WriteQuoteXLSX(path string, bid model.BidRequest, quote *model.PriceQuote) error {
	f, err := QuoteWorkbook(bid, quote)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addPair(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func addFloatPair(sheet *xlsx.Sheet, label string, value float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloat(value)
}

func joinStrings(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
