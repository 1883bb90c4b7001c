package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

const budgetSystemPrompt = `You are a government finance researcher. You locate publicly adopted budgets for municipalities, counties, states, and large organizations, and report figures from them.

Respond with a single JSON object and nothing else:
{
  "total_annual_budget": number or null,
  "relevant_department_budget": number or null,
  "capital_program_budget": number or null,
  "fiscal_year": "string",
  "budget_source": "string",
  "funding_priorities": ["string"]
}

All dollar amounts are plain numbers (no currency symbols, no abbreviations). Use null for any figure you cannot ground in an actual adopted budget. Never guess figures.`

// budgetResponse is the wire shape the research model is asked to produce.
type budgetResponse struct {
	TotalAnnualBudget        *float64 `json:"total_annual_budget"`
	RelevantDepartmentBudget *float64 `json:"relevant_department_budget"`
	CapitalProgramBudget     *float64 `json:"capital_program_budget"`
	FiscalYear               string   `json:"fiscal_year"`
	BudgetSource             string   `json:"budget_source"`
	FundingPriorities        []string `json:"funding_priorities"`
}

// FetchAdoptedBudget researches the issuing organization's adopted budget.
// Commercial clients get no budget research and a nil result. Research
// failures are logged and degrade to an empty record with the client type
// set; they never fail the caller.
func (p *Pipeline) FetchAdoptedBudget(ctx context.Context, bid model.BidRequest, clientType model.ClientType) *model.AdoptedBudgetData {
	if clientType == model.ClientCommercial {
		return nil
	}

	fallback := &model.AdoptedBudgetData{ClientType: clientType}

	prompt := fmt.Sprintf(
		"Find the most recent adopted budget for %q (%s).\n\nThe organization has issued this solicitation:\nTitle: %s\nServices requested: %s\n\nReport total annual budget, the budget of the department most relevant to the solicitation, any capital improvement program budget, the fiscal year, the source document, and stated funding priorities.",
		bid.IssuingOrg, bid.Location, bid.Title, joinServices(bid.Services))

	resp, err := p.complete(ctx, p.research, "budget research", llm.Request{
		Model:     p.researchModel,
		System:    budgetSystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: 1024,
	})
	if err != nil {
		zap.L().Warn("budget research failed, continuing without budget data",
			zap.String("org", bid.IssuingOrg), zap.Error(err))
		return fallback
	}

	var parsed budgetResponse
	if err := json.Unmarshal([]byte(cleanJSON(resp.Content)), &parsed); err != nil {
		zap.L().Warn("budget research returned unparseable JSON",
			zap.String("org", bid.IssuingOrg), zap.Error(err))
		return fallback
	}

	data := &model.AdoptedBudgetData{
		ClientType:               clientType,
		TotalAnnualBudget:        sanitizeBudgetFigure(parsed.TotalAnnualBudget),
		RelevantDepartmentBudget: sanitizeBudgetFigure(parsed.RelevantDepartmentBudget),
		CapitalProgramBudget:     sanitizeBudgetFigure(parsed.CapitalProgramBudget),
		FiscalYear:               parsed.FiscalYear,
		BudgetSource:             parsed.BudgetSource,
		FundingPriorities:        parsed.FundingPriorities,
	}

	zap.L().Info("budget research complete",
		zap.String("org", bid.IssuingOrg),
		zap.Bool("has_figures", data.HasFigures()),
		zap.String("fiscal_year", data.FiscalYear))
	return data
}

// sanitizeBudgetFigure drops zero and negative amounts, which the model
// sometimes emits instead of null.
func sanitizeBudgetFigure(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func joinServices(services []string) string {
	if len(services) == 0 {
		return "general consulting"
	}
	out := services[0]
	for _, s := range services[1:] {
		out += ", " + s
	}
	return out
}
