package pipeline

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/pkg/llm"
)

func govBid() model.BidRequest {
	return model.BidRequest{
		Title:       "Citywide Website Redesign",
		Description: "Redesign of the city's public website.",
		IssuingOrg:  "City of Springfield",
		Location:    "Springfield, IL",
		Services:    []string{"Web Development"},
	}
}

func TestFetchAdoptedBudgetCommercialSkipped(t *testing.T) {
	mock := &mockLLM{}
	p := newTestPipeline(mock, mock)

	data := p.FetchAdoptedBudget(context.Background(), govBid(), model.ClientCommercial)

	assert.Nil(t, data)
	assert.Zero(t, mock.callCount())
}

func TestFetchAdoptedBudgetParsesResponse(t *testing.T) {
	mock := &mockLLM{respond: func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{
			Content: "```json\n{\"total_annual_budget\": 45000000, \"relevant_department_budget\": 3200000, \"capital_program_budget\": null, \"fiscal_year\": \"FY2026\", \"budget_source\": \"FY2026 Adopted Budget\", \"funding_priorities\": [\"digital services\", \"infrastructure\"]}\n```",
			Model:   req.Model,
			Usage:   llm.Usage{InputTokens: 300, OutputTokens: 120},
		}, nil
	}}
	p := newTestPipeline(mock, mock)

	data := p.FetchAdoptedBudget(context.Background(), govBid(), model.ClientGovernment)

	require.NotNil(t, data)
	assert.Equal(t, model.ClientGovernment, data.ClientType)
	require.NotNil(t, data.TotalAnnualBudget)
	assert.Equal(t, 45_000_000.0, *data.TotalAnnualBudget)
	require.NotNil(t, data.RelevantDepartmentBudget)
	assert.Equal(t, 3_200_000.0, *data.RelevantDepartmentBudget)
	assert.Nil(t, data.CapitalProgramBudget)
	assert.Equal(t, "FY2026", data.FiscalYear)
	assert.Equal(t, "FY2026 Adopted Budget", data.BudgetSource)
	assert.Equal(t, []string{"digital services", "infrastructure"}, data.FundingPriorities)
	assert.True(t, data.HasFigures())
}

func TestFetchAdoptedBudgetErrorFallsBack(t *testing.T) {
	mock := &mockLLM{respond: func(llm.Request) (*llm.Response, error) {
		return nil, eris.New("endpoint unreachable")
	}}
	p := newTestPipeline(mock, mock)

	data := p.FetchAdoptedBudget(context.Background(), govBid(), model.ClientGovernment)

	require.NotNil(t, data)
	assert.Equal(t, model.ClientGovernment, data.ClientType)
	assert.False(t, data.HasFigures())
}

func TestFetchAdoptedBudgetBadJSONFallsBack(t *testing.T) {
	mock := &mockLLM{respond: func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: "I could not find any budget data.", Model: req.Model}, nil
	}}
	p := newTestPipeline(mock, mock)

	data := p.FetchAdoptedBudget(context.Background(), govBid(), model.ClientEnterprise)

	require.NotNil(t, data)
	assert.Equal(t, model.ClientEnterprise, data.ClientType)
	assert.False(t, data.HasFigures())
}

func TestFetchAdoptedBudgetDropsNonPositiveFigures(t *testing.T) {
	mock := &mockLLM{respond: func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{
			Content: `{"total_annual_budget": 0, "relevant_department_budget": -5, "capital_program_budget": 800000, "fiscal_year": "FY2026", "budget_source": "", "funding_priorities": []}`,
			Model:   req.Model,
		}, nil
	}}
	p := newTestPipeline(mock, mock)

	data := p.FetchAdoptedBudget(context.Background(), govBid(), model.ClientGovernment)

	require.NotNil(t, data)
	assert.Nil(t, data.TotalAnnualBudget)
	assert.Nil(t, data.RelevantDepartmentBudget)
	require.NotNil(t, data.CapitalProgramBudget)
	assert.Equal(t, 800_000.0, *data.CapitalProgramBudget)
}

func TestFetchAdoptedBudgetUsesResearchModel(t *testing.T) {
	mock := &mockLLM{respond: func(req llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: `{"fiscal_year": "FY2026"}`, Model: req.Model}, nil
	}}
	p := newTestPipeline(&mockLLM{}, mock)

	p.FetchAdoptedBudget(context.Background(), govBid(), model.ClientGovernment)

	calls := mock.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-4o-mini", calls[0].Model)
	assert.Contains(t, calls[0].Messages[0].Content, "City of Springfield")
}
