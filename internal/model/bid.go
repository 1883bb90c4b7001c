// Package model defines the core domain types for the bid-proposal pipeline.
package model

// BidRequest describes a solicitation the agency is bidding on. It is
// immutable input: created by the caller (CLI flags, bid file, or API
// request) and read-only through the pipeline.
type BidRequest struct {
	Title              string   `json:"title" yaml:"title"`
	Description        string   `json:"description" yaml:"description"`
	IssuingOrg         string   `json:"issuing_org" yaml:"issuing_org"`
	Location           string   `json:"location" yaml:"location"`
	SolicitationType   string   `json:"solicitation_type,omitempty" yaml:"solicitation_type"`
	SolicitationNumber string   `json:"solicitation_number,omitempty" yaml:"solicitation_number"`
	DueDate            string   `json:"due_date,omitempty" yaml:"due_date"`
	DocumentsText      string   `json:"documents_text,omitempty" yaml:"documents_text"`
	Services           []string `json:"services" yaml:"services"`
}

// PrimaryService returns the first selected service, or "" if none.
func (b BidRequest) PrimaryService() string {
	if len(b.Services) == 0 {
		return ""
	}
	return b.Services[0]
}

// ClientType classifies the issuing organization. Derived per request,
// never stored.
type ClientType string

const (
	ClientGovernment ClientType = "government"
	ClientEnterprise ClientType = "enterprise"
	ClientCommercial ClientType = "commercial"
)

// ComplexityLevel grades the scope of the requested work.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

// MarketRateEstimate is the locality research result consumed by the
// pricing engine. Ephemeral: produced once per request, never persisted
// on its own.
type MarketRateEstimate struct {
	// LocalityFactor is a multiplicative adjustment to base price ranges,
	// always within [0.7, 1.5].
	LocalityFactor float64 `json:"locality_factor"`

	// AverageRate is the researched average project rate for comparable
	// work, or nil when unavailable. When set it is always >= 5000.
	AverageRate *float64 `json:"average_rate,omitempty"`

	// Insights is free-text market commentary, safe for client-facing use.
	Insights string `json:"insights"`
}

// AdoptedBudgetData holds budget intelligence for government and enterprise
// clients. None of its numeric fields or BudgetSource may ever appear in
// client-facing proposal text; they exist for internal pricing and audit only.
type AdoptedBudgetData struct {
	ClientType               ClientType `json:"client_type"`
	TotalAnnualBudget        *float64   `json:"total_annual_budget,omitempty"`
	RelevantDepartmentBudget *float64   `json:"relevant_department_budget,omitempty"`
	CapitalProgramBudget     *float64   `json:"capital_program_budget,omitempty"`
	FiscalYear               string     `json:"fiscal_year"`
	BudgetSource             string     `json:"budget_source,omitempty"`
	FundingPriorities        []string   `json:"funding_priorities,omitempty"`

	// Filled in by the pricing engine once the cap is known. Internal use only.
	ProportionalityAnalysis string `json:"proportionality_analysis,omitempty"`
	StrategicAlignment      string `json:"strategic_alignment,omitempty"`
}

// HasFigures reports whether any numeric budget field is populated.
func (b *AdoptedBudgetData) HasFigures() bool {
	if b == nil {
		return false
	}
	return b.TotalAnnualBudget != nil || b.RelevantDepartmentBudget != nil || b.CapitalProgramBudget != nil
}
