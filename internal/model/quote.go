package model

// PriceRange bounds a price estimate in dollars.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Midpoint returns the center of the range.
func (r PriceRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// Scale multiplies both ends of the range by factor.
func (r PriceRange) Scale(factor float64) PriceRange {
	return PriceRange{Min: r.Min * factor, Max: r.Max * factor}
}

// Clamp returns v bounded into the range.
func (r PriceRange) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// PriceQuote is the externally visible pricing result. ProposedPrice never
// exceeds the internal budget cap when one exists, and Justification never
// contains the client's budget figures.
type PriceQuote struct {
	ProposedPrice float64            `json:"proposed_price"`
	PriceRange    PriceRange         `json:"price_range"`
	ClientType    ClientType         `json:"client_type"`
	Complexity    ComplexityLevel    `json:"complexity"`
	Justification string             `json:"justification"`
	Market        MarketRateEstimate `json:"market"`

	// Budget holds the internal budget intelligence used to cap the price.
	// Confidential: excluded from any client-facing serialization.
	Budget *AdoptedBudgetData `json:"budget,omitempty"`
}
