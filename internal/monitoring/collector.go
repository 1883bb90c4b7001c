// Package monitoring summarizes stored generation activity.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of generation activity.
type MetricsSnapshot struct {
	// Document metrics within the lookback window.
	DocumentsTotal  int                        `json:"documents_total"`
	DocumentsByKind map[model.DocumentKind]int `json:"documents_by_kind"`
	TotalCostUSD    float64                    `json:"total_cost_usd"`
	TotalTokens     int                        `json:"total_tokens"`
	AvgCostUSD      float64                    `json:"avg_cost_usd"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect summarizes documents generated within the lookback window. A
// lookback of zero covers everything in the store.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		DocumentsByKind: make(map[model.DocumentKind]int),
		LookbackHours:   lookbackHours,
		CollectedAt:     time.Now().UTC(),
	}

	docs, err := c.store.ListProposals(ctx, store.ProposalFilter{Limit: 10_000})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list proposals")
	}

	var cutoff time.Time
	if lookbackHours > 0 {
		cutoff = time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)
	}

	for _, doc := range docs {
		if !cutoff.IsZero() && doc.CreatedAt.Before(cutoff) {
			continue
		}
		snap.DocumentsTotal++
		snap.DocumentsByKind[doc.Kind]++
		snap.TotalCostUSD += doc.CostUSD
		snap.TotalTokens += doc.Usage.InputTokens + doc.Usage.OutputTokens
	}

	if snap.DocumentsTotal > 0 {
		snap.AvgCostUSD = snap.TotalCostUSD / float64(snap.DocumentsTotal)
	}

	return snap, nil
}
