// Package aggregate orders priced combinations and selects the cheapest one.
package aggregate

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"freight-cost/core/determinism"
	"freight-cost/core/types"
)

// DefaultLocale is the collation locale used to order agent names
var DefaultLocale = language.Korean

// Summary is the aggregated view of all combinations
type Summary struct {
	Breakdown       []types.AgentCostBreakdown
	LowestCost      decimal.Decimal
	LowestCostAgent string
	LowestIndex     int
}

// Aggregator sorts breakdowns by rail agent then truck agent and picks the lowest total
type Aggregator struct {
	locale language.Tag
}

// New creates an aggregator collating in locale
func New(locale language.Tag) *Aggregator {
	return &Aggregator{locale: locale}
}

// NewDefault creates an aggregator with the default locale
func NewDefault() *Aggregator {
	return New(DefaultLocale)
}

// Aggregate returns a sorted copy of rows and the lowest-cost row. With no rows the
// summary is empty and LowestIndex is -1.
func (a *Aggregator) Aggregate(rows []types.AgentCostBreakdown) Summary {
	if len(rows) == 0 {
		return Summary{Breakdown: []types.AgentCostBreakdown{}, LowestCost: decimal.Zero, LowestIndex: -1}
	}

	sorted := make([]types.AgentCostBreakdown, len(rows))
	copy(sorted, rows)

	// collate.Collator keeps internal buffers and is not safe for concurrent use
	col := collate.New(a.locale)
	determinism.SortSlice(sorted, func(x, y types.AgentCostBreakdown) bool {
		if c := col.CompareString(x.RailAgent, y.RailAgent); c != 0 {
			return c < 0
		}
		return col.CompareString(x.TruckAgent, y.TruckAgent) < 0
	})

	lowest := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Total.LessThan(sorted[lowest].Total) {
			lowest = i
		}
	}

	return Summary{
		Breakdown:       sorted,
		LowestCost:      sorted[lowest].Total,
		LowestCostAgent: sorted[lowest].Agent,
		LowestIndex:     lowest,
	}
}
