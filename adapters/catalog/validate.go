package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"freight-cost/core/pricing"
	"freight-cost/core/types"
)

// Issue is a catalog row that will never price correctly
type Issue struct {
	// Scope is "live" or "snapshot YYYY-MM-DD"
	Scope string `json:"scope"`

	Table types.Category `json:"table"`

	// Row is 1-based
	Row int `json:"row"`

	ID      string `json:"id"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s row %d (%s): %s", i.Scope, i.Table, i.Row, i.ID, i.Message)
}

type field struct {
	name  string
	value decimal.Decimal
}

// Validate checks the live tables and every snapshot for inverted validity
// windows, negative amounts and inverted weight bands.
func (c *Catalog) Validate() []Issue {
	if c == nil {
		return nil
	}

	issues := validateTables("live", c.Tables)
	for _, date := range c.Dates() {
		issues = append(issues, validateTables("snapshot "+date, &c.Snapshots[date].Tables)...)
	}
	return issues
}

func validateTables(scope string, t *pricing.Tables) []Issue {
	if t == nil {
		return nil
	}

	var issues []Issue
	issues = append(issues, check(scope, types.CategorySeaFreight, t.SeaFreights, func(r types.SeaFreight) []field {
		return []field{{"rate", r.Rate}, {"localCharge", r.LocalCharge}}
	})...)
	issues = append(issues, check(scope, types.CategoryAgentSeaFreight, t.AgentSeaFreights, func(r types.AgentSeaFreight) []field {
		// llocal is a signed adjustment and may be negative
		return []field{{"rate", r.Rate}, {"localCharge", r.LocalCharge}}
	})...)
	issues = append(issues, check(scope, types.CategoryDTHC, t.DTHCs, func(r types.DTHC) []field {
		return []field{{"amount", r.Amount}}
	})...)
	issues = append(issues, check(scope, types.CategoryDPCost, t.DPCosts, func(r types.DPCost) []field {
		return []field{{"amount", r.Amount}}
	})...)
	issues = append(issues, check(scope, types.CategoryCombinedFreight, t.CombinedFreights, func(r types.CombinedFreight) []field {
		return []field{{"rate", r.Rate}}
	})...)
	issues = append(issues, check(scope, types.CategoryPortBorderFreight, t.PortBorderFreights, func(r types.PortBorderFreight) []field {
		return []field{{"rate", r.Rate}}
	})...)
	issues = append(issues, check(scope, types.CategoryBorderDestinationFreight, t.BorderDestinationFreights, func(r types.BorderDestinationFreight) []field {
		return []field{{"rate", r.Rate}}
	})...)
	issues = append(issues, check(scope, types.CategoryWeightSurcharge, t.WeightSurcharges, func(r types.WeightSurchargeRule) []field {
		return []field{{"minWeight", r.MinWeight}, {"maxWeight", r.MaxWeight}, {"surcharge", r.Surcharge}}
	})...)

	for i, r := range t.WeightSurcharges {
		if r.MinWeight.GreaterThan(r.MaxWeight) {
			issues = append(issues, Issue{
				Scope:   scope,
				Table:   types.CategoryWeightSurcharge,
				Row:     i + 1,
				ID:      r.ID,
				Message: fmt.Sprintf("minWeight %s exceeds maxWeight %s", r.MinWeight, r.MaxWeight),
			})
		}
	}

	return issues
}

func check[T types.Versioned](scope string, table types.Category, records []T, amounts func(T) []field) []Issue {
	var issues []Issue
	for i, r := range records {
		v := r.GetVersion()
		issue := func(msg string) {
			issues = append(issues, Issue{Scope: scope, Table: table, Row: i + 1, ID: v.ID, Message: msg})
		}

		if !v.ValidFrom.IsZero() && !v.ValidTo.IsZero() && v.ValidFrom.After(v.ValidTo) {
			issue("validFrom is after validTo")
		}
		for _, f := range amounts(r) {
			if f.value.IsNegative() {
				issue(fmt.Sprintf("%s is negative", f.name))
			}
		}
	}
	return issues
}
