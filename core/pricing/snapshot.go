// Package pricing holds the versioned rate tables and resolves rates from them.
package pricing

import (
	"crypto/sha256"
	"encoding/json"

	"freight-cost/core/determinism"
	"freight-cost/core/types"
)

// Tables is a read-only set of the eight rate tables. The engine never mutates it;
// callers must not mutate it while a calculation is in flight.
type Tables struct {
	SeaFreights               []types.SeaFreight               `json:"seaFreights"`
	AgentSeaFreights          []types.AgentSeaFreight          `json:"agentSeaFreights"`
	DTHCs                     []types.DTHC                     `json:"dthcs"`
	DPCosts                   []types.DPCost                   `json:"dpCosts"`
	CombinedFreights          []types.CombinedFreight          `json:"combinedFreights"`
	PortBorderFreights        []types.PortBorderFreight        `json:"portBorderFreights"`
	BorderDestinationFreights []types.BorderDestinationFreight `json:"borderDestinationFreights"`
	WeightSurcharges          []types.WeightSurchargeRule      `json:"weightSurcharges"`
}

// Snapshot is a historical reconstruction of some or all tables as of Date.
// A nil table means "no override, use live data"; a non-nil empty table
// overrides the live one with no records.
type Snapshot struct {
	Date string `json:"date"`
	Tables
}

// Overlay returns the tables a calculation should read: each category comes from
// the snapshot when it supplies one, otherwise from the live tables.
func (t *Tables) Overlay(s *Snapshot) *Tables {
	live := t
	if live == nil {
		live = &Tables{}
	}
	if s == nil {
		return live
	}

	return &Tables{
		SeaFreights:               pick(s.SeaFreights, live.SeaFreights),
		AgentSeaFreights:          pick(s.AgentSeaFreights, live.AgentSeaFreights),
		DTHCs:                     pick(s.DTHCs, live.DTHCs),
		DPCosts:                   pick(s.DPCosts, live.DPCosts),
		CombinedFreights:          pick(s.CombinedFreights, live.CombinedFreights),
		PortBorderFreights:        pick(s.PortBorderFreights, live.PortBorderFreights),
		BorderDestinationFreights: pick(s.BorderDestinationFreights, live.BorderDestinationFreights),
		WeightSurcharges:          pick(s.WeightSurcharges, live.WeightSurcharges),
	}
}

func pick[T any](override, live []T) []T {
	if override != nil {
		return override
	}
	return live
}

// Overrides lists the categories the snapshot replaces
func (s *Snapshot) Overrides() []types.Category {
	if s == nil {
		return nil
	}
	present := map[types.Category]bool{
		types.CategorySeaFreight:               s.SeaFreights != nil,
		types.CategoryAgentSeaFreight:          s.AgentSeaFreights != nil,
		types.CategoryDTHC:                     s.DTHCs != nil,
		types.CategoryDPCost:                   s.DPCosts != nil,
		types.CategoryCombinedFreight:          s.CombinedFreights != nil,
		types.CategoryPortBorderFreight:        s.PortBorderFreights != nil,
		types.CategoryBorderDestinationFreight: s.BorderDestinationFreights != nil,
		types.CategoryWeightSurcharge:          s.WeightSurcharges != nil,
	}

	var result []types.Category
	for _, c := range types.Categories {
		if present[c] {
			result = append(result, c)
		}
	}
	return result
}

// Count returns the number of records per category
func (t *Tables) Count() map[types.Category]int {
	if t == nil {
		t = &Tables{}
	}
	return map[types.Category]int{
		types.CategorySeaFreight:               len(t.SeaFreights),
		types.CategoryAgentSeaFreight:          len(t.AgentSeaFreights),
		types.CategoryDTHC:                     len(t.DTHCs),
		types.CategoryDPCost:                   len(t.DPCosts),
		types.CategoryCombinedFreight:          len(t.CombinedFreights),
		types.CategoryPortBorderFreight:        len(t.PortBorderFreights),
		types.CategoryBorderDestinationFreight: len(t.BorderDestinationFreights),
		types.CategoryWeightSurcharge:          len(t.WeightSurcharges),
	}
}

// ContentHash fingerprints the table contents
func (t *Tables) ContentHash() determinism.ContentHash {
	// Struct field order is fixed, so the encoding is stable
	data, _ := json.Marshal(t)
	return sha256.Sum256(data)
}
