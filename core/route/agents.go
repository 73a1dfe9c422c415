// Package route - agent enumeration
package route

import (
	"freight-cost/core/determinism"
	"freight-cost/core/pricing"
	"freight-cost/core/types"
)

// InlandAgents returns every agent named by a rate row for this route: rail legs
// from the port pair, combined freight to the destination and, unless DP is
// included, agent-specific sea freight. Names are returned in byte order.
func InlandAgents(tables *pricing.Tables, in types.CostInput) []string {
	if tables == nil {
		return nil
	}

	names := make(map[string]struct{})
	for _, p := range tables.PortBorderFreights {
		if p.Origin == in.Origin && p.Transit == in.Transit {
			names[p.Agent] = struct{}{}
		}
	}
	for _, c := range tables.CombinedFreights {
		if c.Transit == in.Transit && c.Destination == in.Destination {
			names[c.Agent] = struct{}{}
		}
	}
	if !in.IncludeDP {
		for _, s := range tables.AgentSeaFreights {
			if s.Origin == in.Origin && s.Transit == in.Transit {
				names[s.Agent] = struct{}{}
			}
		}
	}

	return determinism.SortedKeys(names)
}

// CandidateAgents restricts InlandAgents to registered rail agents, so partners that
// only exist as rate rows are never quoted.
func CandidateAgents(tables *pricing.Tables, in types.CostInput, railAgents *types.Registry) []string {
	var result []string
	for _, name := range InlandAgents(tables, in) {
		if railAgents.Has(name) {
			result = append(result, name)
		}
	}
	return result
}
