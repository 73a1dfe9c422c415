// Package route checks that a shipment route has enough rate data to be priced
// and derives the agents that can carry it.
package route

import (
	"fmt"

	"freight-cost/core/pricing"
	"freight-cost/core/types"
)

// Validate reports every rate table that lacks data for the requested route.
// An empty result means pricing may proceed. Any matching record counts, live or
// expired: lapsed rates are still usable and get flagged at resolution time.
func Validate(tables *pricing.Tables, in types.CostInput) []types.MissingFreight {
	if tables == nil {
		tables = &pricing.Tables{}
	}

	var missing []types.MissingFreight

	if !hasSeaLeg(tables, in) {
		msg := fmt.Sprintf("no sea freight for %s -> %s", in.Origin, in.Transit)
		if in.IncludeDP {
			msg = fmt.Sprintf("no general sea freight for %s -> %s (required when DP is included)", in.Origin, in.Transit)
		}
		missing = append(missing, types.MissingFreight{
			Type:    types.MissingSeaFreight,
			Origin:  in.Origin,
			Transit: in.Transit,
			Message: msg,
		})
	}

	hasCombined := hasCombinedFreight(tables, in.Transit, in.Destination)
	hasRail := hasPortBorderFreight(tables, in.Origin, in.Transit)
	hasTruck := hasBorderDestinationFreight(tables, in.Destination)

	if len(InlandAgents(tables, in)) == 0 || !(hasCombined || (hasRail && hasTruck)) {
		if !hasCombined {
			missing = append(missing, types.MissingFreight{
				Type:        types.MissingCombinedFreight,
				Transit:     in.Transit,
				Destination: in.Destination,
				Message:     fmt.Sprintf("no combined freight for %s -> %s", in.Transit, in.Destination),
			})
		}
		if !hasRail {
			missing = append(missing, types.MissingFreight{
				Type:    types.MissingRailFreight,
				Origin:  in.Origin,
				Transit: in.Transit,
				Message: fmt.Sprintf("no rail freight for %s -> %s", in.Origin, in.Transit),
			})
		}
		if !hasTruck {
			missing = append(missing, types.MissingFreight{
				Type:        types.MissingTruckFreight,
				Destination: in.Destination,
				Message:     fmt.Sprintf("no truck freight to %s", in.Destination),
			})
		}
	}

	return missing
}

// hasSeaLeg applies the sea-leg requirement: with DP included only a general sea
// freight qualifies, otherwise an agent-specific one will do as well.
func hasSeaLeg(tables *pricing.Tables, in types.CostInput) bool {
	for _, s := range tables.SeaFreights {
		if s.Origin == in.Origin && s.Transit == in.Transit {
			return true
		}
	}
	if in.IncludeDP {
		return false
	}
	for _, s := range tables.AgentSeaFreights {
		if s.Origin == in.Origin && s.Transit == in.Transit {
			return true
		}
	}
	return false
}

func hasCombinedFreight(tables *pricing.Tables, transit, destination string) bool {
	for _, c := range tables.CombinedFreights {
		if c.Transit == transit && c.Destination == destination {
			return true
		}
	}
	return false
}

func hasPortBorderFreight(tables *pricing.Tables, origin, transit string) bool {
	for _, p := range tables.PortBorderFreights {
		if p.Origin == origin && p.Transit == transit {
			return true
		}
	}
	return false
}

func hasBorderDestinationFreight(tables *pricing.Tables, destination string) bool {
	for _, b := range tables.BorderDestinationFreights {
		if b.Destination == destination {
			return true
		}
	}
	return false
}
