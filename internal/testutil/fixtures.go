// Package testutil provides rate-table fixtures shared by package tests.
package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"freight-cost/core/pricing"
	"freight-cost/core/types"
)

// CalcDate is the calculation date fixtures are live on
var CalcDate = Day("2024-07-01")

// Day parses a YYYY-MM-DD date and panics on malformed input
func Day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Live returns a version header valid for the whole of 2024
func Live(id string) types.Version {
	return types.Version{ID: id, ValidFrom: Day("2024-01-01"), ValidTo: Day("2024-12-31"), CreatedAt: Day("2024-01-01")}
}

// Expired returns a version header that lapsed at the end of 2023
func Expired(id string) types.Version {
	return types.Version{ID: id, ValidFrom: Day("2023-01-01"), ValidTo: Day("2023-12-31"), CreatedAt: Day("2023-01-01")}
}

// D converts an integer amount to a decimal
func D(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Input returns the Busan -> Qingdao -> OSH request used throughout the tests
func Input() types.CostInput {
	return types.CostInput{
		Origin:            "Busan",
		Transit:           "Qingdao",
		Destination:       "OSH",
		Weight:            D(1500),
		DomesticTransport: decimal.Zero,
	}
}

// Sea returns a general sea freight row
func Sea(v types.Version, origin, transit string, rate int64, carrier string) types.SeaFreight {
	return types.SeaFreight{Version: v, Origin: origin, Transit: transit, Rate: D(rate), Carrier: carrier}
}

// AgentSea returns an agent-specific sea freight row
func AgentSea(v types.Version, agent, origin, transit string, rate int64) types.AgentSeaFreight {
	return types.AgentSeaFreight{Version: v, Agent: agent, Origin: origin, Transit: transit, Rate: D(rate)}
}

// DTHC returns a terminal handling row
func DTHC(v types.Version, agent, origin, transit, carrier string, amount int64) types.DTHC {
	return types.DTHC{Version: v, Agent: agent, Origin: origin, Transit: transit, Carrier: carrier, Amount: D(amount)}
}

// DP returns a disposal-container fee row
func DP(v types.Version, origin string, amount int64) types.DPCost {
	return types.DPCost{Version: v, Origin: origin, Amount: D(amount)}
}

// Combined returns a combined freight row
func Combined(v types.Version, agent, transit, destination string, rate int64) types.CombinedFreight {
	return types.CombinedFreight{Version: v, Agent: agent, Transit: transit, Destination: destination, Rate: D(rate)}
}

// Rail returns a port-border freight row
func Rail(v types.Version, agent, origin, transit string, rate int64) types.PortBorderFreight {
	return types.PortBorderFreight{Version: v, Agent: agent, Origin: origin, Transit: transit, Rate: D(rate)}
}

// Truck returns a border-destination freight row
func Truck(v types.Version, agent, destination string, rate int64) types.BorderDestinationFreight {
	return types.BorderDestinationFreight{Version: v, Agent: agent, Destination: destination, Rate: D(rate)}
}

// Surcharge returns a weight surcharge rule
func Surcharge(v types.Version, agent string, min, max, surcharge int64) types.WeightSurchargeRule {
	return types.WeightSurchargeRule{Version: v, Agent: agent, MinWeight: D(min), MaxWeight: D(max), Surcharge: D(surcharge)}
}

// Registry builds a registry of names without codes
func Registry(names ...string) *types.Registry {
	partners := make([]types.Partner, 0, len(names))
	for _, n := range names {
		partners = append(partners, types.Partner{Name: n})
	}
	return types.NewRegistry(partners)
}

// ExampleTables returns the single-agent Busan -> Qingdao -> OSH catalog:
// sea 420, rail 2550, truck 2000 and a 50 surcharge up to 2000kg.
func ExampleTables() *pricing.Tables {
	return &pricing.Tables{
		SeaFreights:               []types.SeaFreight{Sea(Live("sf-1"), "Busan", "Qingdao", 420, "")},
		PortBorderFreights:        []types.PortBorderFreight{Rail(Live("pb-1"), "agentA", "Busan", "Qingdao", 2550)},
		BorderDestinationFreights: []types.BorderDestinationFreight{Truck(Live("bd-1"), "agentA", "OSH", 2000)},
		WeightSurcharges:          []types.WeightSurchargeRule{Surcharge(Live("ws-1"), "agentA", 0, 2000, 50)},
	}
}
