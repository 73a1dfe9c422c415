// Package combination prices the ways a single agent can carry a shipment:
// a combined inland rate, separate rail and truck legs, or the agent's rail leg
// paired with the fallback truck carrier.
package combination

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freight-cost/core/determinism"
	"freight-cost/core/pricing"
	"freight-cost/core/types"
)

// DefaultFallbackTruckAgent is the generic truck carrier paired with any agent's rail leg
const DefaultFallbackTruckAgent = "COWIN"

// Registries holds the partner lookups used to decorate rows with short codes
type Registries struct {
	RailAgents    *types.Registry
	TruckAgents   *types.Registry
	ShippingLines *types.Registry
}

// Builder builds priced breakdowns for one shipment request
type Builder struct {
	resolver      *pricing.Resolver
	input         types.CostInput
	registries    Registries
	fallbackAgent string
	ids           *determinism.IDGenerator
	logger        *zap.Logger
}

// Option configures a Builder
type Option func(*Builder)

// WithFallbackTruckAgent overrides the fallback truck carrier
func WithFallbackTruckAgent(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.fallbackAgent = name
		}
	}
}

// WithLogger sets the debug logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBuilder creates a builder for the request
func NewBuilder(resolver *pricing.Resolver, input types.CostInput, registries Registries, opts ...Option) *Builder {
	b := &Builder{
		resolver:      resolver,
		input:         input,
		registries:    registries,
		fallbackAgent: DefaultFallbackTruckAgent,
		ids:           determinism.NewIDGenerator("breakdown"),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// seaLeg is the resolved ocean portion shared by every row of an agent
type seaLeg struct {
	rate          decimal.Decimal
	localCharge   decimal.Decimal
	llocal        decimal.Decimal
	carrier       string
	agentSpecific bool
	expired       bool
}

// resolveSea picks the agent's own sea rate unless DP is included, then an explicitly
// selected general rate, then any general rate for the port pair. No match prices at zero.
func (b *Builder) resolveSea(agent string) seaLeg {
	in := b.input

	if !in.IncludeDP {
		if res := b.resolver.AgentSeaFreight(agent, in.Origin, in.Transit); res.Found {
			return seaLeg{
				rate:          res.Record.Rate,
				localCharge:   res.Record.LocalCharge,
				llocal:        res.Record.LLocal,
				carrier:       res.Record.Carrier,
				agentSpecific: true,
				expired:       res.Expired,
			}
		}
	}

	general := b.resolver.SeaFreight(in.Origin, in.Transit)
	if in.SeaFreightID != "" {
		if res := b.resolver.SeaFreightByID(in.SeaFreightID, in.Origin, in.Transit); res.Found {
			general = res
		}
	}
	if !general.Found {
		return seaLeg{rate: decimal.Zero, localCharge: decimal.Zero, llocal: decimal.Zero}
	}

	return seaLeg{
		rate:        general.Record.Rate,
		localCharge: general.Record.LocalCharge,
		llocal:      decimal.Zero,
		carrier:     general.Record.Carrier,
		expired:     general.Expired,
	}
}

// Build returns zero to three breakdowns for agent
func (b *Builder) Build(agent string) []types.AgentCostBreakdown {
	in := b.input
	r := b.resolver

	sea := b.resolveSea(agent)

	// DTHC is bundled into agent-specific sea rates
	dthc := pricing.Amount{Value: decimal.Zero}
	if !sea.agentSpecific {
		dthc = r.DTHC(agent, in.Origin, in.Transit, sea.carrier)
	}

	combined := r.CombinedFreight(agent, in.Transit, in.Destination)
	rail := r.PortBorderFreight(agent, in.Origin, in.Transit)
	truck := r.BorderDestinationFreight(agent, in.Destination)

	if sea.agentSpecific && !combined.Found && !rail.Found {
		b.logger.Debug("agent has sea freight but no inland capability",
			zap.String("agent", agent))
		return nil
	}

	dp := pricing.Amount{Value: decimal.Zero}
	if in.IncludeDP {
		dp = r.DPCost(in.Origin)
	}

	var rows []types.AgentCostBreakdown

	if combined.Found {
		surcharge := r.WeightSurcharge(agent, in.Weight)
		row := b.newRow(types.KindCombined, agent, agent, agent, sea, dthc)
		row.CombinedFreight = combined.Value
		row.WeightSurcharge = surcharge.Value
		row.IsCombinedFreight = true
		rows = append(rows, b.finish(row,
			expiry{types.ComponentCombinedFreight, combined.Expired},
			expiry{types.ComponentWeightSurcharge, surcharge.Expired},
		))
	}

	if rail.Found && truck.Found {
		surcharge := r.WeightSurcharge(agent, in.Weight)
		row := b.newRow(types.KindSeparate, agent, agent, agent, sea, dthc)
		row.RailFreight = rail.Value
		row.TruckFreight = truck.Value
		row.WeightSurcharge = surcharge.Value
		row.DP = dp.Value
		rows = append(rows, b.finish(row,
			expiry{types.ComponentRailFreight, rail.Expired},
			expiry{types.ComponentTruckFreight, truck.Expired},
			expiry{types.ComponentWeightSurcharge, surcharge.Expired},
			expiry{types.ComponentDP, dp.Expired},
		))
	}

	if rail.Found && agent != b.fallbackAgent {
		fallbackTruck := r.BorderDestinationFreight(b.fallbackAgent, in.Destination)
		if fallbackTruck.Found && fallbackTruck.Value.IsPositive() {
			surcharge := r.WeightSurcharge(b.fallbackAgent, in.Weight)
			label := agent + " + " + b.fallbackAgent
			row := b.newRow(types.KindFallback, label, agent, b.fallbackAgent, sea, dthc)
			row.RailFreight = rail.Value
			row.TruckFreight = fallbackTruck.Value
			row.WeightSurcharge = surcharge.Value
			row.DP = dp.Value
			rows = append(rows, b.finish(row,
				expiry{types.ComponentRailFreight, rail.Expired},
				expiry{types.ComponentTruckFreight, fallbackTruck.Expired},
				expiry{types.ComponentWeightSurcharge, surcharge.Expired},
				expiry{types.ComponentDP, dp.Expired},
			))
		}
	}

	b.logger.Debug("agent combinations built",
		zap.String("agent", agent),
		zap.Int("rows", len(rows)),
		zap.Bool("agentSpecificSea", sea.agentSpecific))

	return rows
}

type expiry struct {
	component string
	expired   bool
}

// newRow fills the fields every kind of row shares: identity, sea leg, DTHC and the
// request-level amounts
func (b *Builder) newRow(kind types.CombinationKind, label, railAgent, truckAgent string, sea seaLeg, dthc pricing.Amount) types.AgentCostBreakdown {
	in := b.input

	row := types.AgentCostBreakdown{
		ID:                        string(b.ids.Generate(in.Origin, in.Transit, in.Destination, string(kind), railAgent, truckAgent)),
		Agent:                     label,
		Kind:                      kind,
		RailAgent:                 railAgent,
		RailAgentCode:             b.registries.RailAgents.CodeOrDerived(railAgent),
		TruckAgent:                truckAgent,
		TruckAgentCode:            b.registries.TruckAgents.CodeOrDerived(truckAgent),
		ShippingLine:              sea.carrier,
		SeaFreight:                sea.rate,
		LocalCharge:               sea.localCharge,
		DTHC:                      dthc.Value,
		CombinedFreight:           decimal.Zero,
		RailFreight:               decimal.Zero,
		TruckFreight:              decimal.Zero,
		WeightSurcharge:           decimal.Zero,
		DP:                        decimal.Zero,
		DomesticTransport:         in.DomesticTransport,
		OtherCosts:                append([]types.CostItem(nil), in.OtherCosts...),
		OtherCostsTotal:           in.OtherCostsTotal(),
		LLocal:                    sea.llocal,
		IsAgentSpecificSeaFreight: sea.agentSpecific,
		ExpiredRateDetails:        []string{},
	}
	if sea.carrier != "" {
		row.ShippingLineCode = b.registries.ShippingLines.CodeOrDerived(sea.carrier)
	}

	if sea.expired {
		row.ExpiredRateDetails = append(row.ExpiredRateDetails, types.ComponentSeaFreight)
	}
	if dthc.Expired {
		row.ExpiredRateDetails = append(row.ExpiredRateDetails, types.ComponentDTHC)
	}
	return row
}

// finish records the row's expired components and totals it
func (b *Builder) finish(row types.AgentCostBreakdown, expiries ...expiry) types.AgentCostBreakdown {
	for _, e := range expiries {
		if e.expired {
			row.ExpiredRateDetails = append(row.ExpiredRateDetails, e.component)
		}
	}
	row.HasExpiredRates = len(row.ExpiredRateDetails) > 0

	row.Total = decimal.Sum(
		row.SeaFreight,
		row.LocalCharge,
		row.DTHC,
		row.CombinedFreight,
		row.RailFreight,
		row.TruckFreight,
		row.WeightSurcharge,
		row.DP,
		row.OtherCostsTotal,
		row.DomesticTransport,
		row.LLocal,
	)
	return row
}
