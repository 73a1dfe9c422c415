// Package pricing - rate resolution
//
// Every category resolves the same way: among the records matching the key, prefer
// any record live on the calculation date; otherwise fall back to the newest matching
// record and flag it expired. Candidates are ordered by CreatedAt descending first,
// so the outcome does not depend on the order the caller supplied them in.
package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"freight-cost/core/types"
	"freight-cost/core/validity"
)

// Resolution is the outcome of resolving one rate key
type Resolution[T types.Versioned] struct {
	Record  T
	Found   bool
	Expired bool
}

// Resolve applies the live-or-newest policy to the records matching match
func Resolve[T types.Versioned](records []T, asOf time.Time, match func(T) bool) Resolution[T] {
	var candidates []T
	for _, r := range records {
		if match(r) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Resolution[T]{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].GetVersion().CreatedAt.After(candidates[j].GetVersion().CreatedAt)
	})

	for _, c := range candidates {
		v := c.GetVersion()
		if validity.IsLive(v.ValidFrom, v.ValidTo, asOf) {
			return Resolution[T]{Record: c, Found: true}
		}
	}
	return Resolution[T]{Record: candidates[0], Found: true, Expired: true}
}

// Amount is a resolved monetary value. A missing record resolves to zero.
type Amount struct {
	Value   decimal.Decimal
	Found   bool
	Expired bool
}

func amountOf[T types.Versioned](r Resolution[T], value func(T) decimal.Decimal) Amount {
	if !r.Found {
		return Amount{Value: decimal.Zero}
	}
	return Amount{Value: value(r.Record), Found: true, Expired: r.Expired}
}

// Resolver resolves every rate category against one set of tables on one date
type Resolver struct {
	tables *Tables
	asOf   time.Time
}

// NewResolver creates a resolver for the calculation date asOf
func NewResolver(tables *Tables, asOf time.Time) *Resolver {
	if tables == nil {
		tables = &Tables{}
	}
	return &Resolver{tables: tables, asOf: validity.Day(asOf)}
}

// SeaFreight resolves the general sea freight for a port pair
func (r *Resolver) SeaFreight(origin, transit string) Resolution[types.SeaFreight] {
	return Resolve(r.tables.SeaFreights, r.asOf, func(s types.SeaFreight) bool {
		return s.Origin == origin && s.Transit == transit
	})
}

// SeaFreightByID resolves an explicitly selected sea freight record. The record must
// also serve the port pair.
func (r *Resolver) SeaFreightByID(id, origin, transit string) Resolution[types.SeaFreight] {
	return Resolve(r.tables.SeaFreights, r.asOf, func(s types.SeaFreight) bool {
		return s.ID == id && s.Origin == origin && s.Transit == transit
	})
}

// AgentSeaFreight resolves an agent's negotiated sea freight
func (r *Resolver) AgentSeaFreight(agent, origin, transit string) Resolution[types.AgentSeaFreight] {
	return Resolve(r.tables.AgentSeaFreights, r.asOf, func(s types.AgentSeaFreight) bool {
		return s.Agent == agent && s.Origin == origin && s.Transit == transit
	})
}

// DTHC resolves the terminal handling charge. An unknown carrier resolves to zero.
func (r *Resolver) DTHC(agent, origin, transit, carrier string) Amount {
	if carrier == "" {
		return Amount{Value: decimal.Zero}
	}
	res := Resolve(r.tables.DTHCs, r.asOf, func(d types.DTHC) bool {
		return d.Agent == agent && d.Origin == origin && d.Transit == transit && d.Carrier == carrier
	})
	return amountOf(res, func(d types.DTHC) decimal.Decimal { return d.Amount })
}

// DPCost resolves the disposal-container fee at the origin port
func (r *Resolver) DPCost(origin string) Amount {
	res := Resolve(r.tables.DPCosts, r.asOf, func(d types.DPCost) bool {
		return d.Origin == origin
	})
	return amountOf(res, func(d types.DPCost) decimal.Decimal { return d.Amount })
}

// CombinedFreight resolves an agent's bundled inland rate
func (r *Resolver) CombinedFreight(agent, transit, destination string) Amount {
	res := Resolve(r.tables.CombinedFreights, r.asOf, func(c types.CombinedFreight) bool {
		return c.Agent == agent && c.Transit == transit && c.Destination == destination
	})
	return amountOf(res, func(c types.CombinedFreight) decimal.Decimal { return c.Rate })
}

// PortBorderFreight resolves an agent's rail leg
func (r *Resolver) PortBorderFreight(agent, origin, transit string) Amount {
	res := Resolve(r.tables.PortBorderFreights, r.asOf, func(p types.PortBorderFreight) bool {
		return p.Agent == agent && p.Origin == origin && p.Transit == transit
	})
	return amountOf(res, func(p types.PortBorderFreight) decimal.Decimal { return p.Rate })
}

// BorderDestinationFreight resolves an agent's truck leg
func (r *Resolver) BorderDestinationFreight(agent, destination string) Amount {
	res := Resolve(r.tables.BorderDestinationFreights, r.asOf, func(b types.BorderDestinationFreight) bool {
		return b.Agent == agent && b.Destination == destination
	})
	return amountOf(res, func(b types.BorderDestinationFreight) decimal.Decimal { return b.Rate })
}

// WeightSurcharge resolves the surcharge for the agent's weight band containing weight
func (r *Resolver) WeightSurcharge(agent string, weight decimal.Decimal) Amount {
	res := Resolve(r.tables.WeightSurcharges, r.asOf, func(w types.WeightSurchargeRule) bool {
		return w.Agent == agent && w.Covers(weight)
	})
	return amountOf(res, func(w types.WeightSurchargeRule) decimal.Decimal { return w.Surcharge })
}
