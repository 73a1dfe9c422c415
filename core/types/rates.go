// Package types defines the freight rate records and quote results shared by all core packages.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category identifies one of the versioned rate tables
type Category string

const (
	CategorySeaFreight               Category = "seaFreight"
	CategoryAgentSeaFreight          Category = "agentSeaFreight"
	CategoryDTHC                     Category = "dthc"
	CategoryDPCost                   Category = "dpCost"
	CategoryCombinedFreight          Category = "combinedFreight"
	CategoryPortBorderFreight        Category = "portBorderFreight"
	CategoryBorderDestinationFreight Category = "borderDestinationFreight"
	CategoryWeightSurcharge          Category = "weightSurcharge"
)

// Categories lists every rate category in a fixed order
var Categories = []Category{
	CategorySeaFreight,
	CategoryAgentSeaFreight,
	CategoryDTHC,
	CategoryDPCost,
	CategoryCombinedFreight,
	CategoryPortBorderFreight,
	CategoryBorderDestinationFreight,
	CategoryWeightSurcharge,
}

// Version is the identity and validity window shared by every rate record.
// A zero ValidFrom or ValidTo leaves that side of the window open.
type Version struct {
	// ID identifies the record
	ID string `json:"id"`

	// ValidFrom is the first calendar day the record applies (inclusive)
	ValidFrom time.Time `json:"validFrom"`

	// ValidTo is the last calendar day the record applies (inclusive)
	ValidTo time.Time `json:"validTo"`

	// CreatedAt orders competing versions; newest wins
	CreatedAt time.Time `json:"createdAt"`
}

// Versioned is implemented by every rate record
type Versioned interface {
	GetVersion() Version
}

// GetVersion returns the record's version header
func (v Version) GetVersion() Version {
	return v
}

// SeaFreight is a general ocean rate from origin port to transit port
type SeaFreight struct {
	Version
	Origin      string          `json:"origin"`
	Transit     string          `json:"transit"`
	Rate        decimal.Decimal `json:"rate"`
	LocalCharge decimal.Decimal `json:"localCharge"`
	Carrier     string          `json:"carrier,omitempty"`
}

// AgentSeaFreight is an ocean rate negotiated by a specific agent. DTHC is bundled into it.
type AgentSeaFreight struct {
	Version
	Agent       string          `json:"agent"`
	Origin      string          `json:"origin"`
	Transit     string          `json:"transit"`
	Rate        decimal.Decimal `json:"rate"`
	LocalCharge decimal.Decimal `json:"localCharge"`
	LLocal      decimal.Decimal `json:"llocal"`
	Carrier     string          `json:"carrier,omitempty"`
}

// DTHC is a destination terminal handling charge
type DTHC struct {
	Version
	Agent   string          `json:"agent"`
	Origin  string          `json:"origin"`
	Transit string          `json:"transit"`
	Carrier string          `json:"carrier"`
	Amount  decimal.Decimal `json:"amount"`
}

// DPCost is the disposal-container fee charged at the origin port
type DPCost struct {
	Version
	Origin string          `json:"origin"`
	Amount decimal.Decimal `json:"amount"`
}

// CombinedFreight is a bundled rail+truck rate from transit port to destination
type CombinedFreight struct {
	Version
	Agent       string          `json:"agent"`
	Transit     string          `json:"transit"`
	Destination string          `json:"destination"`
	Rate        decimal.Decimal `json:"rate"`
}

// PortBorderFreight is the rail leg from transit port to the border
type PortBorderFreight struct {
	Version
	Agent   string          `json:"agent"`
	Origin  string          `json:"origin"`
	Transit string          `json:"transit"`
	Rate    decimal.Decimal `json:"rate"`
}

// BorderDestinationFreight is the truck leg from the border to the destination
type BorderDestinationFreight struct {
	Version
	Agent       string          `json:"agent"`
	Destination string          `json:"destination"`
	Rate        decimal.Decimal `json:"rate"`
}

// WeightSurchargeRule adds a surcharge for cargo weighing between MinWeight and MaxWeight (inclusive)
type WeightSurchargeRule struct {
	Version
	Agent     string          `json:"agent"`
	MinWeight decimal.Decimal `json:"minWeight"`
	MaxWeight decimal.Decimal `json:"maxWeight"`
	Surcharge decimal.Decimal `json:"surcharge"`
}

// Covers reports whether the rule's weight band contains weight
func (r WeightSurchargeRule) Covers(weight decimal.Decimal) bool {
	return r.MinWeight.LessThanOrEqual(weight) && weight.LessThanOrEqual(r.MaxWeight)
}
