// Package types - quote request and result types
package types

import (
	"github.com/shopspring/decimal"
)

// CostItem is a named ancillary cost added to every combination
type CostItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// CostInput is a shipment pricing request
type CostInput struct {
	// Origin is the port of loading
	Origin string `json:"origin"`

	// Transit is the port of discharge where the inland legs start
	Transit string `json:"transit"`

	// Destination is the final inland destination id
	Destination string `json:"destination"`

	// Weight is the cargo weight in kilograms
	Weight decimal.Decimal `json:"weight"`

	// IncludeDP prices the disposal-container fee and forces general sea freight
	IncludeDP bool `json:"includeDP"`

	// DomesticTransport is the origin-side trucking amount
	DomesticTransport decimal.Decimal `json:"domesticTransport"`

	// OtherCosts are itemized ancillary costs
	OtherCosts []CostItem `json:"otherCosts,omitempty"`

	// SeaFreightID optionally pins a general sea freight record
	SeaFreightID string `json:"seaFreightId,omitempty"`

	// HistoricalDate (YYYY-MM-DD) prices the shipment as of a past date
	HistoricalDate string `json:"historicalDate,omitempty"`
}

// OtherCostsTotal sums the ancillary cost items
func (in CostInput) OtherCostsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range in.OtherCosts {
		total = total.Add(item.Amount)
	}
	return total
}

// CombinationKind describes how the inland legs are carried
type CombinationKind string

const (
	// KindCombined uses a single bundled rail+truck rate
	KindCombined CombinationKind = "combined"

	// KindSeparate uses the agent's own rail and truck legs
	KindSeparate CombinationKind = "separate"

	// KindFallback uses the agent's rail leg with the fallback truck carrier
	KindFallback CombinationKind = "fallback"
)

// Component labels reported in ExpiredRateDetails
const (
	ComponentSeaFreight      = "해상운임"
	ComponentDTHC            = "DTHC"
	ComponentRailFreight     = "철도운임"
	ComponentTruckFreight    = "트럭운임"
	ComponentWeightSurcharge = "중량할증"
	ComponentDP              = "DP"
	ComponentCombinedFreight = "통합운임"
)

// AgentCostBreakdown is one priced combination
type AgentCostBreakdown struct {
	// ID is a deterministic identifier for the combination on this route
	ID string `json:"id"`

	// Agent is the combination label ("<agent>" or "<agent> + <fallback>")
	Agent string          `json:"agent"`
	Kind  CombinationKind `json:"kind"`

	RailAgent        string `json:"railAgent"`
	RailAgentCode    string `json:"railAgentCode"`
	TruckAgent       string `json:"truckAgent"`
	TruckAgentCode   string `json:"truckAgentCode"`
	ShippingLine     string `json:"shippingLine,omitempty"`
	ShippingLineCode string `json:"shippingLineCode,omitempty"`

	SeaFreight        decimal.Decimal `json:"seaFreight"`
	LocalCharge       decimal.Decimal `json:"localCharge"`
	DTHC              decimal.Decimal `json:"dthc"`
	CombinedFreight   decimal.Decimal `json:"combinedFreight"`
	RailFreight       decimal.Decimal `json:"railFreight"`
	TruckFreight      decimal.Decimal `json:"truckFreight"`
	WeightSurcharge   decimal.Decimal `json:"weightSurcharge"`
	DP                decimal.Decimal `json:"dp"`
	DomesticTransport decimal.Decimal `json:"domesticTransport"`
	OtherCosts        []CostItem      `json:"otherCosts,omitempty"`
	OtherCostsTotal   decimal.Decimal `json:"otherCostsTotal"`
	LLocal            decimal.Decimal `json:"llocal"`
	Total             decimal.Decimal `json:"total"`

	IsAgentSpecificSeaFreight bool `json:"isAgentSpecificSeaFreight"`
	IsCombinedFreight         bool `json:"isCombinedFreight"`

	HasExpiredRates    bool     `json:"hasExpiredRates"`
	ExpiredRateDetails []string `json:"expiredRateDetails"`
}

// MissingFreightType names the table a diagnostic refers to
type MissingFreightType string

const (
	MissingSeaFreight      MissingFreightType = "seaFreight"
	MissingCombinedFreight MissingFreightType = "combinedFreight"
	MissingRailFreight     MissingFreightType = "railFreight"
	MissingTruckFreight    MissingFreightType = "truckFreight"
)

// MissingFreight documents a rate table lacking data for the requested route
type MissingFreight struct {
	Type        MissingFreightType `json:"type"`
	Origin      string             `json:"origin,omitempty"`
	Transit     string             `json:"transit,omitempty"`
	Destination string             `json:"destination,omitempty"`
	Message     string             `json:"message"`
}

// CostCalculationResult is the outcome of a pricing run. Either MissingFreights is
// set and Breakdown is empty, or Breakdown holds every combination found.
type CostCalculationResult struct {
	Input           CostInput            `json:"input"`
	CalculationDate string               `json:"calculationDate"`
	Breakdown       []AgentCostBreakdown `json:"breakdown"`
	LowestCost      decimal.Decimal      `json:"lowestCost"`
	LowestCostAgent string               `json:"lowestCostAgent"`
	IsHistorical    bool                 `json:"isHistorical"`
	HistoricalDate  string               `json:"historicalDate,omitempty"`
	MissingFreights []MissingFreight     `json:"missingFreights,omitempty"`
}

// HasMissingFreights reports whether the validator rejected the route
func (r *CostCalculationResult) HasMissingFreights() bool {
	return len(r.MissingFreights) > 0
}

// Lowest returns the cheapest breakdown, if any
func (r *CostCalculationResult) Lowest() (AgentCostBreakdown, bool) {
	for _, b := range r.Breakdown {
		if b.Agent == r.LowestCostAgent && b.Total.Equal(r.LowestCost) {
			return b, true
		}
	}
	return AgentCostBreakdown{}, false
}
