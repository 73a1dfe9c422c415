package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"freight-cost/core/pricing"
	"freight-cost/core/types"
	"freight-cost/core/validity"
	"freight-cost/internal/errors"
)

// row is the union of every rate record's fields. Each table reads the fields it needs.
type row struct {
	ID          string          `json:"id"`
	ValidFrom   string          `json:"validFrom"`
	ValidTo     string          `json:"validTo"`
	CreatedAt   string          `json:"createdAt"`
	Agent       string          `json:"agent"`
	Origin      string          `json:"origin"`
	Transit     string          `json:"transit"`
	Destination string          `json:"destination"`
	Carrier     string          `json:"carrier"`
	Rate        decimal.Decimal `json:"rate"`
	LocalCharge decimal.Decimal `json:"localCharge"`
	LLocal      decimal.Decimal `json:"llocal"`
	Amount      decimal.Decimal `json:"amount"`
	MinWeight   decimal.Decimal `json:"minWeight"`
	MaxWeight   decimal.Decimal `json:"maxWeight"`
	Surcharge   decimal.Decimal `json:"surcharge"`
}

// rowTables mirrors pricing.Tables. A nil slice is an absent table.
type rowTables struct {
	SeaFreights               []row `json:"seaFreights"`
	AgentSeaFreights          []row `json:"agentSeaFreights"`
	DTHCs                     []row `json:"dthcs"`
	DPCosts                   []row `json:"dpCosts"`
	CombinedFreights          []row `json:"combinedFreights"`
	PortBorderFreights        []row `json:"portBorderFreights"`
	BorderDestinationFreights []row `json:"borderDestinationFreights"`
	WeightSurcharges          []row `json:"weightSurcharges"`
}

func (r row) version() (types.Version, error) {
	from, err := optionalDate(r.ValidFrom)
	if err != nil {
		return types.Version{}, err
	}
	to, err := optionalDate(r.ValidTo)
	if err != nil {
		return types.Version{}, err
	}
	created, err := optionalDate(r.CreatedAt)
	if err != nil {
		return types.Version{}, err
	}
	return types.Version{ID: r.ID, ValidFrom: from, ValidTo: to, CreatedAt: created}, nil
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return validity.ParseDate(s)
}

func convert[T any](category types.Category, rows []row, build func(row, types.Version) T) ([]T, error) {
	if rows == nil {
		return nil, nil
	}
	out := make([]T, 0, len(rows))
	for i, r := range rows {
		v, err := r.version()
		if err != nil {
			return nil, errors.Wrapf(errors.TypeCatalog, err, "%s row %d: invalid date", category, i+1).
				WithContext("id", r.ID)
		}
		out = append(out, build(r, v))
	}
	return out, nil
}

func (rt rowTables) tables() (*pricing.Tables, error) {
	var (
		t   pricing.Tables
		err error
	)

	if t.SeaFreights, err = convert(types.CategorySeaFreight, rt.SeaFreights, func(r row, v types.Version) types.SeaFreight {
		return types.SeaFreight{Version: v, Origin: r.Origin, Transit: r.Transit, Rate: r.Rate, LocalCharge: r.LocalCharge, Carrier: r.Carrier}
	}); err != nil {
		return nil, err
	}

	if t.AgentSeaFreights, err = convert(types.CategoryAgentSeaFreight, rt.AgentSeaFreights, func(r row, v types.Version) types.AgentSeaFreight {
		return types.AgentSeaFreight{Version: v, Agent: r.Agent, Origin: r.Origin, Transit: r.Transit, Rate: r.Rate, LocalCharge: r.LocalCharge, LLocal: r.LLocal, Carrier: r.Carrier}
	}); err != nil {
		return nil, err
	}

	if t.DTHCs, err = convert(types.CategoryDTHC, rt.DTHCs, func(r row, v types.Version) types.DTHC {
		return types.DTHC{Version: v, Agent: r.Agent, Origin: r.Origin, Transit: r.Transit, Carrier: r.Carrier, Amount: r.Amount}
	}); err != nil {
		return nil, err
	}

	if t.DPCosts, err = convert(types.CategoryDPCost, rt.DPCosts, func(r row, v types.Version) types.DPCost {
		return types.DPCost{Version: v, Origin: r.Origin, Amount: r.Amount}
	}); err != nil {
		return nil, err
	}

	if t.CombinedFreights, err = convert(types.CategoryCombinedFreight, rt.CombinedFreights, func(r row, v types.Version) types.CombinedFreight {
		return types.CombinedFreight{Version: v, Agent: r.Agent, Transit: r.Transit, Destination: r.Destination, Rate: r.Rate}
	}); err != nil {
		return nil, err
	}

	if t.PortBorderFreights, err = convert(types.CategoryPortBorderFreight, rt.PortBorderFreights, func(r row, v types.Version) types.PortBorderFreight {
		return types.PortBorderFreight{Version: v, Agent: r.Agent, Origin: r.Origin, Transit: r.Transit, Rate: r.Rate}
	}); err != nil {
		return nil, err
	}

	if t.BorderDestinationFreights, err = convert(types.CategoryBorderDestinationFreight, rt.BorderDestinationFreights, func(r row, v types.Version) types.BorderDestinationFreight {
		return types.BorderDestinationFreight{Version: v, Agent: r.Agent, Destination: r.Destination, Rate: r.Rate}
	}); err != nil {
		return nil, err
	}

	if t.WeightSurcharges, err = convert(types.CategoryWeightSurcharge, rt.WeightSurcharges, func(r row, v types.Version) types.WeightSurchargeRule {
		return types.WeightSurchargeRule{Version: v, Agent: r.Agent, MinWeight: r.MinWeight, MaxWeight: r.MaxWeight, Surcharge: r.Surcharge}
	}); err != nil {
		return nil, err
	}

	return &t, nil
}
