package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
)

// HCL catalogs use one labelled block per record:
//
//	rail_agent "agentA" { code = "AGA" }
//
//	sea_freight "sf-1" {
//	  origin     = "Busan"
//	  transit    = "Qingdao"
//	  rate       = 420
//	  valid_from = "2024-01-01"
//	  valid_to   = "2024-12-31"
//	}
//
//	snapshot "2024-03-01" {
//	  empty = ["combined_freight"]
//	  sea_freight "sf-old" { ... }
//	}
//
// A snapshot overrides every table it has blocks for, plus those listed in empty.

type hclPartner struct {
	Name string `hcl:"name,label"`
	Code string `hcl:"code,optional"`
}

type hclDocument struct {
	RailAgents    []hclPartner  `hcl:"rail_agent,block"`
	TruckAgents   []hclPartner  `hcl:"truck_agent,block"`
	ShippingLines []hclPartner  `hcl:"shipping_line,block"`
	Snapshots     []hclSnapshot `hcl:"snapshot,block"`
	Tables        hcl.Body      `hcl:",remain"`
}

type hclSnapshot struct {
	Date   string   `hcl:"date,label"`
	Empty  []string `hcl:"empty,optional"`
	Tables hcl.Body `hcl:",remain"`
}

type hclTables struct {
	SeaFreights               []hclRow `hcl:"sea_freight,block"`
	AgentSeaFreights          []hclRow `hcl:"agent_sea_freight,block"`
	DTHCs                     []hclRow `hcl:"dthc,block"`
	DPCosts                   []hclRow `hcl:"dp_cost,block"`
	CombinedFreights          []hclRow `hcl:"combined_freight,block"`
	PortBorderFreights        []hclRow `hcl:"port_border_freight,block"`
	BorderDestinationFreights []hclRow `hcl:"border_destination_freight,block"`
	WeightSurcharges          []hclRow `hcl:"weight_surcharge,block"`
}

type hclRow struct {
	ID          string         `hcl:"id,label"`
	ValidFrom   string         `hcl:"valid_from,optional"`
	ValidTo     string         `hcl:"valid_to,optional"`
	CreatedAt   string         `hcl:"created_at,optional"`
	Agent       string         `hcl:"agent,optional"`
	Origin      string         `hcl:"origin,optional"`
	Transit     string         `hcl:"transit,optional"`
	Destination string         `hcl:"destination,optional"`
	Carrier     string         `hcl:"carrier,optional"`
	Rate        hcl.Expression `hcl:"rate,optional"`
	LocalCharge hcl.Expression `hcl:"local_charge,optional"`
	LLocal      hcl.Expression `hcl:"llocal,optional"`
	Amount      hcl.Expression `hcl:"amount,optional"`
	MinWeight   hcl.Expression `hcl:"min_weight,optional"`
	MaxWeight   hcl.Expression `hcl:"max_weight,optional"`
	Surcharge   hcl.Expression `hcl:"surcharge,optional"`
}

// LoadHCL reads an HCL catalog
func LoadHCL(path string) (*Catalog, error) {
	var doc hclDocument
	if err := hclsimple.DecodeFile(path, nil, &doc); err != nil {
		return nil, errors.Parsing("failed to decode catalog", err).WithContext("path", path)
	}

	live, err := decodeTables(doc.Tables, nil)
	if err != nil {
		return nil, withSource(err, path)
	}

	d := &document{
		railAgents:    partners(doc.RailAgents),
		truckAgents:   partners(doc.TruckAgents),
		shippingLines: partners(doc.ShippingLines),
		live:          live,
	}
	for _, s := range doc.Snapshots {
		tables, err := decodeTables(s.Tables, s.Empty)
		if err != nil {
			return nil, withSource(err, path).WithContext("snapshot", s.Date)
		}
		d.snapshots = append(d.snapshots, datedTables{date: s.Date, tables: tables})
	}
	return d.build(path)
}

func partners(blocks []hclPartner) []types.Partner {
	result := make([]types.Partner, 0, len(blocks))
	for _, b := range blocks {
		result = append(result, types.Partner{Name: b.Name, Code: b.Code})
	}
	return result
}

// decodeTables converts the record blocks of body. A table without blocks stays
// nil unless its block name is listed in empty.
func decodeTables(body hcl.Body, empty []string) (rowTables, error) {
	var ht hclTables
	if diags := gohcl.DecodeBody(body, nil, &ht); diags.HasErrors() {
		return rowTables{}, errors.Parsing("failed to decode rate blocks", diags)
	}

	var rt rowTables
	targets := []struct {
		block  string
		blocks []hclRow
		dest   *[]row
	}{
		{"sea_freight", ht.SeaFreights, &rt.SeaFreights},
		{"agent_sea_freight", ht.AgentSeaFreights, &rt.AgentSeaFreights},
		{"dthc", ht.DTHCs, &rt.DTHCs},
		{"dp_cost", ht.DPCosts, &rt.DPCosts},
		{"combined_freight", ht.CombinedFreights, &rt.CombinedFreights},
		{"port_border_freight", ht.PortBorderFreights, &rt.PortBorderFreights},
		{"border_destination_freight", ht.BorderDestinationFreights, &rt.BorderDestinationFreights},
		{"weight_surcharge", ht.WeightSurcharges, &rt.WeightSurcharges},
	}

	cleared := make(map[string]bool, len(empty))
	for _, name := range empty {
		cleared[name] = true
	}

	known := make(map[string]bool, len(targets))
	for _, target := range targets {
		known[target.block] = true
		for _, block := range target.blocks {
			r, err := block.row()
			if err != nil {
				return rowTables{}, errors.Wrapf(errors.TypeCatalog, err, "%s %q", target.block, block.ID)
			}
			*target.dest = append(*target.dest, r)
		}
		if *target.dest == nil && cleared[target.block] {
			*target.dest = []row{}
		}
	}

	for _, name := range empty {
		if !known[name] {
			return rowTables{}, errors.Newf(errors.TypeCatalog, "unknown table in empty: %s", name)
		}
	}

	return rt, nil
}

func (b hclRow) row() (row, error) {
	r := row{
		ID:          b.ID,
		ValidFrom:   b.ValidFrom,
		ValidTo:     b.ValidTo,
		CreatedAt:   b.CreatedAt,
		Agent:       b.Agent,
		Origin:      b.Origin,
		Transit:     b.Transit,
		Destination: b.Destination,
		Carrier:     b.Carrier,
	}

	amounts := []struct {
		name string
		expr hcl.Expression
		dest *decimal.Decimal
	}{
		{"rate", b.Rate, &r.Rate},
		{"local_charge", b.LocalCharge, &r.LocalCharge},
		{"llocal", b.LLocal, &r.LLocal},
		{"amount", b.Amount, &r.Amount},
		{"min_weight", b.MinWeight, &r.MinWeight},
		{"max_weight", b.MaxWeight, &r.MaxWeight},
		{"surcharge", b.Surcharge, &r.Surcharge},
	}
	for _, a := range amounts {
		d, err := decimalValue(a.expr)
		if err != nil {
			return row{}, fmt.Errorf("%s: %w", a.name, err)
		}
		*a.dest = d
	}
	return r, nil
}

// decimalValue evaluates a literal amount. Numbers keep their written digits;
// quoted decimals are accepted as well. A missing attribute is zero.
func decimalValue(expr hcl.Expression) (decimal.Decimal, error) {
	if expr == nil {
		return decimal.Zero, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Zero, diags
	}
	if val.IsNull() {
		return decimal.Zero, nil
	}
	if !val.IsWhollyKnown() {
		return decimal.Zero, fmt.Errorf("value is not known")
	}

	switch val.Type() {
	case cty.Number:
		return decimal.NewFromString(val.AsBigFloat().Text('f', -1))
	case cty.String:
		return decimal.NewFromString(val.AsString())
	default:
		return decimal.Zero, fmt.Errorf("expected a number, got %s", val.Type().FriendlyName())
	}
}
