package catalog

import (
	"encoding/json"
	"os"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
)

type jsonSnapshot struct {
	Date string `json:"date"`
	rowTables
}

type jsonDocument struct {
	RailAgents    []types.Partner `json:"railAgents"`
	TruckAgents   []types.Partner `json:"truckAgents"`
	ShippingLines []types.Partner `json:"shippingLines"`
	rowTables
	Snapshots []jsonSnapshot `json:"snapshots"`
}

// LoadJSON reads a JSON catalog. In a snapshot, an absent table keeps the live
// data and an empty array overrides it with no records.
func LoadJSON(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeCatalog, "failed to read catalog", err).WithContext("path", path)
	}
	return ParseJSON(data, path)
}

// ParseJSON decodes JSON catalog content; source names it in errors
func ParseJSON(data []byte, source string) (*Catalog, error) {
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Parsing("failed to decode catalog", err).WithContext("path", source)
	}

	d := &document{
		railAgents:    doc.RailAgents,
		truckAgents:   doc.TruckAgents,
		shippingLines: doc.ShippingLines,
		live:          doc.rowTables,
	}
	for _, s := range doc.Snapshots {
		d.snapshots = append(d.snapshots, datedTables{date: s.Date, tables: s.rowTables})
	}
	return d.build(source)
}
