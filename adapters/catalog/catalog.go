// Package catalog loads rate catalogs from JSON or HCL files.
//
// A catalog holds the live rate tables, the partner registries and any number of
// dated historical snapshots. The engine never reads files itself; callers load a
// catalog here and pass its tables and snapshots in.
package catalog

import (
	"path/filepath"
	"strings"

	"freight-cost/core/combination"
	"freight-cost/core/determinism"
	"freight-cost/core/pricing"
	"freight-cost/core/types"
	"freight-cost/core/validity"
	"freight-cost/internal/errors"
)

// Catalog is a loaded rate catalog
type Catalog struct {
	// Source is the file the catalog was read from
	Source string

	// Tables are the live rate tables
	Tables *pricing.Tables

	// Registries are the registered partners
	Registries combination.Registries

	// Snapshots are historical reconstructions keyed by YYYY-MM-DD
	Snapshots map[string]*pricing.Snapshot
}

// Load reads a catalog, picking the decoder from the file extension
func Load(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".hcl":
		return LoadHCL(path)
	default:
		return nil, errors.Newf(errors.TypeCatalog, "unsupported catalog format: %s", path).
			WithContext("path", path)
	}
}

// SnapshotAt returns the snapshot recorded for date, or nil.
// Only exact dates match; there is no nearest-date search.
func (c *Catalog) SnapshotAt(date string) *pricing.Snapshot {
	if c == nil || date == "" {
		return nil
	}
	return c.Snapshots[date]
}

// Dates lists the snapshot dates in ascending order
func (c *Catalog) Dates() []string {
	if c == nil {
		return nil
	}
	return determinism.SortedKeys(c.Snapshots)
}

// document is the decoded, format-independent catalog content
type document struct {
	railAgents    []types.Partner
	truckAgents   []types.Partner
	shippingLines []types.Partner
	live          rowTables
	snapshots     []datedTables
}

type datedTables struct {
	date   string
	tables rowTables
}

func (d *document) build(source string) (*Catalog, error) {
	live, err := d.live.tables()
	if err != nil {
		return nil, withSource(err, source)
	}

	c := &Catalog{
		Source: source,
		Tables: live,
		Registries: combination.Registries{
			RailAgents:    types.NewRegistry(d.railAgents),
			TruckAgents:   types.NewRegistry(d.truckAgents),
			ShippingLines: types.NewRegistry(d.shippingLines),
		},
		Snapshots: make(map[string]*pricing.Snapshot, len(d.snapshots)),
	}

	for _, s := range d.snapshots {
		if _, err := validity.ParseDate(s.date); err != nil {
			return nil, errors.Wrapf(errors.TypeCatalog, err, "invalid snapshot date %q", s.date).
				WithContext("path", source)
		}
		if _, exists := c.Snapshots[s.date]; exists {
			return nil, errors.Newf(errors.TypeCatalog, "duplicate snapshot date %s", s.date).
				WithContext("path", source)
		}

		tables, err := s.tables.tables()
		if err != nil {
			return nil, withSource(err, source).WithContext("snapshot", s.date)
		}
		c.Snapshots[s.date] = &pricing.Snapshot{Date: s.date, Tables: *tables}
	}

	return c, nil
}

func withSource(err error, source string) *errors.Error {
	var e *errors.Error
	if ce, ok := err.(*errors.Error); ok {
		e = ce
	} else {
		e = errors.Wrap(errors.TypeCatalog, "invalid catalog", err)
	}
	return e.WithContext("path", source)
}
