package output

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"freight-cost/core/types"
)

const (
	quoteSheet   = "Quote"
	missingSheet = "Missing Rates"

	// header row of the breakdown; data starts on the next row
	headerRow = 3
)

var breakdownHeader = []interface{}{
	"Agent", "Kind", "Sea", "Local", "DTHC", "Combined", "Rail", "Truck",
	"Surcharge", "DP", "Other", "Total", "Expired",
}

// XLSXFormatter renders the result as an Excel workbook
type XLSXFormatter struct{}

func (f *XLSXFormatter) Format() Format { return FormatXLSX }

func (f *XLSXFormatter) Render(w io.Writer, result *types.CostCalculationResult) error {
	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), quoteSheet); err != nil {
		return err
	}

	styles, err := newSheetStyles(fx)
	if err != nil {
		return err
	}

	if err := fx.SetCellValue(quoteSheet, "A1", quoteTitle(result)); err != nil {
		return err
	}

	if result.HasMissingFreights() {
		if _, err := fx.NewSheet(missingSheet); err != nil {
			return err
		}
		if err := writeMissing(fx, styles, result.MissingFreights); err != nil {
			return err
		}
	}

	if err := writeBreakdown(fx, styles, result); err != nil {
		return err
	}

	return fx.Write(w)
}

type sheetStyles struct {
	header int
	money  int
	lowest int
}

func newSheetStyles(fx *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	s.header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return s, err
	}

	// #,##0.00
	s.money, err = fx.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return s, err
	}

	s.lowest, err = fx.NewStyle(&excelize.Style{
		NumFmt: 4,
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
	})
	return s, err
}

func writeBreakdown(fx *excelize.File, styles sheetStyles, result *types.CostCalculationResult) error {
	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := fx.SetSheetRow(quoteSheet, start, &breakdownHeader); err != nil {
		return err
	}
	end, _ := excelize.CoordinatesToCellName(len(breakdownHeader), headerRow)
	if err := fx.SetCellStyle(quoteSheet, start, end, styles.header); err != nil {
		return err
	}

	for i, b := range result.Breakdown {
		row := headerRow + 1 + i
		values := []interface{}{
			b.Agent,
			string(b.Kind),
			b.SeaFreight.InexactFloat64(),
			b.LocalCharge.InexactFloat64(),
			b.DTHC.InexactFloat64(),
			b.CombinedFreight.InexactFloat64(),
			b.RailFreight.InexactFloat64(),
			b.TruckFreight.InexactFloat64(),
			b.WeightSurcharge.InexactFloat64(),
			b.DP.InexactFloat64(),
			otherTotal(b).InexactFloat64(),
			b.Total.InexactFloat64(),
			strings.Join(b.ExpiredRateDetails, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := fx.SetSheetRow(quoteSheet, cell, &values); err != nil {
			return err
		}

		style := styles.money
		if b.Agent == result.LowestCostAgent && b.Total.Equal(result.LowestCost) {
			style = styles.lowest
		}
		first, _ := excelize.CoordinatesToCellName(3, row)
		last, _ := excelize.CoordinatesToCellName(12, row)
		if err := fx.SetCellStyle(quoteSheet, first, last, style); err != nil {
			return err
		}
	}

	if len(result.Breakdown) > 0 {
		row := headerRow + len(result.Breakdown) + 2
		label, _ := excelize.CoordinatesToCellName(1, row)
		if err := fx.SetSheetRow(quoteSheet, label, &[]interface{}{"Lowest", result.LowestCostAgent}); err != nil {
			return err
		}
		total, _ := excelize.CoordinatesToCellName(12, row)
		if err := fx.SetCellValue(quoteSheet, total, result.LowestCost.InexactFloat64()); err != nil {
			return err
		}
		if err := fx.SetCellStyle(quoteSheet, total, total, styles.lowest); err != nil {
			return err
		}
	}

	return fx.SetColWidth(quoteSheet, "A", "A", 24)
}

func writeMissing(fx *excelize.File, styles sheetStyles, missing []types.MissingFreight) error {
	if err := fx.SetSheetRow(missingSheet, "A1", &[]interface{}{"Table", "Origin", "Transit", "Destination", "Message"}); err != nil {
		return err
	}
	if err := fx.SetCellStyle(missingSheet, "A1", "E1", styles.header); err != nil {
		return err
	}
	for i, m := range missing {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{string(m.Type), m.Origin, m.Transit, m.Destination, m.Message}
		if err := fx.SetSheetRow(missingSheet, cell, &row); err != nil {
			return err
		}
	}
	return fx.SetColWidth(missingSheet, "E", "E", 60)
}
