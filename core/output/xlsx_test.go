package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"freight-cost/core/types"
)

func openWorkbook(t *testing.T, result *types.CostCalculationResult) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, (&XLSXFormatter{}).Render(&buf, result))

	fx, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { fx.Close() })
	return fx
}

func cell(t *testing.T, fx *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := fx.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestXLSXFormatterWritesBreakdown(t *testing.T) {
	fx := openWorkbook(t, sampleResult())

	assert.Equal(t, []string{quoteSheet}, fx.GetSheetList())
	assert.Contains(t, cell(t, fx, quoteSheet, "A1"), "Busan → Qingdao → OSH")
	assert.Equal(t, "Agent", cell(t, fx, quoteSheet, "A3"))
	assert.Equal(t, "Total", cell(t, fx, quoteSheet, "L3"))

	assert.Equal(t, "agentA", cell(t, fx, quoteSheet, "A4"))
	assert.Equal(t, "separate", cell(t, fx, quoteSheet, "B4"))
	assert.Equal(t, "5020", cell(t, fx, quoteSheet, "L4"))

	assert.Equal(t, "agentA + COWIN", cell(t, fx, quoteSheet, "A5"))
	assert.Equal(t, types.ComponentTruckFreight, cell(t, fx, quoteSheet, "M5"))

	assert.Equal(t, "Lowest", cell(t, fx, quoteSheet, "A7"))
	assert.Equal(t, "agentA", cell(t, fx, quoteSheet, "B7"))
	assert.Equal(t, "5020", cell(t, fx, quoteSheet, "L7"))
}

func TestXLSXFormatterWritesMissingRates(t *testing.T) {
	result := sampleResult()
	result.Breakdown = []types.AgentCostBreakdown{}
	result.MissingFreights = []types.MissingFreight{
		{Type: types.MissingRailFreight, Origin: "Busan", Transit: "Qingdao", Message: "no rail freight for Busan -> Qingdao"},
	}

	fx := openWorkbook(t, result)
	assert.Equal(t, []string{quoteSheet, missingSheet}, fx.GetSheetList())
	assert.Equal(t, "railFreight", cell(t, fx, missingSheet, "A2"))
	assert.Equal(t, "no rail freight for Busan -> Qingdao", cell(t, fx, missingSheet, "E2"))
	assert.Empty(t, cell(t, fx, quoteSheet, "A4"))
}
