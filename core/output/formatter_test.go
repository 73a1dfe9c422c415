package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
	tu "freight-cost/internal/testutil"
)

func sampleResult() *types.CostCalculationResult {
	return &types.CostCalculationResult{
		Input:           tu.Input(),
		CalculationDate: "2024-07-01",
		Breakdown: []types.AgentCostBreakdown{
			{
				ID:                 "a1",
				Agent:              "agentA",
				Kind:               types.KindSeparate,
				SeaFreight:         tu.D(420),
				RailFreight:        tu.D(2550),
				TruckFreight:       tu.D(2000),
				WeightSurcharge:    tu.D(50),
				Total:              tu.D(5020),
				ExpiredRateDetails: []string{},
			},
			{
				ID:                 "a2",
				Agent:              "agentA + COWIN",
				Kind:               types.KindFallback,
				SeaFreight:         tu.D(420),
				RailFreight:        tu.D(2550),
				TruckFreight:       tu.D(2100),
				Total:              tu.D(5070),
				HasExpiredRates:    true,
				ExpiredRateDetails: []string{types.ComponentTruckFreight},
			},
		},
		LowestCost:      tu.D(5020),
		LowestCostAgent: "agentA",
	}
}

func TestTableFormatterRendersBreakdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Render(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Busan → Qingdao → OSH")
	assert.Contains(t, out, "agentA + COWIN")
	assert.Contains(t, out, "5020.00")
	assert.Contains(t, out, types.ComponentTruckFreight)
	assert.Contains(t, out, "Lowest: agentA 5020.00")
}

func TestTableFormatterRendersMissingFreights(t *testing.T) {
	result := &types.CostCalculationResult{
		Input:           tu.Input(),
		CalculationDate: "2024-07-01",
		Breakdown:       []types.AgentCostBreakdown{},
		MissingFreights: []types.MissingFreight{
			{Type: types.MissingSeaFreight, Origin: "Busan", Transit: "Qingdao", Message: "no sea freight"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{Markdown: true}).Render(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "| seaFreight |")
	assert.Contains(t, out, "no sea freight")
	assert.NotContains(t, out, "Lowest:")
}

func TestTableFormatterEmptyBreakdown(t *testing.T) {
	result := &types.CostCalculationResult{Input: tu.Input(), Breakdown: []types.AgentCostBreakdown{}}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Render(&buf, result))
	assert.Contains(t, buf.String(), "No agent combination prices this route.")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Render(&buf, sampleResult()))

	var decoded types.CostCalculationResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "agentA", decoded.LowestCostAgent)
	require.Len(t, decoded.Breakdown, 2)
	assert.Equal(t, []string{types.ComponentTruckFreight}, decoded.Breakdown[1].ExpiredRateDetails)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []Format{FormatCLI, FormatJSON, FormatMarkdown, FormatXLSX}, r.Formats())

	f, err := r.Get(FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f.Format())

	_, err = r.Get("html")
	assert.True(t, errors.IsType(err, errors.TypeInput))

	assert.Error(t, r.Register(&JSONFormatter{}))
}
