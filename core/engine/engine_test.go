package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-cost/core/combination"
	"freight-cost/core/determinism"
	"freight-cost/core/pricing"
	"freight-cost/core/types"
	"freight-cost/internal/errors"
	tu "freight-cost/internal/testutil"
)

func testEngine() *Engine {
	return New(DefaultConfig(), WithClock(func() time.Time { return tu.CalcDate.Add(15 * time.Hour) }))
}

func registries(agents ...string) combination.Registries {
	return combination.Registries{
		RailAgents:    tu.Registry(agents...),
		TruckAgents:   tu.Registry("COWIN"),
		ShippingLines: tu.Registry(),
	}
}

func TestCalculateCostExample(t *testing.T) {
	result, err := testEngine().CalculateCost(tu.Input(), tu.ExampleTables(), registries("agentA"), nil)
	require.NoError(t, err)

	assert.Equal(t, "2024-07-01", result.CalculationDate)
	assert.False(t, result.IsHistorical)
	assert.Empty(t, result.MissingFreights)
	require.Len(t, result.Breakdown, 1)
	assert.Equal(t, "agentA", result.LowestCostAgent)
	assert.True(t, result.LowestCost.Equal(tu.D(5020)))

	lowest, ok := result.Lowest()
	require.True(t, ok)
	assert.Equal(t, types.KindSeparate, lowest.Kind)
}

func TestCalculateCostReportsMissingTables(t *testing.T) {
	result, err := testEngine().CalculateCost(tu.Input(), &pricing.Tables{}, registries("agentA"), nil)
	require.NoError(t, err)

	assert.NotNil(t, result.Breakdown)
	assert.Empty(t, result.Breakdown)
	assert.True(t, result.LowestCost.IsZero())
	assert.Empty(t, result.LowestCostAgent)

	var kinds []types.MissingFreightType
	for _, m := range result.MissingFreights {
		kinds = append(kinds, m.Type)
	}
	assert.Equal(t, []types.MissingFreightType{
		types.MissingSeaFreight,
		types.MissingCombinedFreight,
		types.MissingRailFreight,
		types.MissingTruckFreight,
	}, kinds)
}

func TestCalculateCostNilTables(t *testing.T) {
	result, err := testEngine().CalculateCost(tu.Input(), nil, registries("agentA"), nil)
	require.NoError(t, err)
	assert.True(t, result.HasMissingFreights())
}

func TestIncludeDPRequiresGeneralSeaFreight(t *testing.T) {
	tables := tu.ExampleTables()
	tables.SeaFreights = nil
	tables.AgentSeaFreights = []types.AgentSeaFreight{tu.AgentSea(tu.Live("asf-1"), "agentA", "Busan", "Qingdao", 300)}

	in := tu.Input()
	result, err := testEngine().CalculateCost(in, tables, registries("agentA"), nil)
	require.NoError(t, err)
	assert.Empty(t, result.MissingFreights)
	require.Len(t, result.Breakdown, 1)

	in.IncludeDP = true
	result, err = testEngine().CalculateCost(in, tables, registries("agentA"), nil)
	require.NoError(t, err)
	require.Len(t, result.MissingFreights, 1)
	assert.Equal(t, types.MissingSeaFreight, result.MissingFreights[0].Type)
	assert.Contains(t, result.MissingFreights[0].Message, "DP")
	assert.Empty(t, result.Breakdown)
}

func TestIncludeDPUsesExpiredGeneralSeaFreight(t *testing.T) {
	tables := tu.ExampleTables()
	tables.SeaFreights = []types.SeaFreight{tu.Sea(tu.Expired("sf-old"), "Busan", "Qingdao", 420, "")}

	in := tu.Input()
	in.IncludeDP = true
	result, err := testEngine().CalculateCost(in, tables, registries("agentA"), nil)
	require.NoError(t, err)
	assert.Empty(t, result.MissingFreights)
	require.Len(t, result.Breakdown, 1)
	assert.True(t, result.Breakdown[0].Total.Equal(tu.D(5020)))
	assert.Equal(t, []string{"해상운임"}, result.Breakdown[0].ExpiredRateDetails)
}

func TestHistoricalSnapshotOverridesTables(t *testing.T) {
	snapshot := &pricing.Snapshot{
		Date: "2024-03-01",
		Tables: pricing.Tables{
			PortBorderFreights: []types.PortBorderFreight{},
		},
	}

	in := tu.Input()
	in.HistoricalDate = "2024-03-01"

	result, err := testEngine().CalculateCost(in, tu.ExampleTables(), registries("agentA"), snapshot)
	require.NoError(t, err)

	assert.True(t, result.IsHistorical)
	assert.Equal(t, "2024-03-01", result.CalculationDate)
	assert.Equal(t, "2024-03-01", result.HistoricalDate)
	assert.Empty(t, result.Breakdown)

	var kinds []types.MissingFreightType
	for _, m := range result.MissingFreights {
		kinds = append(kinds, m.Type)
	}
	assert.Contains(t, kinds, types.MissingRailFreight)
	assert.NotContains(t, kinds, types.MissingSeaFreight)
}

func TestHistoricalSnapshotReplacesRates(t *testing.T) {
	snapshot := &pricing.Snapshot{
		Date: "2024-03-01",
		Tables: pricing.Tables{
			SeaFreights: []types.SeaFreight{tu.Sea(tu.Live("sf-old"), "Busan", "Qingdao", 390, "")},
		},
	}

	in := tu.Input()
	in.HistoricalDate = "2024-03-01"

	result, err := testEngine().CalculateCost(in, tu.ExampleTables(), registries("agentA"), snapshot)
	require.NoError(t, err)
	require.Len(t, result.Breakdown, 1)
	assert.True(t, result.Breakdown[0].SeaFreight.Equal(tu.D(390)))
	assert.True(t, result.LowestCost.Equal(tu.D(4990)))
}

func TestHistoricalDateChangesValidity(t *testing.T) {
	tables := tu.ExampleTables()
	tables.SeaFreights = append(tables.SeaFreights, tu.Sea(tu.Expired("sf-2023"), "Busan", "Qingdao", 390, ""))

	in := tu.Input()
	in.HistoricalDate = "2023-06-01"

	result, err := testEngine().CalculateCost(in, tables, registries("agentA"), nil)
	require.NoError(t, err)
	require.Len(t, result.Breakdown, 1)

	row := result.Breakdown[0]
	assert.True(t, row.SeaFreight.Equal(tu.D(390)))
	assert.True(t, row.HasExpiredRates)
	assert.Equal(t, []string{
		types.ComponentRailFreight,
		types.ComponentTruckFreight,
		types.ComponentWeightSurcharge,
	}, row.ExpiredRateDetails)
	assert.True(t, row.Total.Equal(tu.D(4990)))
}

func TestMalformedHistoricalDate(t *testing.T) {
	for _, date := range []string{"yesterday", "2024-13-01", "2024/07/01"} {
		t.Run(date, func(t *testing.T) {
			in := tu.Input()
			in.HistoricalDate = date

			result, err := testEngine().CalculateCost(in, tu.ExampleTables(), registries("agentA"), nil)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.IsType(err, errors.TypeInput))
		})
	}
}

func TestUnregisteredAgentsYieldEmptyBreakdown(t *testing.T) {
	result, err := testEngine().CalculateCost(tu.Input(), tu.ExampleTables(), registries("agentB"), nil)
	require.NoError(t, err)

	assert.Empty(t, result.MissingFreights)
	assert.NotNil(t, result.Breakdown)
	assert.Empty(t, result.Breakdown)
	assert.True(t, result.LowestCost.IsZero())
}

func TestLowestCostAcrossAgents(t *testing.T) {
	tables := tu.ExampleTables()
	tables.CombinedFreights = []types.CombinedFreight{tu.Combined(tu.Live("cf-b"), "agentB", "Qingdao", "OSH", 4000)}
	tables.BorderDestinationFreights = append(tables.BorderDestinationFreights, tu.Truck(tu.Live("bd-cowin"), "COWIN", "OSH", 1800))

	result, err := testEngine().CalculateCost(tu.Input(), tables, registries("agentA", "agentB"), nil)
	require.NoError(t, err)

	var labels []string
	for _, r := range result.Breakdown {
		labels = append(labels, r.Agent)
	}
	assert.ElementsMatch(t, []string{"agentA", "agentA + COWIN", "agentB"}, labels)
	assert.Equal(t, "agentB", result.LowestCostAgent)
	assert.True(t, result.LowestCost.Equal(tu.D(4420)))
}

func TestConfiguredFallbackCarrier(t *testing.T) {
	tables := tu.ExampleTables()
	tables.BorderDestinationFreights = append(tables.BorderDestinationFreights, tu.Truck(tu.Live("bd-trk"), "TRK", "OSH", 1500))

	e := New(EngineConfig{FallbackTruckAgent: "TRK"}, WithClock(func() time.Time { return tu.CalcDate }))
	result, err := e.CalculateCost(tu.Input(), tables, registries("agentA"), nil)
	require.NoError(t, err)
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "agentA + TRK", result.LowestCostAgent)
	assert.True(t, result.LowestCost.Equal(tu.D(4470)))
}

func TestCalculateCostIsDeterministic(t *testing.T) {
	tables := tu.ExampleTables()
	tables.CombinedFreights = []types.CombinedFreight{tu.Combined(tu.Live("cf-a"), "agentA", "Qingdao", "OSH", 4000)}
	before := tables.ContentHash()

	first, err := testEngine().CalculateCost(tu.Input(), tables, registries("agentA"), nil)
	require.NoError(t, err)
	second, err := testEngine().CalculateCost(tu.Input(), tables, registries("agentA"), nil)
	require.NoError(t, err)

	h1, err := determinism.HashJSON(first)
	require.NoError(t, err)
	h2, err := determinism.HashJSON(second)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, before, tables.ContentHash(), "tables must not be mutated")
}

func TestNewFillsDefaults(t *testing.T) {
	e := New(EngineConfig{})
	assert.Equal(t, combination.DefaultFallbackTruckAgent, e.config.FallbackTruckAgent)
	assert.Equal(t, DefaultConfig().Locale, e.config.Locale)
}
