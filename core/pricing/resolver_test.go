package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-cost/core/types"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func version(id, from, to, created string) types.Version {
	return types.Version{ID: id, ValidFrom: day(from), ValidTo: day(to), CreatedAt: day(created)}
}

func TestResolvePrefersLiveRecord(t *testing.T) {
	live := types.SeaFreight{Version: version("live", "2024-01-01", "2024-12-31", "2024-01-01"), Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(420)}
	expired := types.SeaFreight{Version: version("old", "2023-01-01", "2023-12-31", "2024-06-01"), Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(380)}

	r := NewResolver(&Tables{SeaFreights: []types.SeaFreight{expired, live}}, day("2024-07-01"))
	res := r.SeaFreight("Busan", "Qingdao")

	require.True(t, res.Found)
	assert.False(t, res.Expired)
	assert.Equal(t, "live", res.Record.ID)

	// Removing the live record falls back to the expired one
	r = NewResolver(&Tables{SeaFreights: []types.SeaFreight{expired}}, day("2024-07-01"))
	res = r.SeaFreight("Busan", "Qingdao")

	require.True(t, res.Found)
	assert.True(t, res.Expired)
	assert.Equal(t, "old", res.Record.ID)
}

func TestResolveNotFoundIsDistinctFromExpired(t *testing.T) {
	r := NewResolver(&Tables{}, day("2024-07-01"))

	res := r.SeaFreight("Busan", "Qingdao")
	assert.False(t, res.Found)
	assert.False(t, res.Expired)

	amt := r.PortBorderFreight("agentA", "Busan", "Qingdao")
	assert.False(t, amt.Found)
	assert.True(t, amt.Value.IsZero())
}

func TestResolveFallsBackToNewestCreated(t *testing.T) {
	older := types.PortBorderFreight{Version: version("older", "2022-01-01", "2022-12-31", "2022-01-01"), Agent: "agentA", Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(2000)}
	newer := types.PortBorderFreight{Version: version("newer", "2023-01-01", "2023-12-31", "2023-01-01"), Agent: "agentA", Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(2200)}

	// Input order must not matter
	for _, rows := range [][]types.PortBorderFreight{{older, newer}, {newer, older}} {
		r := NewResolver(&Tables{PortBorderFreights: rows}, day("2024-07-01"))
		amt := r.PortBorderFreight("agentA", "Busan", "Qingdao")

		require.True(t, amt.Found)
		assert.True(t, amt.Expired)
		assert.True(t, amt.Value.Equal(decimal.NewFromInt(2200)))
	}
}

func TestResolveOverlappingLiveRecordsPicksNewest(t *testing.T) {
	a := types.BorderDestinationFreight{Version: version("a", "2024-01-01", "2024-12-31", "2024-01-01"), Agent: "agentA", Destination: "OSH", Rate: decimal.NewFromInt(1900)}
	b := types.BorderDestinationFreight{Version: version("b", "2024-03-01", "2024-12-31", "2024-03-01"), Agent: "agentA", Destination: "OSH", Rate: decimal.NewFromInt(2000)}

	r := NewResolver(&Tables{BorderDestinationFreights: []types.BorderDestinationFreight{a, b}}, day("2024-07-01"))
	amt := r.BorderDestinationFreight("agentA", "OSH")

	assert.False(t, amt.Expired)
	assert.True(t, amt.Value.Equal(decimal.NewFromInt(2000)))
}

func TestResolveKeysAreExactMatch(t *testing.T) {
	row := types.CombinedFreight{Version: version("c", "2024-01-01", "2024-12-31", "2024-01-01"), Agent: "agentA", Transit: "Qingdao", Destination: "OSH", Rate: decimal.NewFromInt(4000)}
	r := NewResolver(&Tables{CombinedFreights: []types.CombinedFreight{row}}, day("2024-07-01"))

	assert.True(t, r.CombinedFreight("agentA", "Qingdao", "OSH").Found)
	assert.False(t, r.CombinedFreight("agenta", "Qingdao", "OSH").Found)
	assert.False(t, r.CombinedFreight("agentA", "Qingdao ", "OSH").Found)
}

func TestDTHCWithoutCarrierResolvesToZero(t *testing.T) {
	row := types.DTHC{Version: version("d", "2020-01-01", "2020-12-31", "2020-01-01"), Agent: "agentA", Origin: "Busan", Transit: "Qingdao", Carrier: "", Amount: decimal.NewFromInt(150)}
	r := NewResolver(&Tables{DTHCs: []types.DTHC{row}}, day("2024-07-01"))

	amt := r.DTHC("agentA", "Busan", "Qingdao", "")
	assert.False(t, amt.Found)
	assert.False(t, amt.Expired)
	assert.True(t, amt.Value.IsZero())
}

func TestDTHCMatchesCarrier(t *testing.T) {
	row := types.DTHC{Version: version("d", "2024-01-01", "2024-12-31", "2024-01-01"), Agent: "agentA", Origin: "Busan", Transit: "Qingdao", Carrier: "SITC", Amount: decimal.NewFromInt(150)}
	r := NewResolver(&Tables{DTHCs: []types.DTHC{row}}, day("2024-07-01"))

	assert.True(t, r.DTHC("agentA", "Busan", "Qingdao", "SITC").Value.Equal(decimal.NewFromInt(150)))
	assert.False(t, r.DTHC("agentA", "Busan", "Qingdao", "COSCO").Found)
}

func TestWeightSurchargeFiltersBand(t *testing.T) {
	light := types.WeightSurchargeRule{Version: version("w1", "2024-01-01", "2024-12-31", "2024-01-01"), Agent: "agentA", MinWeight: decimal.Zero, MaxWeight: decimal.NewFromInt(2000), Surcharge: decimal.NewFromInt(50)}
	heavy := types.WeightSurchargeRule{Version: version("w2", "2024-01-01", "2024-12-31", "2024-01-02"), Agent: "agentA", MinWeight: decimal.NewFromInt(2001), MaxWeight: decimal.NewFromInt(30000), Surcharge: decimal.NewFromInt(200)}
	r := NewResolver(&Tables{WeightSurcharges: []types.WeightSurchargeRule{light, heavy}}, day("2024-07-01"))

	tests := []struct {
		weight   int64
		expected int64
		found    bool
	}{
		{weight: 0, expected: 50, found: true},
		{weight: 2000, expected: 50, found: true},
		{weight: 2001, expected: 200, found: true},
		{weight: 30001, expected: 0, found: false},
	}
	for _, tt := range tests {
		amt := r.WeightSurcharge("agentA", decimal.NewFromInt(tt.weight))
		assert.Equal(t, tt.found, amt.Found, "weight %d", tt.weight)
		assert.True(t, amt.Value.Equal(decimal.NewFromInt(tt.expected)), "weight %d: got %s", tt.weight, amt.Value)
	}
}

func TestSeaFreightByIDRequiresRoute(t *testing.T) {
	row := types.SeaFreight{Version: version("sf-1", "2024-01-01", "2024-12-31", "2024-01-01"), Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(420)}
	r := NewResolver(&Tables{SeaFreights: []types.SeaFreight{row}}, day("2024-07-01"))

	assert.True(t, r.SeaFreightByID("sf-1", "Busan", "Qingdao").Found)
	assert.False(t, r.SeaFreightByID("sf-1", "Incheon", "Qingdao").Found)
	assert.False(t, r.SeaFreightByID("sf-2", "Busan", "Qingdao").Found)
}
