package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-cost/core/types"
)

func liveTables() *Tables {
	return &Tables{
		SeaFreights: []types.SeaFreight{
			{Version: version("sf", "2024-01-01", "2024-12-31", "2024-01-01"), Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(420)},
		},
		PortBorderFreights: []types.PortBorderFreight{
			{Version: version("pb", "2024-01-01", "2024-12-31", "2024-01-01"), Agent: "agentA", Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(2550)},
		},
	}
}

func TestOverlayWithoutSnapshotReturnsLive(t *testing.T) {
	live := liveTables()
	assert.Same(t, live, live.Overlay(nil))
}

func TestOverlayIsPerCategory(t *testing.T) {
	live := liveTables()
	snap := &Snapshot{
		Date: "2023-05-01",
		Tables: Tables{
			SeaFreights: []types.SeaFreight{
				{Version: version("sf-old", "2023-01-01", "2023-12-31", "2023-01-01"), Origin: "Busan", Transit: "Qingdao", Rate: decimal.NewFromInt(390)},
			},
		},
	}

	merged := live.Overlay(snap)
	require.Len(t, merged.SeaFreights, 1)
	assert.Equal(t, "sf-old", merged.SeaFreights[0].ID)
	assert.Equal(t, live.PortBorderFreights, merged.PortBorderFreights)
	assert.Equal(t, []types.Category{types.CategorySeaFreight}, snap.Overrides())
}

func TestOverlayHonorsEmptyOverride(t *testing.T) {
	live := liveTables()
	snap := &Snapshot{Tables: Tables{PortBorderFreights: []types.PortBorderFreight{}}}

	merged := live.Overlay(snap)
	assert.Empty(t, merged.PortBorderFreights)
	assert.NotNil(t, merged.PortBorderFreights)
	assert.Len(t, merged.SeaFreights, 1)
}

func TestSnapshotJSONDistinguishesAbsentFromEmpty(t *testing.T) {
	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-05-01","portBorderFreights":[]}`), &snap))

	assert.Nil(t, snap.SeaFreights)
	assert.NotNil(t, snap.PortBorderFreights)
	assert.Equal(t, []types.Category{types.CategoryPortBorderFreight}, snap.Overrides())
}

func TestContentHashChangesWithContent(t *testing.T) {
	a := liveTables()
	b := liveTables()
	assert.Equal(t, a.ContentHash(), b.ContentHash())

	b.SeaFreights[0].Rate = decimal.NewFromInt(421)
	assert.NotEqual(t, a.ContentHash(), b.ContentHash())
}
