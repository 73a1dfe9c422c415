package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
	tu "freight-cost/internal/testutil"
)

var testCatalog = filepath.Join("..", "..", "..", "adapters", "catalog", "testdata", "catalog.json")

func TestParseOtherCosts(t *testing.T) {
	items, err := parseOtherCosts([]string{"Insurance=35", "Customs=Fee=12.5"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Insurance", items[0].Name)
	assert.True(t, items[0].Amount.Equal(tu.D(35)))
	assert.Equal(t, "Customs=Fee", items[1].Name)

	_, err = parseOtherCosts([]string{"=5"})
	assert.True(t, errors.IsType(err, errors.TypeInput))

	_, err = parseOtherCosts([]string{"Insurance=lots"})
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestBuildInput(t *testing.T) {
	in, err := buildInput(quoteOptions{
		origin:            "Busan",
		transit:           "Qingdao",
		destination:       "OSH",
		weight:            "1500",
		domesticTransport: "",
		includeDP:         true,
		date:              "2024-07-01",
	})
	require.NoError(t, err)
	assert.True(t, in.Weight.Equal(tu.D(1500)))
	assert.True(t, in.DomesticTransport.IsZero())
	assert.True(t, in.IncludeDP)
	assert.Equal(t, "2024-07-01", in.HistoricalDate)

	_, err = buildInput(quoteOptions{weight: "heavy"})
	assert.Error(t, err)
}

func TestRunQuoteRendersJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := runQuote(cmd, quoteOptions{
		catalogPath: testCatalog,
		format:      "json",
		origin:      "Busan",
		transit:     "Qingdao",
		destination: "OSH",
		weight:      "1500",
		date:        "2024-07-01",
	})
	require.NoError(t, err)

	var result types.CostCalculationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Len(t, result.Breakdown, 2)
	assert.Equal(t, "agentA + COWIN", result.LowestCostAgent)
	assert.Equal(t, "4890.5", result.LowestCost.String())
	assert.True(t, result.IsHistorical)
}

func TestRunQuoteRejectsIncompleteRoute(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := runQuote(cmd, quoteOptions{catalogPath: testCatalog, origin: "Busan", weight: "1"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestRunQuoteWritesFile(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	opts := quoteOptions{
		catalogPath: testCatalog,
		format:      "xlsx",
		origin:      "Busan",
		transit:     "Qingdao",
		destination: "OSH",
		weight:      "1500",
		date:        "2024-07-01",
	}
	err := runQuote(cmd, opts)
	assert.True(t, errors.IsType(err, errors.TypeInput), "xlsx needs a file")

	opts.out = filepath.Join(t.TempDir(), "quote.xlsx")
	require.NoError(t, runQuote(cmd, opts))
	info, err := os.Stat(opts.out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
