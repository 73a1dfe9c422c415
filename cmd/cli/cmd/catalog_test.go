package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"freight-cost/internal/errors"
	"freight-cost/internal/logging"
)

func brokenCatalog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(testCatalog)
	require.NoError(t, err)
	broken := strings.Replace(string(data), `"rate": 1800,`, `"rate": -1800,`, 1)
	require.NotEqual(t, string(data), broken)

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(broken), 0644))
	return path
}

func TestCatalogInfo(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, catalogInfoCmd.RunE(cmd, []string{testCatalog}))

	text := out.String()
	assert.Contains(t, text, "borderDestinationFreight")
	assert.Contains(t, text, "rail agents")
	assert.Contains(t, text, "snapshot 2024-03-01 overrides [seaFreight combinedFreight]")
}

func TestCatalogValidate(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, catalogValidateCmd.RunE(cmd, []string{testCatalog}))
	assert.Contains(t, out.String(), ": OK")

	out.Reset()
	err := catalogValidateCmd.RunE(cmd, []string{brokenCatalog(t)})
	assert.True(t, errors.IsType(err, errors.TypeCatalog))
	assert.Contains(t, out.String(), "rate is negative")
}

func TestRunQuoteWarnsAboutCatalogIssues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logging.Logger
	logging.Logger = zap.New(core)
	t.Cleanup(func() { logging.Logger = prev })

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := runQuote(cmd, quoteOptions{
		catalogPath: brokenCatalog(t),
		format:      "json",
		origin:      "Busan",
		transit:     "Qingdao",
		destination: "OSH",
		weight:      "1500",
		date:        "2024-07-01",
	})
	require.NoError(t, err)

	warnings := logs.FilterMessage("catalog issue").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Contains(t, warnings[0].ContextMap()["issue"], "bd-2")

	assert.Equal(t, 1, logs.FilterMessage("quote priced").Len())
}
