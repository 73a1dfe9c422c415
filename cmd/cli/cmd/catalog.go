// Package cmd - catalog commands
package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"freight-cost/adapters/catalog"
	"freight-cost/core/types"
	"freight-cost/internal/config"
	"freight-cost/internal/errors"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect rate catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a catalog for rows that can never price correctly",
	Long: `Load a catalog and report rows whose validity window is inverted,
amounts that are negative, and weight bands whose minimum exceeds the maximum.

Exits non-zero when any issue is found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(catalogPathArg(args))
		if err != nil {
			return err
		}

		issues := cat.Validate()
		out := cmd.OutOrStdout()
		if len(issues) == 0 {
			fmt.Fprintf(out, "%s: OK\n", cat.Source)
			return nil
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Scope", "Table", "Row", "ID", "Problem"})
		for _, issue := range issues {
			t.AppendRow(table.Row{issue.Scope, string(issue.Table), issue.Row, issue.ID, issue.Message})
		}
		fmt.Fprintln(out, t.Render())

		return errors.Newf(errors.TypeCatalog, "%d catalog issues in %s", len(issues), cat.Source)
	},
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Summarize a catalog's tables, partners and snapshots",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Load(catalogPathArg(args))
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetTitle(cat.Source)
		t.SetStyle(table.StyleRounded)
		t.AppendHeader(table.Row{"Table", "Live"})
		counts := cat.Tables.Count()
		for _, c := range types.Categories {
			t.AppendRow(table.Row{string(c), counts[c]})
		}
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"rail agents", cat.Registries.RailAgents.Len()},
			{"truck agents", cat.Registries.TruckAgents.Len()},
			{"shipping lines", cat.Registries.ShippingLines.Len()},
			{"snapshots", len(cat.Snapshots)},
		})
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())

		for _, date := range cat.Dates() {
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s overrides %v\n", date, cat.SnapshotAt(date).Overrides())
		}
		return nil
	},
}

func catalogPathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.Get().Catalog.Path
}

func init() {
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogInfoCmd)
}
