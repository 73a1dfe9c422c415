// Package cmd - quote command
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"freight-cost/adapters/catalog"
	"freight-cost/adapters/storage"
	"freight-cost/api/envelope"
	"freight-cost/core/output"
	"freight-cost/core/types"
	"freight-cost/internal/config"
	"freight-cost/internal/errors"
	"freight-cost/internal/logging"
)

type quoteOptions struct {
	catalogPath       string
	format            string
	out               string
	origin            string
	transit           string
	destination       string
	weight            string
	includeDP         bool
	domesticTransport string
	otherCosts        []string
	seaFreightID      string
	date              string
	save              bool
}

var quoteOpts quoteOptions

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a shipment",
	Long: `Resolve every rate for a route and list each agent combination that can carry it.

Examples:
  freight-cost quote --origin Busan --transit Qingdao --destination OSH --weight 1500
  freight-cost quote --origin Busan --transit Qingdao --destination OSH --dp --other "Insurance=35"
  freight-cost quote --origin Busan --transit Qingdao --destination OSH --date 2024-03-01 --format json
  freight-cost quote --origin Busan --transit Qingdao --destination OSH --format xlsx --out quote.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuote(cmd, quoteOpts)
	},
}

func init() {
	f := quoteCmd.Flags()
	f.StringVar(&quoteOpts.catalogPath, "catalog", "", "rate catalog (.json or .hcl); defaults to catalog.path from config")
	f.StringVarP(&quoteOpts.format, "format", "f", "", "output format (cli, json, markdown, xlsx)")
	f.StringVarP(&quoteOpts.out, "out", "o", "", "write the rendered quote to a file instead of stdout")
	f.StringVar(&quoteOpts.origin, "origin", "", "port of loading")
	f.StringVar(&quoteOpts.transit, "transit", "", "port of discharge")
	f.StringVar(&quoteOpts.destination, "destination", "", "final inland destination")
	f.StringVar(&quoteOpts.weight, "weight", "0", "cargo weight in kg")
	f.BoolVar(&quoteOpts.includeDP, "dp", false, "include the disposal-container fee (forces general sea freight)")
	f.StringVar(&quoteOpts.domesticTransport, "domestic", "0", "origin-side trucking amount")
	f.StringArrayVar(&quoteOpts.otherCosts, "other", nil, "ancillary cost as name=amount (repeatable)")
	f.StringVar(&quoteOpts.seaFreightID, "sea-freight-id", "", "pin a general sea freight record")
	f.StringVar(&quoteOpts.date, "date", "", "price as of a past date (YYYY-MM-DD)")
	f.BoolVar(&quoteOpts.save, "save", false, "store the result in the quote history")
}

func runQuote(cmd *cobra.Command, opts quoteOptions) error {
	cfg := config.Get()

	input, err := buildInput(opts)
	if err != nil {
		return err
	}
	if err := envelope.Validate(input); err != nil {
		return err
	}

	catalogPath := opts.catalogPath
	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	for _, issue := range cat.Validate() {
		logging.Warn("catalog issue", zap.String("issue", issue.String()))
	}

	snapshot := cat.SnapshotAt(input.HistoricalDate)
	if input.HistoricalDate != "" && snapshot == nil {
		logging.Info("no snapshot recorded for date, pricing live tables",
			zap.String("date", input.HistoricalDate))
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	result, err := eng.CalculateCost(input, cat.Tables, cat.Registries, snapshot)
	if err != nil {
		return err
	}
	logging.Debug("quote priced",
		zap.String("catalog", cat.Source),
		zap.Int("rows", len(result.Breakdown)),
		zap.Int("missing", len(result.MissingFreights)))

	format := opts.format
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	formatter, err := output.NewRegistry().Get(output.Format(format))
	if err != nil {
		return err
	}
	if formatter.Format() == output.FormatXLSX && opts.out == "" {
		return errors.New(errors.TypeInput, "xlsx output requires --out")
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return errors.Wrapf(errors.TypeInternal, err, "create %s", opts.out)
		}
		defer file.Close()
		w = file
	}
	if err := formatter.Render(w, result); err != nil {
		return err
	}
	if opts.out != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", opts.out)
	}

	if opts.save {
		store, err := storage.StoreFactory(storage.Backend(cfg.Storage.Backend), cfg.Storage.Options())
		if err != nil {
			return err
		}
		defer store.Close()

		stored := storage.NewStoredQuote(result)
		if err := store.Save(context.Background(), stored); err != nil {
			logging.Error("failed to save quote", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved quote %s\n", stored.ID)
	}

	return nil
}

func buildInput(opts quoteOptions) (types.CostInput, error) {
	weight, err := parseAmount("weight", opts.weight)
	if err != nil {
		return types.CostInput{}, err
	}
	domestic, err := parseAmount("domestic", opts.domesticTransport)
	if err != nil {
		return types.CostInput{}, err
	}
	others, err := parseOtherCosts(opts.otherCosts)
	if err != nil {
		return types.CostInput{}, err
	}

	return types.CostInput{
		Origin:            opts.origin,
		Transit:           opts.transit,
		Destination:       opts.destination,
		Weight:            weight,
		IncludeDP:         opts.includeDP,
		DomesticTransport: domestic,
		OtherCosts:        others,
		SeaFreightID:      opts.seaFreightID,
		HistoricalDate:    opts.date,
	}, nil
}

func parseAmount(flag, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.TypeInput, err, "--%s must be a number", flag)
	}
	return d, nil
}

// parseOtherCosts reads name=amount pairs
func parseOtherCosts(items []string) ([]types.CostItem, error) {
	var result []types.CostItem
	for _, item := range items {
		idx := strings.LastIndex(item, "=")
		if idx <= 0 {
			return nil, errors.Newf(errors.TypeInput, "--other %q: expected name=amount", item)
		}
		amount, err := parseAmount("other", item[idx+1:])
		if err != nil {
			return nil, err
		}
		result = append(result, types.CostItem{Name: item[:idx], Amount: amount})
	}
	return result, nil
}
