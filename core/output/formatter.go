// Package output provides output formatting for quote results.
// This package produces human and machine-readable outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"freight-cost/core/types"
	"freight-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatXLSX is an Excel workbook
	FormatXLSX Format = "xlsx"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *types.CostCalculationResult) error
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the built-in formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(&TableFormatter{})
	_ = r.Register(&JSONFormatter{Indent: true})
	_ = r.Register(&TableFormatter{Markdown: true})
	_ = r.Register(&XLSXFormatter{})
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[formatter.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter already registered: %s", formatter.Format())
	}
	r.formatters[formatter.Format()] = formatter
	return nil
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format: %s", format)
	}
	return f, nil
}

// Formats lists registered formats in name order
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// JSONFormatter renders the result as JSON
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format() Format { return FormatJSON }

func (f *JSONFormatter) Render(w io.Writer, result *types.CostCalculationResult) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}

// TableFormatter renders the breakdown as a table, or as markdown
type TableFormatter struct {
	Markdown bool
}

func (f *TableFormatter) Format() Format {
	if f.Markdown {
		return FormatMarkdown
	}
	return FormatCLI
}

// quoteTitle describes the priced route and date
func quoteTitle(result *types.CostCalculationResult) string {
	in := result.Input
	title := fmt.Sprintf("%s → %s → %s (%s kg) as of %s",
		in.Origin, in.Transit, in.Destination, in.Weight.String(), result.CalculationDate)
	if result.IsHistorical {
		title += " [historical]"
	}
	return title
}

func (f *TableFormatter) Render(w io.Writer, result *types.CostCalculationResult) error {
	title := quoteTitle(result)

	if result.HasMissingFreights() {
		return f.render(w, f.missingTable(title, result.MissingFreights))
	}

	if err := f.render(w, f.breakdownTable(title, result)); err != nil {
		return err
	}

	if len(result.Breakdown) == 0 {
		_, err := fmt.Fprintln(w, "No agent combination prices this route.")
		return err
	}
	_, err := fmt.Fprintf(w, "Lowest: %s %s\n", result.LowestCostAgent, money(result.LowestCost))
	return err
}

func (f *TableFormatter) render(w io.Writer, t table.Writer) error {
	var out string
	if f.Markdown {
		out = t.RenderMarkdown()
	} else {
		out = t.Render()
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

func (f *TableFormatter) breakdownTable(title string, result *types.CostCalculationResult) table.Writer {
	t := table.NewWriter()
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"", "Agent", "Kind", "Sea", "Local", "DTHC", "Combined", "Rail", "Truck", "Surcharge", "DP", "Other", "Total", "Expired"})

	for _, b := range result.Breakdown {
		marker := ""
		if b.Agent == result.LowestCostAgent && b.Total.Equal(result.LowestCost) {
			marker = "*"
		}
		expired := ""
		if b.HasExpiredRates {
			expired = strings.Join(b.ExpiredRateDetails, ", ")
		}
		other := otherTotal(b)

		t.AppendRow(table.Row{
			marker,
			b.Agent,
			string(b.Kind),
			money(b.SeaFreight),
			money(b.LocalCharge),
			money(b.DTHC),
			money(b.CombinedFreight),
			money(b.RailFreight),
			money(b.TruckFreight),
			money(b.WeightSurcharge),
			money(b.DP),
			money(other),
			money(b.Total),
			expired,
		})
	}

	columns := []table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 2, WidthMin: 12, Align: text.AlignLeft},
	}
	for n := 4; n <= 13; n++ {
		columns = append(columns, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	t.SetColumnConfigs(columns)

	return t
}

func (f *TableFormatter) missingTable(title string, missing []types.MissingFreight) table.Writer {
	t := table.NewWriter()
	t.SetTitle(title + " - missing rate data")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Table", "Origin", "Transit", "Destination", "Message"})
	for _, m := range missing {
		t.AppendRow(table.Row{string(m.Type), m.Origin, m.Transit, m.Destination, m.Message})
	}
	return t
}

// otherTotal folds the request-level amounts and the agent LLocal adjustment into one column
func otherTotal(b types.AgentCostBreakdown) decimal.Decimal {
	return b.OtherCostsTotal.Add(b.DomesticTransport).Add(b.LLocal)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
