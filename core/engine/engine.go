// Package engine provides the freight cost calculation engine.
// CLI and HTTP are thin wrappers around this engine.
package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"freight-cost/core/aggregate"
	"freight-cost/core/combination"
	"freight-cost/core/pricing"
	"freight-cost/core/route"
	"freight-cost/core/types"
	"freight-cost/core/validity"
	"freight-cost/internal/errors"
)

// Engine prices shipments against versioned rate tables. It holds no mutable
// state and is safe for concurrent use as long as callers do not mutate the
// tables they pass in while a calculation runs.
type Engine struct {
	config EngineConfig
	clock  func() time.Time
	logger *zap.Logger
}

// EngineConfig configures the engine
type EngineConfig struct {
	// FallbackTruckAgent is the generic truck carrier paired with any rail leg
	FallbackTruckAgent string

	// Locale orders agent names in the breakdown
	Locale language.Tag
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		FallbackTruckAgent: combination.DefaultFallbackTruckAgent,
		Locale:             aggregate.DefaultLocale,
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for "today" when no historical date is given
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets the debug logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine
func New(config EngineConfig, opts ...Option) *Engine {
	if config.FallbackTruckAgent == "" {
		config.FallbackTruckAgent = combination.DefaultFallbackTruckAgent
	}
	if config.Locale == language.Und {
		config.Locale = aggregate.DefaultLocale
	}

	e := &Engine{
		config: config,
		clock:  time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateCost prices input against tables, overlaid with snapshot when one is given.
//
// Missing rate data is reported through MissingFreights with an empty breakdown; a route
// that passes validation but yields no combination returns an empty breakdown without
// diagnostics. The only error is a malformed historical date.
func (e *Engine) CalculateCost(
	input types.CostInput,
	tables *pricing.Tables,
	registries combination.Registries,
	snapshot *pricing.Snapshot,
) (*types.CostCalculationResult, error) {
	asOf, err := e.calculationDate(input)
	if err != nil {
		return nil, err
	}

	result := &types.CostCalculationResult{
		Input:           input,
		CalculationDate: validity.FormatDate(asOf),
		Breakdown:       []types.AgentCostBreakdown{},
		LowestCost:      decimal.Zero,
		IsHistorical:    input.HistoricalDate != "",
		HistoricalDate:  input.HistoricalDate,
	}

	effective := tables.Overlay(snapshot)
	log := e.logger.With(
		zap.String("origin", input.Origin),
		zap.String("transit", input.Transit),
		zap.String("destination", input.Destination),
		zap.String("date", result.CalculationDate),
	)
	if snapshot != nil {
		log.Debug("historical snapshot applied", zap.Int("overrides", len(snapshot.Overrides())))
	}

	if missing := route.Validate(effective, input); len(missing) > 0 {
		log.Debug("route lacks rate data", zap.Int("missing", len(missing)))
		result.MissingFreights = missing
		return result, nil
	}

	agents := route.CandidateAgents(effective, input, registries.RailAgents)
	log.Debug("candidate agents", zap.Strings("agents", agents))

	builder := combination.NewBuilder(
		pricing.NewResolver(effective, asOf),
		input,
		registries,
		combination.WithFallbackTruckAgent(e.config.FallbackTruckAgent),
		combination.WithLogger(log),
	)

	var rows []types.AgentCostBreakdown
	for _, agent := range agents {
		rows = append(rows, builder.Build(agent)...)
	}

	summary := aggregate.New(e.config.Locale).Aggregate(rows)
	result.Breakdown = summary.Breakdown
	result.LowestCost = summary.LowestCost
	result.LowestCostAgent = summary.LowestCostAgent

	log.Debug("cost calculated",
		zap.Int("combinations", len(result.Breakdown)),
		zap.String("lowestCostAgent", result.LowestCostAgent),
		zap.String("lowestCost", result.LowestCost.String()))

	return result, nil
}

func (e *Engine) calculationDate(input types.CostInput) (time.Time, error) {
	if input.HistoricalDate == "" {
		return validity.Day(e.clock()), nil
	}
	d, err := validity.ParseDate(input.HistoricalDate)
	if err != nil {
		return time.Time{}, errors.Wrap(errors.TypeInput, "invalid historical date", err).
			WithContext("historicalDate", input.HistoricalDate)
	}
	return d, nil
}
