package api

import (
	"github.com/prometheus/client_golang/prometheus"

	"freight-cost/core/types"
)

var (
	// Quote metrics
	quotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_cost_quotes_total",
			Help: "Total number of quote requests by outcome",
		},
		[]string{"outcome"},
	)

	quoteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "freight_cost_quote_duration_seconds",
			Help:    "Time spent pricing a quote",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Data quality metrics
	missingFreightTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_cost_missing_freight_total",
			Help: "Missing rate diagnostics reported, by rate table",
		},
		[]string{"type"},
	)

	expiredComponentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freight_cost_expired_components_total",
			Help: "Priced components that fell back to an expired rate",
		},
		[]string{"component"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(quotesTotal)
	prometheus.MustRegister(quoteDuration)
	prometheus.MustRegister(missingFreightTotal)
	prometheus.MustRegister(expiredComponentsTotal)
}

// Quote outcomes
const (
	outcomePriced        = "priced"
	outcomeNoCombination = "no_combination"
	outcomeMissingData   = "missing_data"
	outcomeError         = "error"
	outcomeRateLimited   = "rate_limited"
)

// recordQuote records the outcome of a calculation
func recordQuote(result *types.CostCalculationResult, seconds float64) {
	quoteDuration.Observe(seconds)

	switch {
	case result.HasMissingFreights():
		quotesTotal.WithLabelValues(outcomeMissingData).Inc()
		for _, m := range result.MissingFreights {
			missingFreightTotal.WithLabelValues(string(m.Type)).Inc()
		}
	case len(result.Breakdown) == 0:
		quotesTotal.WithLabelValues(outcomeNoCombination).Inc()
	default:
		quotesTotal.WithLabelValues(outcomePriced).Inc()
	}

	for _, b := range result.Breakdown {
		for _, component := range b.ExpiredRateDetails {
			expiredComponentsTotal.WithLabelValues(component).Inc()
		}
	}
}

// recordError records a failed quote request
func recordError() {
	quotesTotal.WithLabelValues(outcomeError).Inc()
}

// recordRateLimited records a request rejected by the rate limiter
func recordRateLimited() {
	quotesTotal.WithLabelValues(outcomeRateLimited).Inc()
}
