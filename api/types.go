// Package api - API types for quoting
// These types define the contract for the /quote endpoints.
package api

import (
	"time"

	"freight-cost/adapters/storage"
	"freight-cost/core/types"
)

// QuoteRequest is the input to POST /quote
type QuoteRequest struct {
	types.CostInput

	// Save stores the result in the quote history
	Save bool `json:"save,omitempty"`
}

// QuoteResponse is the output of POST /quote
type QuoteResponse struct {
	// QuoteID is set when the result was saved
	QuoteID string `json:"quoteId,omitempty"`

	Result *types.CostCalculationResult `json:"result"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a quote was produced
type ResponseMetadata struct {
	RequestID     string    `json:"requestId"`
	InputHash     string    `json:"inputHash"`
	CatalogHash   string    `json:"catalogHash"`
	EngineVersion string    `json:"engineVersion"`
	Timestamp     time.Time `json:"timestamp"`
	DurationMs    int64     `json:"durationMs"`
}

// QuoteListResponse is the output of GET /quotes
type QuoteListResponse struct {
	Quotes []*storage.StoredQuote `json:"quotes"`
	Count  int                    `json:"count"`
}

// CatalogResponse is the output of GET /catalog
type CatalogResponse struct {
	Source        string                 `json:"source"`
	Hash          string                 `json:"hash"`
	Tables        map[types.Category]int `json:"tables"`
	SnapshotDates []string               `json:"snapshotDates"`
	RailAgents    []types.Partner        `json:"railAgents"`
	TruckAgents   []types.Partner        `json:"truckAgents"`
	ShippingLines []types.Partner        `json:"shippingLines"`
}

// ErrorResponse wraps an error detail
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes an error
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
