// Package envelope - Input validation and envelope creation
// The engine never sees a raw request body, only a validated envelope.
package envelope

import (
	"time"

	"freight-cost/core/determinism"
	"freight-cost/core/types"
	"freight-cost/core/validity"
	"freight-cost/internal/errors"
)

// QuoteEnvelope is the validated, hashed representation of a quote request
type QuoteEnvelope struct {
	// Input is passed to the engine unchanged
	Input types.CostInput `json:"input"`

	// InputHash identifies the request content
	InputHash string `json:"input_hash"`

	// CatalogHash identifies the live rate tables the quote was priced against
	CatalogHash string `json:"catalog_hash"`

	// ReceivedAt is when the request was accepted
	ReceivedAt time.Time `json:"received_at"`
}

// New validates input and wraps it in an envelope
func New(input types.CostInput, catalogHash string) (*QuoteEnvelope, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	hash, err := determinism.HashJSON(input)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "failed to hash input", err)
	}

	return &QuoteEnvelope{
		Input:       input,
		InputHash:   hash.Hex(),
		CatalogHash: catalogHash,
		ReceivedAt:  time.Now().UTC(),
	}, nil
}

// Validate checks the request contract the engine relies on.
// Route names are matched exactly downstream, so they are not trimmed here.
func Validate(in types.CostInput) error {
	required := []struct {
		field string
		value string
	}{
		{"origin", in.Origin},
		{"transit", in.Transit},
		{"destination", in.Destination},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Newf(errors.TypeInput, "%s is required", r.field).WithContext("field", r.field)
		}
	}

	if in.Weight.IsNegative() {
		return errors.Input("weight must not be negative").WithContext("weight", in.Weight.String())
	}
	if in.DomesticTransport.IsNegative() {
		return errors.Input("domesticTransport must not be negative")
	}

	if in.HistoricalDate != "" {
		if _, err := validity.ParseDate(in.HistoricalDate); err != nil {
			return errors.Wrap(errors.TypeInput, "historicalDate must be YYYY-MM-DD", err).
				WithContext("historicalDate", in.HistoricalDate)
		}
	}
	return nil
}

// ShortHash returns first 12 characters of hash
func (e *QuoteEnvelope) ShortHash() string {
	if len(e.InputHash) >= 12 {
		return e.InputHash[:12]
	}
	return e.InputHash
}

// IsHistorical returns true if the request reprices a past date
func (e *QuoteEnvelope) IsHistorical() bool {
	return e.Input.HistoricalDate != ""
}
