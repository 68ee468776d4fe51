package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposedAction is one task suggested by the extraction service.
// Deadline stays a YYYY-MM-DD string until persistence converts it.
type ProposedAction struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    *string `json:"deadline"`
}

// ExtractionResult is the validated output of the structured extraction
// service. It is transient: it only ever flows from the extraction client
// into the persistence transaction, never into storage directly.
type ExtractionResult struct {
	DocType    DocType          `json:"docType"`
	Sender     *string          `json:"sender"`
	Summary    string           `json:"summary"`
	Actions    []ProposedAction `json:"actions"`
	AmountEUR  *decimal.Decimal `json:"amountEUR"`
	Deadline   *string          `json:"deadline"`
	Confidence float64          `json:"confidence"`
}

// DeadlineDate converts the document-level deadline to a midnight-UTC time.
func (r *ExtractionResult) DeadlineDate() *time.Time {
	return DateFromISO(r.Deadline)
}

// RoundedConfidence is the integer confidence stored on the document.
func (r *ExtractionResult) RoundedConfidence() int {
	return int(r.Confidence + 0.5)
}

// DateFromISO parses a YYYY-MM-DD string as a calendar date pinned to
// midnight UTC, so the date survives every caller time zone unchanged.
// A nil or malformed input yields nil.
func DateFromISO(iso *string) *time.Time {
	if iso == nil || *iso == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", *iso, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}
