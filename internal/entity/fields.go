package entity

import (
	"time"

	"github.com/vparedes/boletas-ocr/constants"
)

// CandidateField is a raw pattern hit produced by the field extractor:
// the matched substring, its position in the source text for provenance, and
// an OCR-derived confidence (or the rule's default when the engine reported
// no word detail).
type CandidateField struct {
	ID         constants.FieldID `json:"id"`
	Raw        string            `json:"raw"`
	Offset     int               `json:"offset"`
	Confidence float32           `json:"confidence"`
}

// ValidatedField is the validator's output for one surviving candidate. The
// normalized value is always well-formed for the field's type; a field that
// cannot be normalized is dropped, never kept malformed.
type ValidatedField struct {
	ID  constants.FieldID `json:"id"`
	Raw string            `json:"raw"`
	// Norm is the canonical string form: ISO date, digit string, trimmed
	// text, "12345678-5" style RUT.
	Norm string `json:"norm"`
	// Int carries the numeric value for amount and hours fields.
	Int int64 `json:"int,omitempty"`
	// Date carries the calendar value for the date field.
	Date       time.Time `json:"date,omitempty"`
	Valid      bool      `json:"valid"`
	Confidence float32   `json:"confidence"`
}
