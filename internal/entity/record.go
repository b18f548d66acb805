package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/vparedes/boletas-ocr/constants"
)

// DocumentRecord is the assembled output for one source document. It is
// immutable after assembly; ownership passes to the export layer.
type DocumentRecord struct {
	ID         uuid.UUID `json:"id"`
	SourcePath string    `json:"source_path"`

	// Fields maps field id to its validated value; absent when no pattern
	// matched or validation discarded every candidate.
	Fields map[constants.FieldID]ValidatedField `json:"fields"`

	// RUTs holds every check-digit-valid RUT in document order. Issuer vs
	// payer assignment is a downstream business rule; Fields["rut"] carries
	// the top-most one.
	RUTs []ValidatedField `json:"ruts,omitempty"`

	// Confidence is the unweighted mean of present-field confidences;
	// 0 when no fields are present.
	Confidence float32 `json:"confidence"`

	// MissingFields lists ids absent from Fields or below the minimum
	// confidence threshold.
	MissingFields []constants.FieldID `json:"missing_fields"`

	NeedsReview bool `json:"needs_review"`

	// OCR provenance.
	Engine    string        `json:"engine,omitempty"`
	OCRFailed bool          `json:"ocr_failed"`
	Pages     int           `json:"pages,omitempty"`
	Duration  time.Duration `json:"-"`
	Warnings  []string      `json:"warnings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Field returns the validated field for id, if present.
func (r *DocumentRecord) Field(id constants.FieldID) (ValidatedField, bool) {
	f, ok := r.Fields[id]
	return f, ok
}

// IsMissing reports whether id is in MissingFields.
func (r *DocumentRecord) IsMissing(id constants.FieldID) bool {
	for _, m := range r.MissingFields {
		if m == id {
			return true
		}
	}
	return false
}
