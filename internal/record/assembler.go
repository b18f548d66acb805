// Package record assembles validated fields into the per-document output
// record and guards its serialized form with a JSON schema before it leaves
// the engine.
package record

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/entity"
	"github.com/vparedes/boletas-ocr/internal/ocr"
)

type Assembler struct {
	minConfidence float32
	logger        *slog.Logger
}

func NewAssembler(minConfidence float32, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{minConfidence: minConfidence, logger: logger}
}

// Assemble builds the final record. It never fails: the worst case is a
// record with every field missing and confidence 0, which flags the document
// for manual review.
func (a *Assembler) Assemble(sourcePath string, res ocr.Result, fields map[constants.FieldID]entity.ValidatedField, ruts []entity.ValidatedField) entity.DocumentRecord {
	rec := entity.DocumentRecord{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Fields:     fields,
		RUTs:       ruts,
		Engine:     res.Engine,
		OCRFailed:  res.Failed,
		Pages:      res.Pages,
		Duration:   res.Duration,
		Warnings:   res.Warnings,
		CreatedAt:  time.Now().UTC(),
	}
	if rec.Fields == nil {
		rec.Fields = map[constants.FieldID]entity.ValidatedField{}
	}
	rec.MissingFields = []constants.FieldID{}

	var sum float64
	for _, f := range rec.Fields {
		sum += float64(f.Confidence)
	}
	if n := len(rec.Fields); n > 0 {
		rec.Confidence = float32(sum / float64(n))
	}

	for _, id := range constants.AllFields() {
		f, ok := rec.Fields[id]
		if !ok || f.Confidence < a.minConfidence {
			rec.MissingFields = append(rec.MissingFields, id)
		}
	}
	rec.NeedsReview = len(rec.MissingFields) > 0 || rec.Confidence < a.minConfidence

	a.logger.Debug("record assembled",
		"id", rec.ID,
		"source", sourcePath,
		"fields", len(rec.Fields),
		"missing", len(rec.MissingFields),
		"confidence", rec.Confidence,
	)
	return rec
}
