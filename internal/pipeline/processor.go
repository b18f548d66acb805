// Package pipeline coordinates the per-document flow: OCR recognition, field
// extraction, validation and record assembly, plus the batch worker queue.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/vparedes/boletas-ocr/internal/entity"
	"github.com/vparedes/boletas-ocr/internal/extract"
	"github.com/vparedes/boletas-ocr/internal/ocr"
	"github.com/vparedes/boletas-ocr/internal/record"
	"github.com/vparedes/boletas-ocr/internal/repository"
	"github.com/vparedes/boletas-ocr/internal/validate"
)

// Processor runs one document through OCR -> extract -> validate -> assemble.
// Extraction, validation and assembly are synchronous and fast; OCR is the
// only blocking stage and is bounded by the adapter's per-engine timeout.
type Processor struct {
	Logger    *slog.Logger
	Adapter   *ocr.Adapter
	Extractor *extract.Extractor
	Validator *validate.Validator
	Assembler *record.Assembler
	Store     *repository.RecordStore // nil disables persistence
}

func NewProcessor(logger *slog.Logger, adapter *ocr.Adapter, ex *extract.Extractor, v *validate.Validator, as *record.Assembler, store *repository.RecordStore) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:    logger,
		Adapter:   adapter,
		Extractor: ex,
		Validator: v,
		Assembler: as,
		Store:     store,
	}
}

// Process produces a DocumentRecord for one source file. Recognition
// failures are contained in the record (all fields missing, confidence 0);
// the only error surface is persistence.
func (p *Processor) Process(ctx context.Context, path string) (entity.DocumentRecord, error) {
	res := p.Adapter.Recognize(ctx, path)
	if res.Failed {
		p.Logger.Warn("processor.ocr.failed", "path", path, "warnings", res.Warnings)
	} else {
		p.Logger.Info("processor.ocr.ok",
			"path", path,
			"engine", res.Engine,
			"pages", res.Pages,
			"confidence", res.MeanConfidence,
			"duration_ms", res.Duration.Milliseconds(),
		)
	}

	candidates := p.Extractor.Extract(res)
	fields, ruts := p.Validator.Validate(candidates)
	rec := p.Assembler.Assemble(path, res, fields, ruts)

	p.Logger.Info("processor.parse.ok",
		"path", path,
		"record_id", rec.ID,
		"fields", len(rec.Fields),
		"missing", len(rec.MissingFields),
		"confidence", rec.Confidence,
	)

	if p.Store != nil {
		if err := p.Store.Save(ctx, rec); err != nil {
			p.Logger.Error("processor.store.failed", "path", path, "record_id", rec.ID, "error", err)
			return rec, err
		}
	}
	return rec, nil
}
