// Command runocr runs one file through OCR and field extraction without
// touching the database, and prints the resulting record as JSON. Useful for
// checking a backend installation or tuning thresholds.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vparedes/boletas-ocr/internal/catalog"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/extract"
	"github.com/vparedes/boletas-ocr/internal/ocr"
	"github.com/vparedes/boletas-ocr/internal/pipeline"
	"github.com/vparedes/boletas-ocr/internal/record"
	"github.com/vparedes/boletas-ocr/internal/validate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runocr <file>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tess := ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      cfg.OCR.Tesseract,
		Languages:   cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
		OEM:         cfg.OCR.OEM,
		Enabled:     cfg.OCR.TesseractEnabled,
	}, nil, logger)
	paddle := ocr.NewPaddle(ocr.PaddleConfig{
		Binary:    cfg.OCR.Paddle,
		Languages: cfg.OCR.Languages,
		Enabled:   cfg.OCR.PaddleEnabled,
	}, nil, logger)
	engines := []ocr.Engine{tess, paddle}
	if cfg.OCR.Primary == paddle.Name() {
		engines = []ocr.Engine{paddle, tess}
	}
	adapter := ocr.NewAdapter(ocr.AdapterConfig{
		Pdftotext:       cfg.OCR.Pdftotext,
		Pdftoppm:        cfg.OCR.Pdftoppm,
		DPI:             cfg.OCR.DPI,
		CallTimeout:     cfg.OCR.CallTimeout,
		ConfidenceFloor: cfg.OCR.ConfidenceFloor,
	}, engines, nil, logger)

	proc := pipeline.NewProcessor(
		logger,
		adapter,
		extract.NewExtractor(catalog.New(), cfg.Extract, logger),
		validate.NewValidator(cfg.Extract, logger),
		record.NewAssembler(cfg.Extract.MinConfidence, logger),
		nil, // no persistence
	)

	start := time.Now()
	rec, err := proc.Process(ctx, path)
	if err != nil {
		logger.Error("processing failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	logger.Info("extraction OK",
		"record_id", rec.ID,
		"engine", rec.Engine,
		"fields", len(rec.Fields),
		"missing", len(rec.MissingFields),
		"confidence", rec.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
