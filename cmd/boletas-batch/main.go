// Command boletas-batch walks a directory of scanned boletas, runs each
// through the extraction pipeline in parallel, stores the records in the
// local database and writes the review spreadsheet.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/vparedes/boletas-ocr/internal/catalog"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/export"
	"github.com/vparedes/boletas-ocr/internal/extract"
	"github.com/vparedes/boletas-ocr/internal/ingest"
	"github.com/vparedes/boletas-ocr/internal/ocr"
	"github.com/vparedes/boletas-ocr/internal/pipeline"
	"github.com/vparedes/boletas-ocr/internal/record"
	"github.com/vparedes/boletas-ocr/internal/repository"
	"github.com/vparedes/boletas-ocr/internal/validate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "boletas-batch <input-dir>")
		os.Exit(2)
	}
	root := os.Args[1]

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("close db", "error", cerr)
		}
	}()
	store := repository.NewRecordStore(db, logger)

	adapter := buildAdapter(cfg, logger)
	proc := pipeline.NewProcessor(
		logger,
		adapter,
		extract.NewExtractor(catalog.New(), cfg.Extract, logger),
		validate.NewValidator(cfg.Extract, logger),
		record.NewAssembler(cfg.Extract.MinConfidence, logger),
		store,
	)

	paths, stats, err := ingest.ScanDirectory(root)
	if err != nil {
		logger.Error("scan directory", "root", root, "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

	queue := pipeline.NewQueue(proc, logger,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithQueueSize(cfg.Pipeline.QueueSize),
		pipeline.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)
	for _, p := range paths {
		queue.Enqueue(ctx, pipeline.Job{ID: uuid.New(), Path: p})
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), time.Duration(len(paths)+1)*cfg.Pipeline.ProcessTimeout)
	queue.Shutdown(drainCtx)
	cancel()

	recs, err := store.List(ctx)
	if err != nil {
		logger.Error("list records", "error", err)
		os.Exit(1)
	}
	review, _ := store.CountNeedingReview(ctx)

	xlsx, err := export.NewService(logger).RecordsXLSX(recs)
	if err != nil {
		logger.Error("build export", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(cfg.Export.OutputPath, xlsx, 0o644); err != nil {
		logger.Error("write export", "path", cfg.Export.OutputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"documents", len(recs),
		"needs_review", review,
		"export", cfg.Export.OutputPath,
	)
}

func buildAdapter(cfg *common.Config, logger *slog.Logger) *ocr.Adapter {
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

	return ocr.NewAdapter(ocr.AdapterConfig{
		Pdftotext:       cfg.OCR.Pdftotext,
		Pdftoppm:        cfg.OCR.Pdftoppm,
		DPI:             cfg.OCR.DPI,
		CallTimeout:     cfg.OCR.CallTimeout,
		ConfidenceFloor: cfg.OCR.ConfidenceFloor,
	}, engines, nil, logger)
}
