package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/common"
)

// AdapterConfig bounds every backend invocation and the fallback decision.
type AdapterConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	DPI      int // rasterization DPI for scanned PDFs, default 300
	MaxPages int // 0 = no limit

	CallTimeout time.Duration // per-engine invocation budget, default 60s

	// ConfidenceFloor: recognition below this mean confidence counts as an
	// engine failure and triggers fallback.
	ConfidenceFloor float32

	// MinTextLen: recognized text shorter than this (after trimming) counts
	// as near-empty, default 16 bytes.
	MinTextLen int
}

// Adapter runs an ordered chain of capability-checked engines with a
// per-attempt timeout. It never raises for recognition failure: when every
// engine fails the Result carries Failed=true and empty text so the field
// extractor still produces an all-missing record.
type Adapter struct {
	cfg     AdapterConfig
	engines []Engine
	runner  Runner
	logger  *slog.Logger
}

// NewAdapter builds the adapter over the given engine chain, tried in order.
// A nil runner uses the real exec runner.
func NewAdapter(cfg AdapterConfig, engines []Engine, runner Runner, logger *slog.Logger) *Adapter {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.MinTextLen <= 0 {
		cfg.MinTextLen = 16
	}
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cfg: cfg, engines: engines, runner: runner, logger: logger}
}

// Recognize picks a strategy based on file extension and runs the engine
// chain. The returned Result is always usable; inspect Failed.
func (a *Adapter) Recognize(ctx context.Context, path string) Result {
	start := time.Now()
	var res Result
	switch constants.FormatForPath(path) {
	case constants.PDF:
		res = a.recognizePDF(ctx, path)
	case constants.IMAGE:
		res = a.recognizeImage(ctx, path)
	default:
		res = Result{
			Failed:   true,
			Warnings: []string{fmt.Sprintf("unsupported extension: %q", filepath.Ext(path))},
		}
	}
	res.Duration = time.Since(start)
	return res
}

// recognizeImage walks the engine chain until one produces usable text.
func (a *Adapter) recognizeImage(ctx context.Context, path string) Result {
	var warns []string
	attempted := 0

	for _, eng := range a.engines {
		if !eng.Available() {
			continue
		}
		if ctx.Err() != nil {
			warns = append(warns, ctx.Err().Error())
			break
		}
		attempted++

		cctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
		res, err := eng.Recognize(cctx, path)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%s: %w", eng.Name(), common.ErrBackendTimeout)
			}
			a.logger.Warn("ocr engine failed", "engine", eng.Name(), "path", path, "error", err)
			warns = append(warns, err.Error())
			continue
		}
		if len(strings.TrimSpace(res.Text)) < a.cfg.MinTextLen {
			a.logger.Warn("ocr engine returned near-empty text", "engine", eng.Name(), "path", path, "bytes", len(res.Text))
			warns = append(warns, fmt.Sprintf("%s: near-empty text", eng.Name()))
			continue
		}
		if res.MeanConfidence > 0 && res.MeanConfidence < a.cfg.ConfidenceFloor {
			a.logger.Warn("ocr engine confidence below floor",
				"engine", eng.Name(), "path", path,
				"confidence", res.MeanConfidence, "floor", a.cfg.ConfidenceFloor)
			warns = append(warns, fmt.Sprintf("%s: confidence %.2f below floor", eng.Name(), res.MeanConfidence))
			continue
		}

		res.Warnings = append(res.Warnings, warns...)
		if res.Pages == 0 {
			res.Pages = 1
		}
		return res
	}

	if attempted == 0 {
		warns = append(warns, common.ErrBackendUnavailable.Error())
	}
	return Result{Failed: true, Warnings: warns}
}

// recognizePDF tries the embedded text layer first, then rasterizes and OCRs
// each page through the engine chain.
func (a *Adapter) recognizePDF(ctx context.Context, path string) Result {
	text, pages, warns := a.pdfToText(ctx, path)
	if len(strings.TrimSpace(text)) >= a.cfg.MinTextLen {
		return Result{
			Text:           Normalize(text),
			MeanConfidence: 0.95, // born-digital text layer, not an OCR guess
			Engine:         "pdf-text",
			Pages:          pages,
			Warnings:       warns,
		}
	}

	images, cleanup, err := a.rasterize(ctx, path)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		warns = append(warns, err.Error())
		return Result{Failed: true, Warnings: warns}
	}

	var (
		b       strings.Builder
		tokens  []Token
		confSum float64
		confN   int
		ok      int
	)
	for _, img := range images {
		if ctx.Err() != nil {
			warns = append(warns, ctx.Err().Error())
			break
		}
		pr := a.recognizeImage(ctx, img)
		warns = append(warns, pr.Warnings...)
		if pr.Failed {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		base := b.Len()
		for _, tok := range pr.Tokens {
			tok.Offset += base
			tokens = append(tokens, tok)
		}
		b.WriteString(pr.Text)
		if pr.MeanConfidence > 0 {
			confSum += float64(pr.MeanConfidence)
			confN++
		}
		ok++
	}

	if ok == 0 {
		return Result{Failed: true, Warnings: warns}
	}
	res := Result{
		Text:     b.String(),
		Tokens:   tokens,
		Engine:   a.firstAvailableEngine(),
		Pages:    len(images),
		Warnings: warns,
	}
	if confN > 0 {
		res.MeanConfidence = float32(confSum / float64(confN))
	}
	return res
}

func (a *Adapter) pdfToText(ctx context.Context, path string) (string, int, []string) {
	cctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := a.runner.Run(cctx, a.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{fmt.Sprintf("pdftotext: %v: %s", err, truncate(string(errb), 512))}
	}
	text := string(out)
	// a form-feed \f is the default page separator
	return text, 1 + strings.Count(text, "\f"), nil
}

func (a *Adapter) rasterize(ctx context.Context, path string) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "boletas-pp-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	prefix := filepath.Join(tmpDir, "page")
	cctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, errb, err := a.runner.Run(cctx, a.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", a.cfg.DPI), "-png", path, prefix); err != nil {
		return nil, cleanup, fmt.Errorf("pdftoppm: %v: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if a.cfg.MaxPages > 0 && len(matches) > a.cfg.MaxPages {
		matches = matches[:a.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, cleanup, errors.New("pdftoppm produced no images")
	}
	return matches, cleanup, nil
}

func (a *Adapter) firstAvailableEngine() string {
	for _, eng := range a.engines {
		if eng.Available() {
			return eng.Name()
		}
	}
	return ""
}
