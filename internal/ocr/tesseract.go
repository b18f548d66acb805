package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// TesseractConfig holds the exec-level settings for the Tesseract backend.
type TesseractConfig struct {
	Binary      string // if empty -> "tesseract"
	Languages   string // e.g. "spa+eng"
	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default
	Enabled     bool
}

// Tesseract recognizes images by exec'ing the tesseract binary. Word-level
// confidences come from TSV output mode; when TSV fails we degrade to plain
// text with no token detail.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg TesseractConfig, runner Runner, logger *slog.Logger) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "spa+eng"
	}
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

func (t *Tesseract) Name() string    { return "tesseract" }
func (t *Tesseract) Available() bool { return t.cfg.Enabled }

func (t *Tesseract) Recognize(ctx context.Context, imagePath string) (Result, error) {
	res, err := t.recognizeTSV(ctx, imagePath)
	if err == nil && len(res.Tokens) > 0 {
		return res, nil
	}
	if err != nil {
		t.logger.Warn("tesseract tsv mode failed, retrying plain", "path", imagePath, "error", err)
	}
	return t.recognizePlain(ctx, imagePath)
}

func (t *Tesseract) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", t.cfg.Languages}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

func (t *Tesseract) recognizePlain(ctx context.Context, imagePath string) (Result, error) {
	out, _, err := t.runner.Run(ctx, t.cfg.Binary, t.args(imagePath)...)
	if err != nil {
		return Result{Engine: t.Name()}, fmt.Errorf("tesseract: %w", err)
	}
	return Result{
		Text:   Normalize(string(out)),
		Engine: t.Name(),
		Pages:  1,
	}, nil
}

// recognizeTSV runs tesseract in TSV mode and rebuilds the page text from the
// word rows, so token offsets are exact positions within Result.Text.
func (t *Tesseract) recognizeTSV(ctx context.Context, imagePath string) (Result, error) {
	args := append(t.args(imagePath), "tsv")
	out, _, err := t.runner.Run(ctx, t.cfg.Binary, args...)
	if err != nil {
		return Result{Engine: t.Name()}, fmt.Errorf("tesseract tsv: %w", err)
	}

	var (
		b        strings.Builder
		tokens   []Token
		confSum  float64
		lastLine string
	)
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || ln == "" { // skip header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		word := cols[len(cols)-1]
		confStr := cols[len(cols)-2]
		if strings.TrimSpace(word) == "" || confStr == "" || confStr == "-1" {
			continue
		}
		conf, err := strconv.ParseFloat(confStr, 64)
		if err != nil {
			continue
		}
		// page/block/paragraph/line numbers form the line key
		lineKey := strings.Join(cols[1:5], "/")
		if b.Len() > 0 {
			if lineKey == lastLine {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		}
		lastLine = lineKey
		tokens = append(tokens, Token{Text: word, Offset: b.Len(), Conf: float32(conf / 100.0)})
		b.WriteString(word)
		confSum += conf / 100.0
	}

	res := Result{
		Text:   b.String(),
		Tokens: tokens,
		Engine: t.Name(),
		Pages:  1,
	}
	if len(tokens) > 0 {
		res.MeanConfidence = float32(confSum / float64(len(tokens)))
	}
	return res, nil
}
