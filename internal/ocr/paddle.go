package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// PaddleConfig holds the exec-level settings for the PaddleOCR backend.
type PaddleConfig struct {
	Binary    string // if empty -> "paddleocr"
	Languages string // tesseract-style set; mapped to paddle's single lang code
	Enabled   bool
}

// Paddle recognizes images by exec'ing the paddleocr CLI and parsing its
// per-detection output lines of the form:
//
//	[[x,y],...], ('RECOGNIZED TEXT', 0.9731)
type Paddle struct {
	cfg    PaddleConfig
	runner Runner
	logger *slog.Logger
}

var rePaddleDetection = regexp.MustCompile(`\('((?:[^'\\]|\\.)*)',\s*([0-9]*\.?[0-9]+)\)`)

func NewPaddle(cfg PaddleConfig, runner Runner, logger *slog.Logger) *Paddle {
	if cfg.Binary == "" {
		cfg.Binary = "paddleocr"
	}
	if runner == nil {
		runner = execRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Paddle{cfg: cfg, runner: runner, logger: logger}
}

func (p *Paddle) Name() string    { return "paddleocr" }
func (p *Paddle) Available() bool { return p.cfg.Enabled }

func (p *Paddle) Recognize(ctx context.Context, imagePath string) (Result, error) {
	args := []string{
		"--image_dir", imagePath,
		"--lang", paddleLang(p.cfg.Languages),
		"--use_angle_cls", "true",
	}
	out, _, err := p.runner.Run(ctx, p.cfg.Binary, args...)
	if err != nil {
		return Result{Engine: p.Name()}, fmt.Errorf("paddleocr: %w", err)
	}

	var (
		b       strings.Builder
		tokens  []Token
		confSum float64
	)
	for _, m := range rePaddleDetection.FindAllStringSubmatch(string(out), -1) {
		text := strings.ReplaceAll(m[1], `\'`, `'`)
		if strings.TrimSpace(text) == "" {
			continue
		}
		conf, err := strconv.ParseFloat(m[2], 64)
		if err != nil || conf > 1.0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		tokens = append(tokens, Token{Text: text, Offset: b.Len(), Conf: float32(conf)})
		b.WriteString(text)
		confSum += conf
	}

	res := Result{
		Text:   b.String(),
		Tokens: tokens,
		Engine: p.Name(),
		Pages:  1,
	}
	if len(tokens) > 0 {
		res.MeanConfidence = float32(confSum / float64(len(tokens)))
	}
	return res, nil
}

// paddleLang maps a tesseract-style language set to paddle's lang code.
func paddleLang(langs string) string {
	switch {
	case strings.HasPrefix(langs, "spa"), strings.HasPrefix(langs, "es"):
		return "es"
	case langs == "":
		return "es"
	default:
		return "en"
	}
}
