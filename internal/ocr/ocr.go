// Package ocr presents a uniform interface over the configured OCR backends
// (Tesseract, PaddleOCR) plus poppler's pdftotext/pdftoppm for PDF input.
// Engines are external binaries invoked through a Runner so tests can stub
// them.
package ocr

import (
	"context"
	"time"
)

// Token is one recognized text span with its position in Result.Text and the
// engine-reported confidence in [0,1].
type Token struct {
	Text   string
	Offset int
	Conf   float32
}

// Result is the OCR output for one document. It is owned by the extraction
// call that produced it and discarded after field extraction.
type Result struct {
	Text           string
	Tokens         []Token // empty when the engine reports no word detail
	MeanConfidence float32 // 0 when unknown
	Engine         string  // "tesseract" | "paddleocr" | "pdf-text"
	Pages          int
	Failed         bool // set when no engine produced usable text
	Warnings       []string
	Duration       time.Duration
}

// Engine is a single OCR backend able to recognize one image file.
type Engine interface {
	Name() string
	// Available reports the deployment capability flag for this engine,
	// independent of whether the binary is physically installed.
	Available() bool
	Recognize(ctx context.Context, imagePath string) (Result, error)
}
