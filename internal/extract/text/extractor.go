// Package text turns uploaded document bytes into plain text. PDFs go through
// the pdftotext text layer, images through tesseract OCR. An empty result is
// not an error here; the pipeline substitutes its placeholder downstream.
package text

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"paperhulp/internal/config"
	"paperhulp/internal/domain"
	"paperhulp/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// tesseract language packs keyed by document language code.
var tesseractLangs = map[string]string{
	"nl": "nld",
	"ar": "ara",
	"en": "eng",
}

type Extractor struct {
	cfg    config.OCRConfig
	runner Runner
	logger *zerolog.Logger
}

func NewExtractor(cfg config.OCRConfig, logger *zerolog.Logger) *Extractor {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Extract dispatches on mimetype. Unsupported types come back as
// domain.ErrUnsupportedMediaType so the job fails with a stable reason.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimetype, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	start := time.Now()
	switch {
	case mimetype == "application/pdf":
		text, err := e.pdfToText(ctx, data)
		metrics.ObserveOCR("pdftotext", int(time.Since(start).Milliseconds()), err == nil)
		return text, err
	case strings.HasPrefix(mimetype, "image/"):
		text, err := e.imageOCR(ctx, data, language)
		metrics.ObserveOCR("tesseract", int(time.Since(start).Milliseconds()), err == nil)
		return text, err
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedMediaType, mimetype)
	}
}

// tempFile writes data next to the other temp artifacts so the external
// binaries can read it, returning the path and a cleanup func.
func tempFile(data []byte, pattern string) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}
