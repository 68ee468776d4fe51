package text

import (
	"context"
	"fmt"
	"strings"
)

// pdfToText reads the embedded text layer. Scanned PDFs without a text layer
// legitimately yield an empty string.
func (e *Extractor) pdfToText(ctx context.Context, data []byte) (string, error) {
	path, cleanup, err := tempFile(data, "ph-*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	return strings.TrimSpace(string(out)), nil
}
