package text

import (
	"context"
	"fmt"
	"strings"
)

// imageOCR runs tesseract with the language pack matching the document
// language, defaulting to Dutch.
func (e *Extractor) imageOCR(ctx context.Context, data []byte, language string) (string, error) {
	lang, ok := tesseractLangs[language]
	if !ok {
		lang = tesseractLangs["nl"]
	}

	path, cleanup, err := tempFile(data, "ph-*.img")
	if err != nil {
		return "", err
	}
	defer cleanup()

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", lang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, truncate(string(errb), 512))
	}
	return strings.TrimSpace(string(out)), nil
}
