package platform

import (
	"context"
	"log"
	"os/exec"
	"strings"
)

// TesseractExtractor runs OCR through the tesseract CLI. Best effort by
// contract: any failure yields an empty string, never an error.
type TesseractExtractor struct {
	binary string
	lang   string
}

// NewTextExtractor creates a tesseract-backed extractor.
func NewTextExtractor() *TesseractExtractor {
	return &TesseractExtractor{binary: "tesseract", lang: "eng"}
}

// ExtractText OCRs an image file and returns the trimmed text.
func (t *TesseractExtractor) ExtractText(ctx context.Context, imagePath string) string {
	if _, err := exec.LookPath(t.binary); err != nil {
		return ""
	}
	// "stdout" makes tesseract print recognized text instead of writing files.
	cmd := exec.CommandContext(ctx, t.binary, imagePath, "stdout", "-l", t.lang)
	out, err := cmd.Output()
	if err != nil {
		log.Printf("[OCR] tesseract failed for %s: %v", imagePath, err)
		return ""
	}
	return strings.TrimSpace(string(out))
}
