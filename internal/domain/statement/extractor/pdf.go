package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultOCRLanguages covers Brazilian statements with occasional English
// merchant descriptors.
const DefaultOCRLanguages = "por+eng"

// ocrDPI is the rasterization resolution; 300 DPI is the usual floor for
// reliable OCR of statement tables.
const ocrDPI = "300"

// PDFSource extracts text from a PDF file on disk.
type PDFSource struct {
	path      string
	languages string
}

type PDFOption func(*PDFSource)

// WithOCRLanguages overrides the tesseract language set, e.g. "por".
func WithOCRLanguages(languages string) PDFOption {
	return func(s *PDFSource) {
		if languages != "" {
			s.languages = languages
		}
	}
}

func NewPDFSource(path string, opts ...PDFOption) *PDFSource {
	s := &PDFSource{path: path, languages: DefaultOCRLanguages}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LayerText extracts the embedded text layer. The pdf library panics on some
// malformed files, so the whole read is wrapped in a recover that converts
// the panic into an error.
func (s *PDFSource) LayerText(ctx context.Context) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf reader crashed on %s: %v", s.path, r)
		}
	}()

	f, reader, err := pdf.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", s.path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		if text := pageText(page); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// pageText prefers row-grouped extraction, which keeps a statement line on
// one text line, and falls back to plain text when row data is unavailable.
func pageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	}

	fontNames := page.Fonts()
	fonts := make(map[string]*pdf.Font, len(fontNames))
	for _, name := range fontNames {
		f := page.Font(name)
		fonts[name] = &f
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// OCRText rasterizes up to pageLimit pages with pdftoppm and runs tesseract
// over each image. Pages that fail OCR are skipped; the remaining pages still
// produce usable text.
func (s *PDFSource) OCRText(ctx context.Context, pageLimit int) (string, error) {
	if pageLimit < 1 {
		pageLimit = 1
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return "", fmt.Errorf("pdftoppm not available (install poppler-utils): %w", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not available (install tesseract-ocr): %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-r", ocrDPI, "-png",
		"-f", "1", "-l", strconv.Itoa(pageLimit),
		s.path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm failed: %w (output: %s)", err, out)
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return "", fmt.Errorf("listing page images: %w", err)
	}
	if len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images for %s", s.path)
	}
	sort.Strings(images)

	var pages []string
	for _, image := range images {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		outBase := strings.TrimSuffix(image, ".png")
		cmd := exec.CommandContext(ctx, "tesseract",
			image, outBase, "-l", s.languages, "--psm", "4")
		if _, err := cmd.CombinedOutput(); err != nil {
			continue
		}
		data, err := os.ReadFile(outBase + ".txt")
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("ocr produced no text from %d page images", len(images))
	}
	return strings.Join(pages, "\n"), nil
}
