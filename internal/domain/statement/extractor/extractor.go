// Package extractor turns statement documents into plain text for the
// parsing pipeline. The embedded text layer is the cheap path; OCR is the
// expensive fallback for scanned statements.
package extractor

import "context"

// TextSource yields the text of a statement document.
type TextSource interface {
	// LayerText returns the embedded text layer. An empty string with a nil
	// error means the document simply has no text layer.
	LayerText(ctx context.Context) (string, error)

	// OCRText rasterizes up to pageLimit pages and runs OCR over them.
	OCRText(ctx context.Context, pageLimit int) (string, error)
}
