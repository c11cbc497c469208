// Package service orchestrates the extraction pipeline: acquire text, parse,
// fall back to OCR when the text layer is useless, deduplicate and classify.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/extractor"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/parser"
)

// Phase identifies a pipeline stage for progress reporting.
type Phase string

const (
	PhaseAcquireText      Phase = "acquire_text"
	PhaseParsePreliminary Phase = "parse_preliminary"
	PhaseOCR              Phase = "ocr"
	PhaseParseFinal       Phase = "parse_final"
	PhaseDeduplicate      Phase = "deduplicate"
	PhaseClassify         Phase = "classify"
)

// ProgressFunc receives pipeline progress. Percent is monotonically
// non-decreasing and ends at 100.
type ProgressFunc func(phase Phase, percent int)

// Classifier assigns categories to parsed transactions.
type Classifier interface {
	Classify(txs []statement.Transaction) []statement.Transaction
}

// Assist optionally resolves review transactions after classification.
type Assist interface {
	Upgrade(ctx context.Context, txs []statement.Transaction) []statement.Transaction
}

const (
	// DefaultOCRPageLimit caps rasterization cost on large statements.
	DefaultOCRPageLimit = 5

	// minLayerTextLen is the threshold below which a text layer is treated
	// as a scanned document wrapper rather than real content.
	minLayerTextLen = 120
)

// ExtractionService runs the statement extraction pipeline.
type ExtractionService struct {
	classifier   Classifier
	assist       Assist
	logger       *slog.Logger
	progress     ProgressFunc
	ocrPageLimit int
}

type Option func(*ExtractionService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *ExtractionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(s *ExtractionService) { s.progress = fn }
}

func WithAssist(assist Assist) Option {
	return func(s *ExtractionService) { s.assist = assist }
}

func WithOCRPageLimit(limit int) Option {
	return func(s *ExtractionService) {
		if limit > 0 {
			s.ocrPageLimit = limit
		}
	}
}

func New(classifier Classifier, opts ...Option) *ExtractionService {
	s := &ExtractionService{
		classifier:   classifier,
		logger:       slog.Default(),
		ocrPageLimit: DefaultOCRPageLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of one pipeline run.
type Result struct {
	Transactions      []statement.Transaction `json:"transactions"`
	UsedOCR           bool                    `json:"used_ocr"`
	ReimbursableTotal decimal.Decimal         `json:"reimbursable_total"`
}

// Extract runs the full pipeline over one document. Text acquisition is
// forgiving: a failed text layer or failed OCR degrades to empty text, and
// only the failure of every acquisition path is an error. An empty document
// yields an empty result.
func (s *ExtractionService) Extract(ctx context.Context, source extractor.TextSource) (*Result, error) {
	progress := newProgressReporter(s.progress)

	progress.report(PhaseAcquireText, 5)
	layerText, layerErr := source.LayerText(ctx)
	if layerErr != nil {
		if ctx.Err() != nil {
			return nil, layerErr
		}
		s.logger.Warn("text layer unavailable", "error", layerErr)
		layerText = ""
	}
	progress.report(PhaseAcquireText, 20)

	progress.report(PhaseParsePreliminary, 30)
	txs := parser.ParseLines(layerText)
	s.logger.Debug("preliminary parse",
		"transactions", len(txs), "text_len", len(layerText))

	usedOCR := false
	if s.needsOCR(layerText, txs) {
		progress.report(PhaseOCR, 40)
		ocrText, ocrErr := source.OCRText(ctx, s.ocrPageLimit)
		if ocrErr != nil {
			if ctx.Err() != nil {
				return nil, ocrErr
			}
			s.logger.Warn("ocr fallback failed", "error", ocrErr)
			ocrText = ""
		}
		progress.report(PhaseOCR, 70)

		if ocrText != "" {
			usedOCR = true
			progress.report(PhaseParseFinal, 75)
			txs = parser.ParseLines(layerText + "\n" + ocrText)
		} else if layerErr != nil {
			return nil, fmt.Errorf("no text could be extracted: %w", layerErr)
		}
	}

	progress.report(PhaseDeduplicate, 85)
	txs = parser.Deduplicate(txs)

	progress.report(PhaseClassify, 90)
	txs = s.classifier.Classify(txs)
	if s.assist != nil {
		txs = s.assist.Upgrade(ctx, txs)
	}
	progress.report(PhaseClassify, 100)

	s.logger.Info("extraction finished",
		"transactions", len(txs), "used_ocr", usedOCR)

	return &Result{
		Transactions:      txs,
		UsedOCR:           usedOCR,
		ReimbursableTotal: statement.ReimbursableTotal(txs),
	}, nil
}

// needsOCR decides whether the text layer alone is trustworthy. No parsed
// transactions, or a layer too short to be a real statement, triggers OCR.
func (s *ExtractionService) needsOCR(layerText string, txs []statement.Transaction) bool {
	if len(txs) == 0 {
		return true
	}
	return len(strings.TrimSpace(layerText)) < minLayerTextLen
}

// progressReporter clamps percentages so callbacks never observe progress
// moving backwards, whatever path the pipeline takes.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (p *progressReporter) report(phase Phase, percent int) {
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	if p.fn != nil {
		p.fn(phase, percent)
	}
}
