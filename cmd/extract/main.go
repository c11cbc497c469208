// Command extract runs the statement extraction pipeline over a PDF and
// prints the classified transactions as JSON or CSV.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gocarina/gocsv"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/classification"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/extractor"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/service"
	"github.com/yumiacontato-lab/reembolsajus/pkg/config"
	"github.com/yumiacontato-lab/reembolsajus/pkg/money"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("extract", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		file     = flags.String("file", "", "path to the statement PDF (required)")
		format   = flags.String("format", "json", "output format: json or csv")
		taxonomy = flags.String("taxonomy", "", "path to a JSON taxonomy file (default: built-in)")
		verbose  = flags.Bool("verbose", false, "enable debug logging and progress output")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		flags.Usage()
		return fmt.Errorf("-file is required")
	}
	if *format != "json" && *format != "csv" {
		return fmt.Errorf("unknown format %q", *format)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg.Log, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	taxonomyPath := *taxonomy
	if taxonomyPath == "" {
		taxonomyPath = cfg.Classifier.TaxonomyPath
	}
	tax := classification.DefaultTaxonomy()
	if taxonomyPath != "" {
		if tax, err = classification.LoadTaxonomy(taxonomyPath); err != nil {
			return err
		}
	}
	classifier, err := classification.NewClassifier(tax)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithOCRPageLimit(cfg.OCR.PageLimit),
	}
	if *verbose {
		opts = append(opts, service.WithProgress(func(phase service.Phase, percent int) {
			fmt.Fprintf(stderr, "[%3d%%] %s\n", percent, phase)
		}))
	}
	if cfg.Gemini.AssistEnabled() {
		generator, err := classification.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Warn("review assist disabled", "error", err)
		} else {
			opts = append(opts, service.WithAssist(classification.NewReviewAssist(generator, logger)))
		}
	}

	svc := service.New(classifier, opts...)
	source := extractor.NewPDFSource(*file, extractor.WithOCRLanguages(cfg.OCR.Languages))

	result, err := svc.Extract(ctx, source)
	if err != nil {
		return err
	}

	if *format == "csv" {
		if err := writeCSV(stdout, result.Transactions); err != nil {
			return err
		}
	} else {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	}

	total := money.FromDecimal(result.ReimbursableTotal)
	fmt.Fprintf(stderr, "%d lancamentos, reembolsavel: %s\n",
		len(result.Transactions), total.Display())
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// csvRow flattens a transaction for spreadsheet import.
type csvRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
	Tag         string `csv:"tag"`
	Confidence  string `csv:"confidence"`
}

func writeCSV(w io.Writer, txs []statement.Transaction) error {
	rows := make([]csvRow, len(txs))
	for i, tx := range txs {
		rows[i] = csvRow{
			Date:        tx.Date,
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Category:    string(tx.Category),
			Tag:         tx.Tag,
			Confidence:  fmt.Sprintf("%.2f", tx.Confidence),
		}
	}
	return gocsv.Marshal(&rows, w)
}
