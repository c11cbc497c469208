package classification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
)

// DefaultAssistModel is the Gemini model used when none is configured.
const DefaultAssistModel = "gemini-2.0-flash"

const assistTimeout = 30 * time.Second

// ContentGenerator abstracts the language-model call so the assist layer can
// be tested without network access.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API through the google.golang.org/genai
// client.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	if model == "" {
		model = DefaultAssistModel
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// ReviewAssist asks a language model to resolve transactions the keyword
// classifier left in review. It is strictly best-effort: any failure, from
// network errors to malformed output, leaves the input unchanged, and
// decisive keyword results are never overridden.
type ReviewAssist struct {
	generator ContentGenerator
	logger    *slog.Logger
}

func NewReviewAssist(generator ContentGenerator, logger *slog.Logger) *ReviewAssist {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewAssist{generator: generator, logger: logger}
}

type assistResult struct {
	Index      int     `json:"index"`
	Category   string  `json:"category"`
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
}

type assistResponse struct {
	Results []assistResult `json:"results"`
}

// Upgrade returns a copy of txs where review transactions may have been
// resolved by the model. Entries the model skips, answers out of range or
// answers with an unknown category keep their review state.
func (a *ReviewAssist) Upgrade(ctx context.Context, txs []statement.Transaction) []statement.Transaction {
	if a == nil || a.generator == nil {
		return txs
	}

	var reviewIdx []int
	for i, tx := range txs {
		if tx.Category == statement.CategoryReview {
			reviewIdx = append(reviewIdx, i)
		}
	}
	if len(reviewIdx) == 0 {
		return txs
	}

	ctx, cancel := context.WithTimeout(ctx, assistTimeout)
	defer cancel()

	raw, err := a.generator.GenerateContent(ctx, a.buildPrompt(txs, reviewIdx))
	if err != nil {
		a.logger.Warn("review assist skipped", "error", err, "pending", len(reviewIdx))
		return txs
	}

	var parsed assistResponse
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		a.logger.Warn("review assist returned unparseable output", "error", err)
		return txs
	}

	out := make([]statement.Transaction, len(txs))
	copy(out, txs)

	upgraded := 0
	for _, result := range parsed.Results {
		if result.Index < 0 || result.Index >= len(reviewIdx) {
			continue
		}
		category := statement.Category(result.Category)
		if !category.Valid() || category == statement.CategoryReview {
			continue
		}

		i := reviewIdx[result.Index]
		out[i].Category = category
		out[i].Confidence = clampConfidence(result.Confidence)
		if category == statement.CategoryReimbursable {
			out[i].Tag = result.Tag
		} else {
			out[i].Tag = ""
		}
		upgraded++
	}

	a.logger.Info("review assist applied", "pending", len(reviewIdx), "upgraded", upgraded)
	return out
}

func (a *ReviewAssist) buildPrompt(txs []statement.Transaction, reviewIdx []int) string {
	var b strings.Builder
	b.WriteString("Voce classifica lancamentos de extrato bancario de um escritorio de advocacia brasileiro.\n")
	b.WriteString("Para cada item, decida se a despesa e reembolsavel ao cliente (custas, cartorio, transporte a servico, correios, copias, diligencias) ou nao.\n")
	b.WriteString("Responda APENAS com JSON no formato:\n")
	b.WriteString(`{"results":[{"index":0,"category":"reimbursable|not_reimbursable","tag":"Cartorio|Custas Processuais|Transporte|Deslocamento|Correios|Copias|Diligencias|Outros","confidence":0.7}]}`)
	b.WriteString("\n\nLancamentos:\n")
	for n, i := range reviewIdx {
		fmt.Fprintf(&b, "%d. %s - R$ %s (%s)\n", n, txs[i].Description, txs[i].Amount.StringFixed(2), txs[i].Date)
	}
	return b.String()
}

func clampConfidence(v float64) float64 {
	if v <= 0 || v > 1 {
		return 0.7
	}
	return v
}

// cleanModelJSON strips Markdown fences and surrounding prose that models
// sometimes wrap around a JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}
	return s
}
