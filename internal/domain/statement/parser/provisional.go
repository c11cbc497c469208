package parser

import (
	"strings"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/normalizer"
)

// The fast-path tagger gives each candidate a provisional tag and category
// right at parse time so a preview can be shown before the richer keyword
// classifier runs server-side. The classifier supersedes these values.

const (
	tagTransporte     = "TRANSPORTE"
	tagCartorio       = "CARTORIO"
	tagGRU            = "GRU"
	tagEstacionamento = "ESTACIONAMENTO"
	tagCombustivel    = "COMBUSTIVEL"
	tagOAB            = "OAB"
	tagReembolsavel   = "REEMBOLSAVEL"
	tagRevisar        = "REVISAR"
)

type provisionalRule struct {
	keywords []string
	tag      string
	category statement.Category
}

// Ordered: first match wins.
var provisionalRules = []provisionalRule{
	{[]string{"UBER", "99", "TAXI"}, tagTransporte, statement.CategoryReimbursable},
	{[]string{"CARTORIO"}, tagCartorio, statement.CategoryReimbursable},
	{[]string{"GRU"}, tagGRU, statement.CategoryReimbursable},
	{[]string{"ESTAC"}, tagEstacionamento, statement.CategoryReimbursable},
	{[]string{"POSTO", "COMBUST"}, tagCombustivel, statement.CategoryReview},
	{[]string{"OAB"}, tagOAB, statement.CategoryReview},
}

// Broader membership test applied when no ordered rule matches.
var provisionalReimbursableKeywords = []string{
	"UBER", "99", "TAXI", "CARTORIO", "GRU", "ESTAC", "ESTACIONAMENTO",
	"PEDAGIO", "SEDEX", "CORREIOS", "HOTEL", "HOSPEDAGEM", "PASSAGEM",
	"AEREA", "AZUL", "LATAM", "GOL",
}

func provisionalTag(description string) (string, statement.Category) {
	upper := normalizer.NormalizeForMatch(description)

	for _, rule := range provisionalRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(upper, keyword) {
				return rule.tag, rule.category
			}
		}
	}

	for _, keyword := range provisionalReimbursableKeywords {
		if strings.Contains(upper, keyword) {
			return tagReembolsavel, statement.CategoryReimbursable
		}
	}
	return tagRevisar, statement.CategoryReview
}
