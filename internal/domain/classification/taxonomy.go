// Package classification assigns a reimbursability category, confidence and
// business tag to parsed transactions using two keyword taxonomies, with an
// optional best-effort language-model pass over ambiguous items.
package classification

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Taxonomy is the keyword configuration driving classification. It is data,
// not behavior: swapping lists changes outcomes deterministically, so loaded
// taxonomies should be versioned alongside the deployments that use them.
type Taxonomy struct {
	Version         string       `json:"version"`
	Reimbursable    []string     `json:"reimbursable"`
	NotReimbursable []string     `json:"not_reimbursable"`
	TagPatterns     []TagPattern `json:"tag_patterns"`
}

// TagPattern maps reimbursable descriptions to a human-facing business tag.
// Patterns are evaluated in declaration order; the first match wins.
type TagPattern struct {
	Tag     string `json:"tag"`
	Pattern string `json:"pattern"`
}

// fallbackTag is assigned when a reimbursable description matches no pattern.
const fallbackTag = "Outros"

// DefaultTaxonomy returns the built-in pt-BR legal expense taxonomy. Keyword
// matching is diacritic-insensitive, so only accentless forms are listed.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Version: "2025-08",
		Reimbursable: []string{
			"custas", "custa", "emolumentos", "diligencia",
			"cartorio", "tabeliao", "registro", "oficial",
			"autenticacao", "reconhecimento", "certidao",
			"taxa judiciaria", "preparo", "porte", "remessa",
			"junta comercial", "tribunal", "tjsp", "tjrj",
			"trf", "stf", "stj", "gru", "darf",
			"transporte", "uber", "99", "taxi", "cabify",
			"estacionamento", "pedagio", "combustivel",
			"xerox", "copia", "impressao",
			"correio", "sedex", "postagem", "protocolo",
		},
		NotReimbursable: []string{
			"salario", "folha", "inss", "fgts", "pis",
			"agua", "luz", "energia", "telefone", "internet",
			"aluguel", "condominio", "iptu", "ipva",
			"mercado", "supermercado", "restaurante", "lanche",
			"netflix", "spotify", "amazon", "ifood",
			"transferencia", "pix", "ted", "doc",
			"saque", "deposito", "resgate", "aplicacao",
		},
		TagPatterns: []TagPattern{
			{Tag: "Cartorio", Pattern: `CARTORIO|TABELIAO|REGISTRO|CERTID`},
			{Tag: "Custas Processuais", Pattern: `CUSTA|PREPARO|TAXA JUDIC|EMOLUMENTOS`},
			{Tag: "Transporte", Pattern: `UBER|99|TAXI|CABIFY|TRANSPORTE`},
			{Tag: "Deslocamento", Pattern: `PEDAGIO|ESTACIONAMENTO|COMBUSTIVEL`},
			{Tag: "Correios", Pattern: `CORREIO|SEDEX|POSTAGEM`},
			{Tag: "Copias", Pattern: `XEROX|COPIA|IMPRESSAO`},
			{Tag: "Diligencias", Pattern: `DILIGENCIA`},
		},
	}
}

// LoadTaxonomy reads a taxonomy from a JSON file, allowing classification to
// run against alternate keyword lists without code changes.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}

	var taxonomy Taxonomy
	if err := json.Unmarshal(data, &taxonomy); err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	if err := taxonomy.validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy %s: %w", path, err)
	}
	return &taxonomy, nil
}

func (t *Taxonomy) validate() error {
	if len(t.Reimbursable) == 0 {
		return fmt.Errorf("reimbursable keyword list is empty")
	}
	if len(t.NotReimbursable) == 0 {
		return fmt.Errorf("not_reimbursable keyword list is empty")
	}
	for _, tp := range t.TagPatterns {
		if tp.Tag == "" {
			return fmt.Errorf("tag pattern %q has no tag", tp.Pattern)
		}
		if _, err := regexp.Compile(tp.Pattern); err != nil {
			return fmt.Errorf("tag %q: %w", tp.Tag, err)
		}
	}
	return nil
}
