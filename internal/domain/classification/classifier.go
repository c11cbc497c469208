package classification

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/normalizer"
)

const (
	baseConfidence   = 0.5
	perMatchWeight   = 0.1
	maxConfidence    = 0.9
	reviewConfidence = 0.3

	// Fuzzy fallback tolerates a single edit on keywords long enough for an
	// edit to still identify them.
	fuzzyMinKeywordLen = 5
	fuzzyMaxDistance   = 1
)

type tagRule struct {
	tag string
	re  *regexp.Regexp
}

// Classifier categorizes transactions against a taxonomy. It is stateless per
// call and safe for concurrent use.
type Classifier struct {
	taxonomy *Taxonomy
	engine   *KeywordEngine
	tagRules []tagRule
}

func NewClassifier(taxonomy *Taxonomy) (*Classifier, error) {
	rules := make([]tagRule, 0, len(taxonomy.TagPatterns))
	for _, tp := range taxonomy.TagPatterns {
		re, err := regexp.Compile(tp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling tag pattern %q: %w", tp.Tag, err)
		}
		rules = append(rules, tagRule{tag: tp.Tag, re: re})
	}

	return &Classifier{
		taxonomy: taxonomy,
		engine:   NewKeywordEngine(taxonomy.Reimbursable, taxonomy.NotReimbursable),
		tagRules: rules,
	}, nil
}

// Classify returns a copy of txs with Category, Confidence, Keywords and Tag
// populated. Input order is preserved and the input slice is not mutated.
func (c *Classifier) Classify(txs []statement.Transaction) []statement.Transaction {
	out := make([]statement.Transaction, len(txs))
	copy(out, txs)

	for i := range out {
		category, confidence, keywords := c.classifyDescription(out[i].Description)
		out[i].Category = category
		out[i].Confidence = confidence
		out[i].Keywords = keywords
		if category == statement.CategoryReimbursable {
			out[i].Tag = c.DetermineTag(out[i].Description)
		} else {
			out[i].Tag = ""
		}
	}
	return out
}

func (c *Classifier) classifyDescription(description string) (statement.Category, float64, []string) {
	reimbursable, notReimbursable := c.engine.Match(description)

	switch {
	case len(reimbursable) > 0 && len(notReimbursable) > 0:
		// Conflicting evidence always goes to a human.
		return statement.CategoryReview, reviewConfidence, append(reimbursable, notReimbursable...)
	case len(reimbursable) > 0:
		return statement.CategoryReimbursable, confidenceFor(len(reimbursable)), reimbursable
	case len(notReimbursable) > 0:
		return statement.CategoryNotReimbursable, confidenceFor(len(notReimbursable)), notReimbursable
	}

	return c.classifyFuzzy(description)
}

// classifyFuzzy is the fallback for descriptions with no exact keyword hit,
// catching single-character OCR corruptions. A fuzzy hit counts as one match
// and never outweighs exact evidence.
func (c *Classifier) classifyFuzzy(description string) (statement.Category, float64, []string) {
	tokens := strings.Fields(normalizer.NormalizeForMatch(description))
	if len(tokens) == 0 {
		return statement.CategoryReview, reviewConfidence, nil
	}

	reimbursable := fuzzyMatches(tokens, c.taxonomy.Reimbursable)
	notReimbursable := fuzzyMatches(tokens, c.taxonomy.NotReimbursable)

	switch {
	case len(reimbursable) > 0 && len(notReimbursable) > 0:
		return statement.CategoryReview, reviewConfidence, append(reimbursable, notReimbursable...)
	case len(reimbursable) > 0:
		return statement.CategoryReimbursable, confidenceFor(1), reimbursable
	case len(notReimbursable) > 0:
		return statement.CategoryNotReimbursable, confidenceFor(1), notReimbursable
	}
	return statement.CategoryReview, reviewConfidence, nil
}

func fuzzyMatches(tokens, keywords []string) []string {
	var matched []string
	for _, raw := range keywords {
		keyword := normalizer.NormalizeForMatch(raw)
		if len(keyword) < fuzzyMinKeywordLen {
			continue
		}
		for _, token := range tokens {
			if diff := len(token) - len(keyword); diff > fuzzyMaxDistance || diff < -fuzzyMaxDistance {
				continue
			}
			if fuzzy.LevenshteinDistance(keyword, token) <= fuzzyMaxDistance {
				matched = append(matched, keyword)
				break
			}
		}
	}
	return matched
}

func confidenceFor(matches int) float64 {
	confidence := baseConfidence + perMatchWeight*float64(matches)
	if confidence > maxConfidence {
		return maxConfidence
	}
	return confidence
}

// DetermineTag maps a description to its business tag. Rules are checked in
// taxonomy order and the first match wins; unmatched descriptions fall back
// to the catch-all tag.
func (c *Classifier) DetermineTag(description string) string {
	normalized := normalizer.NormalizeForMatch(description)
	for _, rule := range c.tagRules {
		if rule.re.MatchString(normalized) {
			return rule.tag
		}
	}
	return fallbackTag
}
