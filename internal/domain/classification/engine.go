package classification

import (
	"github.com/cloudflare/ahocorasick"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/normalizer"
)

// KeywordEngine performs multi-pattern substring matching of a description
// against both taxonomy sets in a single automaton pass. The engine is
// immutable after construction and safe for concurrent use.
type KeywordEngine struct {
	matcher *ahocorasick.Matcher
	entries []keywordEntry
}

type keywordEntry struct {
	keyword         string
	reimbursable    bool
	notReimbursable bool
}

// NewKeywordEngine builds an engine over normalized forms of both keyword
// lists. A keyword appearing in both lists is tracked once and reported for
// both sets, so it forces conflicting evidence rather than vanishing.
func NewKeywordEngine(reimbursable, notReimbursable []string) *KeywordEngine {
	index := make(map[string]int)
	var entries []keywordEntry

	add := func(raw string, asReimbursable bool) {
		keyword := normalizer.NormalizeForMatch(raw)
		if keyword == "" {
			return
		}
		i, ok := index[keyword]
		if !ok {
			i = len(entries)
			index[keyword] = i
			entries = append(entries, keywordEntry{keyword: keyword})
		}
		if asReimbursable {
			entries[i].reimbursable = true
		} else {
			entries[i].notReimbursable = true
		}
	}

	for _, kw := range reimbursable {
		add(kw, true)
	}
	for _, kw := range notReimbursable {
		add(kw, false)
	}

	patterns := make([]string, len(entries))
	for i, e := range entries {
		patterns[i] = e.keyword
	}

	return &KeywordEngine{
		matcher: ahocorasick.NewStringMatcher(patterns),
		entries: entries,
	}
}

// Match returns the distinct keywords from each set found in the description.
// Matching is substring-based over the normalized text, mirroring how bank
// descriptors embed merchant names mid-token.
func (e *KeywordEngine) Match(description string) (reimbursable, notReimbursable []string) {
	normalized := normalizer.NormalizeForMatch(description)
	if normalized == "" {
		return nil, nil
	}

	for _, hit := range e.matcher.Match([]byte(normalized)) {
		entry := e.entries[hit]
		if entry.reimbursable {
			reimbursable = append(reimbursable, entry.keyword)
		}
		if entry.notReimbursable {
			notReimbursable = append(notReimbursable, entry.keyword)
		}
	}
	return reimbursable, notReimbursable
}
