// Package parser turns raw statement text lines into transaction candidates.
// It combines date/value token detection with noise heuristics tuned for
// Brazilian bank statements, where OCR artifacts and boilerplate lines are
// common.
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/normalizer"
)

// minLineLength is the shortest whitespace-collapsed line worth attempting: a
// date plus any description is already longer.
const minLineLength = 6

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	uuidTokenRe  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// descriptionCutset trims dash and space clutter (including en/em dashes)
// left between the date and value columns.
const descriptionCutset = " \t-–—"

// ParseLine attempts to extract a single transaction candidate from one text
// line (or two adjacent lines already joined by the caller). It returns nil
// for header lines, boilerplate, lines without a parseable date/value pair
// and descriptions that look like OCR noise. Rejection is never an error.
func ParseLine(line string) *statement.Transaction {
	compact := strings.TrimSpace(whitespaceRe.ReplaceAllString(line, " "))
	if utf8.RuneCountInString(compact) < minLineLength {
		return nil
	}
	if normalizer.IsLikelyHeaderLine(compact) || normalizer.IsLikelyNonTransactionLine(compact) {
		return nil
	}

	date := extractDate(compact)
	if date == nil {
		return nil
	}

	value := chooseValue(extractValueCandidates(compact, date.end))
	if value == nil {
		return nil
	}

	description := strings.Trim(compact[date.end:value.start], descriptionCutset)
	if description == "" || isNoiseDescription(description) {
		return nil
	}

	tx := statement.Transaction{
		ID:          uuid.New(),
		Date:        date.token.Normalized,
		Description: description,
		Amount:      value.token.Value,
	}
	tx.Tag, tx.Category = provisionalTag(description)
	return &tx
}

// ParseLines runs the line-combination parse over a whole document: each line
// is tried alone, then joined with the next line, then joined with the
// previous one. This recovers entries that OCR or layout split across two
// visual lines. Overlapping combinations can produce duplicates; callers
// apply Deduplicate afterwards.
func ParseLines(text string) []statement.Transaction {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}

	var parsed []statement.Transaction
	for i, line := range lines {
		if tx := ParseLine(line); tx != nil {
			parsed = append(parsed, *tx)
			continue
		}
		if i+1 < len(lines) {
			if tx := ParseLine(line + " " + lines[i+1]); tx != nil {
				parsed = append(parsed, *tx)
				continue
			}
		}
		if i > 0 {
			if tx := ParseLine(lines[i-1] + " " + line); tx != nil {
				parsed = append(parsed, *tx)
			}
		}
	}
	return parsed
}

// isNoiseDescription guards against OCR artifacts that survive token
// extraction: too-short fragments, purely non-alphabetic runs, UUID-shaped
// hex tokens and single digit-heavy tokens such as serial numbers.
func isNoiseDescription(description string) bool {
	if utf8.RuneCountInString(description) < 3 {
		return true
	}

	letters, digits := 0, 0
	for _, r := range description {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters == 0 {
		return true
	}

	if !strings.ContainsRune(description, ' ') {
		if uuidTokenRe.MatchString(description) {
			return true
		}
		if digits > 2*letters {
			return true
		}
	}
	return false
}
