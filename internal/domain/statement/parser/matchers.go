package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement/normalizer"
)

// Statements use DD/MM dates with /, - or . separators. Values may carry an
// R$ prefix, thousands separators (dot or space) and 1-2 decimal digits, with
// the minus occasionally trailing in bank exports.
var (
	fullDateRe  = regexp.MustCompile(`\d{2}[/.-]\d{2}[/.-]\d{2,4}`)
	shortDateRe = regexp.MustCompile(`\d{2}[/.-]\d{2}`)
	valueRe     = regexp.MustCompile(`(?:R\$\s*)?-?\d{1,3}(?:[.\s]\d{3})+,\d{1,2}-?|(?:R\$\s*)?-?\d+[.,]\d{1,2}-?`)
)

// maxPlausibleValue rejects value candidates that are almost certainly noise
// (account numbers, document identifiers) rather than amounts.
var maxPlausibleValue = decimal.NewFromInt(1_000_000)

type dateMatch struct {
	token statement.DateToken
	start int
	end   int
}

type valueMatch struct {
	token    statement.ValueToken
	start    int
	end      int
	decimals int
}

// dateMatchers are evaluated in priority order: a full DD/MM/YYYY-shaped
// match wins over a short DD/MM one.
var dateMatchers = []func(line string) *dateMatch{
	matchFullDate,
	matchShortDate,
}

func extractDate(line string) *dateMatch {
	for _, match := range dateMatchers {
		if m := match(line); m != nil {
			return m
		}
	}
	return nil
}

// matchFullDate returns the first DD/MM/YYYY-shaped substring that normalizes
// to a calendar-valid date. Impossible dates such as 31/02/2025 yield no
// match at all.
func matchFullDate(line string) *dateMatch {
	for _, loc := range fullDateRe.FindAllStringIndex(line, -1) {
		raw := line[loc[0]:loc[1]]
		iso := normalizer.NormalizeDate(raw)
		if !normalizer.IsValidNormalizedDate(iso) {
			continue
		}
		return &dateMatch{
			token: statement.DateToken{Raw: raw, Normalized: iso},
			start: loc[0],
			end:   loc[1],
		}
	}
	return nil
}

// matchShortDate returns the first DD/MM substring not immediately followed
// by another separator-digit pair, which would indicate the middle of a
// longer date or an unrelated numeric run. The year is inferred from the
// current date.
func matchShortDate(line string) *dateMatch {
	for _, loc := range shortDateRe.FindAllStringIndex(line, -1) {
		if followedBySeparatorDigit(line, loc[1]) {
			continue
		}
		raw := line[loc[0]:loc[1]]
		iso := normalizer.NormalizeDateWithFallbackYear(raw)
		if !normalizer.IsValidNormalizedDate(iso) {
			continue
		}
		return &dateMatch{
			token: statement.DateToken{Raw: raw, Normalized: iso},
			start: loc[0],
			end:   loc[1],
		}
	}
	return nil
}

func followedBySeparatorDigit(line string, end int) bool {
	if end+1 >= len(line) {
		return false
	}
	sep := line[end]
	if sep != '/' && sep != '-' && sep != '.' {
		return false
	}
	next := line[end+1]
	return next >= '0' && next <= '9'
}

// extractValueCandidates returns every value-shaped substring starting at or
// after the given offset, parsed to a magnitude. Candidates that parse to
// zero or to an implausibly large magnitude are dropped as noise.
func extractValueCandidates(line string, after int) []valueMatch {
	var candidates []valueMatch
	for _, loc := range valueRe.FindAllStringIndex(line, -1) {
		if loc[0] < after {
			continue
		}
		raw := line[loc[0]:loc[1]]
		value := normalizer.ParseCurrencyValue(raw)
		if !value.IsPositive() || value.GreaterThan(maxPlausibleValue) {
			continue
		}
		candidates = append(candidates, valueMatch{
			token:    statement.ValueToken{Raw: raw, Value: value},
			start:    loc[0],
			end:      loc[1],
			decimals: decimalDigits(raw),
		})
	}
	return candidates
}

// chooseValue disambiguates among multiple value candidates: exactly two
// decimal digits beat any other count, and among ties the candidate occurring
// latest in the line wins, since the rightmost column of a tabular statement
// is conventionally the amount.
func chooseValue(candidates []valueMatch) *valueMatch {
	var best *valueMatch
	for i := range candidates {
		c := &candidates[i]
		if best == nil || betterValue(c, best) {
			best = c
		}
	}
	return best
}

func betterValue(a, b *valueMatch) bool {
	aTwo, bTwo := a.decimals == 2, b.decimals == 2
	if aTwo != bTwo {
		return aTwo
	}
	return a.start >= b.start
}

func decimalDigits(raw string) int {
	raw = strings.TrimSuffix(raw, "-")
	sep := strings.LastIndexAny(raw, ",.")
	if sep < 0 {
		return 0
	}
	return len(raw) - sep - 1
}
