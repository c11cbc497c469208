// Package normalizer provides pure normalization helpers for the statement
// parser: locale-formatted currency values, Brazilian DD/MM dates and
// diacritic-insensitive text matching.
package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var matchNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeForMatch strips diacritics and uppercases s so that marker and
// keyword matching is insensitive to accents and case ("Saída" → "SAIDA").
func NormalizeForMatch(s string) string {
	stripped, _, err := transform.String(matchNormalizer, s)
	if err != nil {
		stripped = s
	}
	return strings.ToUpper(stripped)
}

// ParseCurrencyValue converts a locale-formatted currency substring into a
// decimal magnitude. The decimal separator is whichever of "," and "." occurs
// last; the other is treated as a thousands separator and removed. Leading or
// trailing minus marks negative input but the result is always the absolute
// value: sign is not meaningful at this layer. Input that cannot be parsed
// yields zero, never an error.
func ParseCurrencyValue(raw string) decimal.Decimal {
	cleaned := norm.NFKC.String(raw)
	cleaned = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == ',' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, cleaned)

	if cleaned == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma > lastDot:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	cleaned = strings.ReplaceAll(cleaned, "-", "")

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value.Abs()
}

// NormalizeDate converts DD/MM/YYYY, DD-MM-YYYY or DD.MM.YYYY (2- or 4-digit
// year) into zero-padded YYYY-MM-DD. Two-digit years are expanded by
// prefixing "20".
func NormalizeDate(raw string) string {
	unified := strings.NewReplacer(".", "/", "-", "/").Replace(raw)
	parts := strings.Split(unified, "/")
	if len(parts) != 3 {
		return ""
	}

	day, month, year := parts[0], parts[1], parts[2]
	if len(year) == 2 {
		year = "20" + year
	}
	return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day))
}

// NormalizeDateWithFallbackYear handles two-component DD/MM dates lacking a
// year: the current year is inferred unless that would place the date more
// than 24 hours in the future, in which case the previous year is used. This
// covers statements spanning a year boundary, e.g. a December transaction
// processed in January. Three-component dates defer to NormalizeDate.
func NormalizeDateWithFallbackYear(raw string) string {
	return normalizeDateWithFallbackYearAt(raw, time.Now())
}

func normalizeDateWithFallbackYearAt(raw string, now time.Time) string {
	unified := strings.NewReplacer(".", "/", "-", "/").Replace(raw)
	parts := strings.Split(unified, "/")
	if len(parts) != 2 {
		return NormalizeDate(raw)
	}

	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])

	year := now.Year()
	inferred := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if inferred.After(now.Add(24 * time.Hour)) {
		year--
	}
	return fmt.Sprintf("%04d-%s-%s", year, pad2(parts[1]), pad2(parts[0]))
}

// IsValidNormalizedDate reports whether iso is a calendar-valid YYYY-MM-DD
// date, including leap-year handling for February 29.
func IsValidNormalizedDate(iso string) bool {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return false
	}

	year, errY := strconv.Atoi(parts[0])
	month, errM := strconv.Atoi(parts[1])
	day, errD := strconv.Atoi(parts[2])
	if errY != nil || errM != nil || errD != nil {
		return false
	}
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
