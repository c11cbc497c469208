package normalizer

import "strings"

// Markers are matched against accent-stripped, uppercased lines, so only the
// accentless forms are listed.
var (
	headerMarkers = []string{"DATA", "DESCR", "HISTOR", "SALDO", "LANCAMENTO"}

	nonTransactionMarkers = []string{
		"SALDO ANTERIOR",
		"SALDO FINAL",
		"SALDO DO DIA",
		"TOTAL DE ENTRADAS",
		"TOTAL DE SAIDAS",
	}
)

// IsLikelyHeaderLine reports whether line looks like a statement column
// header (date/description/history/balance/entry labels). Matching is
// diacritic- and case-insensitive.
func IsLikelyHeaderLine(line string) bool {
	return containsAnyMarker(line, headerMarkers)
}

// IsLikelyNonTransactionLine reports whether line is statement boilerplate
// such as running/opening/closing balances or period totals. Both predicates
// must run before a line is parsed as a transaction.
func IsLikelyNonTransactionLine(line string) bool {
	return containsAnyMarker(line, nonTransactionMarkers)
}

func containsAnyMarker(line string, markers []string) bool {
	upper := NormalizeForMatch(line)
	for _, marker := range markers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
