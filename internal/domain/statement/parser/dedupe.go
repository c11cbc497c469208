package parser

import (
	"strings"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
)

// Deduplicate collapses transactions that are structurally identical: same
// date, same case-folded description and same amount to two decimal places.
// Overlapping line-combination attempts routinely produce such duplicates.
// The first occurrence survives, in original extraction order; the function
// is pure and idempotent.
func Deduplicate(txs []statement.Transaction) []statement.Transaction {
	seen := make(map[string]struct{}, len(txs))
	unique := make([]statement.Transaction, 0, len(txs))

	for _, tx := range txs {
		signature := tx.Date + "|" + strings.ToUpper(tx.Description) + "|" + tx.Amount.StringFixed(2)
		if _, dup := seen[signature]; dup {
			continue
		}
		seen[signature] = struct{}{}
		unique = append(unique, tx)
	}
	return unique
}
