// Package statement defines the domain model shared by the extraction,
// parsing and classification layers: transaction candidates produced from a
// bank-statement text and the vocabulary used to classify them.
package statement

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category is the canonical three-state reimbursability classification.
type Category string

const (
	CategoryReimbursable    Category = "reimbursable"
	CategoryNotReimbursable Category = "not_reimbursable"
	CategoryReview          Category = "review"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryReimbursable, CategoryNotReimbursable, CategoryReview:
		return true
	}
	return false
}

// DateToken is a date substring found on a statement line together with its
// canonical form. Normalized is always a calendar-valid YYYY-MM-DD.
type DateToken struct {
	Raw        string
	Normalized string
}

// ValueToken is a currency substring found on a statement line. Value is
// always a magnitude: sign and direction are decided by callers from context.
type ValueToken struct {
	Raw   string
	Value decimal.Decimal
}

// Transaction is a provisionally parsed line believed to represent one
// bank-statement entry. Tag, Category, Confidence and Keywords are refined by
// the keyword classifier after parsing; Client is assigned by the user during
// review, outside this core.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Tag         string          `json:"tag"`
	Category    Category        `json:"category"`
	Client      string          `json:"client"`
	Confidence  float64         `json:"confidence"`
	Keywords    []string        `json:"keywords,omitempty"`
}

// ReimbursableTotal sums the amounts of all transactions classified as
// reimbursable. Amounts are magnitudes, so the total is a magnitude too.
func ReimbursableTotal(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Category == CategoryReimbursable {
			total = total.Add(tx.Amount)
		}
	}
	return total
}
