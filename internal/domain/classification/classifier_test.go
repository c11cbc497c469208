package classification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultTaxonomy())
	require.NoError(t, err)
	return c
}

func tx(description string) statement.Transaction {
	return statement.Transaction{
		ID:          uuid.New(),
		Date:        "2024-11-05",
		Description: description,
		Amount:      decimal.NewFromFloat(47.90),
	}
}

func TestKeywordEngine_Match(t *testing.T) {
	engine := NewKeywordEngine(
		[]string{"cartorio", "custas", "custa"},
		[]string{"netflix", "pix"},
	)

	t.Run("distinct reimbursable hits", func(t *testing.T) {
		reimb, notReimb := engine.Match("CARTÓRIO 2º OFÍCIO CUSTAS")
		assert.Len(t, reimb, 3)
		assert.Empty(t, notReimb)
	})

	t.Run("diacritics do not hide keywords", func(t *testing.T) {
		reimb, _ := engine.Match("cartório de notas")
		assert.Equal(t, []string{"CARTORIO"}, reimb)
	})

	t.Run("hits from both sets are both reported", func(t *testing.T) {
		reimb, notReimb := engine.Match("PIX CARTORIO CENTRAL")
		assert.NotEmpty(t, reimb)
		assert.NotEmpty(t, notReimb)
	})

	t.Run("empty description", func(t *testing.T) {
		reimb, notReimb := engine.Match("   ")
		assert.Empty(t, reimb)
		assert.Empty(t, notReimb)
	})
}

func TestClassifier_Classify(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("single reimbursable keyword", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("UBER *TRIP PZXY1234")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReimbursable, out[0].Category)
		assert.InDelta(t, 0.6, out[0].Confidence, 1e-9)
		assert.Equal(t, "Transporte", out[0].Tag)
		assert.Contains(t, out[0].Keywords, "UBER")
	})

	t.Run("multiple keywords raise confidence", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("CARTORIO 2 OFICIO CUSTAS CERTIDAO")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReimbursable, out[0].Category)
		// cartorio, custas, custa, certidao
		assert.InDelta(t, 0.9, out[0].Confidence, 1e-9)
		assert.Equal(t, "Cartorio", out[0].Tag)
	})

	t.Run("confidence is capped", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("CARTORIO TABELIAO REGISTRO CERTIDAO CUSTAS PREPARO UBER")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReimbursable, out[0].Category)
		assert.InDelta(t, 0.9, out[0].Confidence, 1e-9)
	})

	t.Run("not reimbursable", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("NETFLIX.COM ASSINATURA")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryNotReimbursable, out[0].Category)
		assert.InDelta(t, 0.6, out[0].Confidence, 1e-9)
		assert.Empty(t, out[0].Tag)
	})

	t.Run("conflicting evidence goes to review", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("PIX UBER VIAGEM")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReview, out[0].Category)
		assert.InDelta(t, 0.3, out[0].Confidence, 1e-9)
		assert.Empty(t, out[0].Tag)
	})

	t.Run("no evidence goes to review", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("PADARIA DO ZE")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReview, out[0].Category)
		assert.InDelta(t, 0.3, out[0].Confidence, 1e-9)
		assert.Empty(t, out[0].Keywords)
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		in := []statement.Transaction{tx("UBER *TRIP")}
		c.Classify(in)
		assert.Equal(t, statement.Category(""), in[0].Category)
		assert.Zero(t, in[0].Confidence)
	})
}

func TestClassifier_FuzzyFallback(t *testing.T) {
	c := newTestClassifier(t)

	t.Run("single edit OCR corruption", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("CART0RIO NOTAS")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReimbursable, out[0].Category)
		assert.InDelta(t, 0.6, out[0].Confidence, 1e-9)
		assert.Contains(t, out[0].Keywords, "CARTORIO")
	})

	t.Run("fuzzy never overrides exact evidence", func(t *testing.T) {
		// Exact NETFLIX hit decides even with a fuzzy-close reimbursable token.
		out := c.Classify([]statement.Transaction{tx("NETFLIX CART0RIO")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryNotReimbursable, out[0].Category)
	})

	t.Run("two edits are too far", func(t *testing.T) {
		out := c.Classify([]statement.Transaction{tx("CART00IO")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReview, out[0].Category)
	})

	t.Run("short keywords are excluded", func(t *testing.T) {
		// One edit away from GRU, but GRU is below the fuzzy length floor.
		out := c.Classify([]statement.Transaction{tx("GRO")})
		require.Len(t, out, 1)
		assert.Equal(t, statement.CategoryReview, out[0].Category)
	})
}

func TestClassifier_DetermineTag(t *testing.T) {
	c := newTestClassifier(t)

	tests := []struct {
		description string
		want        string
	}{
		{"CARTORIO 5 OFICIO", "Cartorio"},
		{"CARTÓRIO DE NOTAS", "Cartorio"},
		{"GRU CUSTAS TJSP", "Custas Processuais"},
		{"UBER *TRIP", "Transporte"},
		{"ESTACIONAMENTO SHOPPING", "Deslocamento"},
		{"SEDEX 10 CORREIOS", "Correios"},
		{"XEROX E IMPRESSAO", "Copias"},
		{"DILIGENCIA OFICIAL JUSTICA", "Diligencias"},
		{"GRU SIMPLES", "Outros"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.want, c.DetermineTag(tc.description))
		})
	}

	t.Run("order decides overlaps", func(t *testing.T) {
		// Matches both Cartorio and Custas Processuais; first rule wins.
		assert.Equal(t, "Cartorio", c.DetermineTag("CARTORIO CUSTAS"))
	})
}
