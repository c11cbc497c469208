package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumiacontato-lab/reembolsajus/internal/domain/classification"
	"github.com/yumiacontato-lab/reembolsajus/internal/domain/statement"
)

type fakeSource struct {
	layerText string
	layerErr  error
	ocrText   string
	ocrErr    error

	ocrCalls     int
	ocrPageLimit int
}

func (f *fakeSource) LayerText(context.Context) (string, error) {
	return f.layerText, f.layerErr
}

func (f *fakeSource) OCRText(_ context.Context, pageLimit int) (string, error) {
	f.ocrCalls++
	f.ocrPageLimit = pageLimit
	return f.ocrText, f.ocrErr
}

// richStatement is long enough to pass the short-layer check and carries two
// parsable lines.
const richStatement = `BANCO EXEMPLO S.A. - EXTRATO DE CONTA CORRENTE
AGENCIA 0001 CONTA 12345-6 PERIODO 01/11/2024 A 30/11/2024
DATA      HISTORICO                      VALOR
05/11/2024 UBER *TRIP PZXY1234           47,90
07/11/2024 NETFLIX.COM ASSINATURA        55,90
SALDO FINAL                           1.234,56`

func newTestService(t *testing.T, opts ...Option) *ExtractionService {
	t.Helper()
	classifier, err := classification.NewClassifier(classification.DefaultTaxonomy())
	require.NoError(t, err)
	return New(classifier, opts...)
}

func TestExtract_TextLayerOnly(t *testing.T) {
	source := &fakeSource{layerText: richStatement}
	svc := newTestService(t)

	result, err := svc.Extract(context.Background(), source)
	require.NoError(t, err)

	assert.False(t, result.UsedOCR)
	assert.Zero(t, source.ocrCalls)

	require.Len(t, result.Transactions, 2)
	uber := result.Transactions[0]
	assert.Equal(t, "2024-11-05", uber.Date)
	assert.Equal(t, statement.CategoryReimbursable, uber.Category)
	assert.Equal(t, "Transporte", uber.Tag)

	netflix := result.Transactions[1]
	assert.Equal(t, statement.CategoryNotReimbursable, netflix.Category)

	assert.Equal(t, "47.90", result.ReimbursableTotal.StringFixed(2))
}

func TestExtract_OCRFallback(t *testing.T) {
	t.Run("empty layer triggers ocr", func(t *testing.T) {
		source := &fakeSource{layerText: "", ocrText: richStatement}
		svc := newTestService(t)

		result, err := svc.Extract(context.Background(), source)
		require.NoError(t, err)

		assert.True(t, result.UsedOCR)
		assert.Equal(t, 1, source.ocrCalls)
		assert.Equal(t, DefaultOCRPageLimit, source.ocrPageLimit)
		assert.Len(t, result.Transactions, 2)
	})

	t.Run("short layer triggers ocr", func(t *testing.T) {
		source := &fakeSource{
			layerText: "05/11/2024 UBER *TRIP PZXY1234 47,90",
			ocrText:   richStatement,
		}
		svc := newTestService(t)

		result, err := svc.Extract(context.Background(), source)
		require.NoError(t, err)

		assert.True(t, result.UsedOCR)
		// The layer transaction and its OCR duplicate collapse to one.
		assert.Len(t, result.Transactions, 2)
	})

	t.Run("rich layer with no transactions triggers ocr", func(t *testing.T) {
		source := &fakeSource{
			layerText: strings.Repeat("RELATORIO SEM LANCAMENTOS ", 10),
			ocrText:   richStatement,
		}
		svc := newTestService(t)

		result, err := svc.Extract(context.Background(), source)
		require.NoError(t, err)
		assert.True(t, result.UsedOCR)
		assert.Len(t, result.Transactions, 2)
	})

	t.Run("ocr page limit option is forwarded", func(t *testing.T) {
		source := &fakeSource{ocrText: richStatement}
		svc := newTestService(t, WithOCRPageLimit(2))

		_, err := svc.Extract(context.Background(), source)
		require.NoError(t, err)
		assert.Equal(t, 2, source.ocrPageLimit)
	})

	t.Run("ocr failure degrades to layer result", func(t *testing.T) {
		source := &fakeSource{
			layerText: "05/11/2024 UBER *TRIP 47,90",
			ocrErr:    errors.New("tesseract not available"),
		}
		svc := newTestService(t)

		result, err := svc.Extract(context.Background(), source)
		require.NoError(t, err)
		assert.False(t, result.UsedOCR)
		assert.Len(t, result.Transactions, 1)
	})

	t.Run("both paths failing is an error", func(t *testing.T) {
		source := &fakeSource{
			layerErr: errors.New("pdf reader crashed"),
			ocrErr:   errors.New("pdftoppm not available"),
		}
		svc := newTestService(t)

		_, err := svc.Extract(context.Background(), source)
		assert.ErrorContains(t, err, "no text could be extracted")
	})

	t.Run("blank document yields empty result", func(t *testing.T) {
		source := &fakeSource{}
		svc := newTestService(t)

		result, err := svc.Extract(context.Background(), source)
		require.NoError(t, err)
		assert.Empty(t, result.Transactions)
		assert.True(t, result.ReimbursableTotal.IsZero())
	})
}

func TestExtract_Progress(t *testing.T) {
	type step struct {
		phase   Phase
		percent int
	}
	var steps []step
	svc := newTestService(t, WithProgress(func(phase Phase, percent int) {
		steps = append(steps, step{phase, percent})
	}))

	source := &fakeSource{layerText: "", ocrText: richStatement}
	_, err := svc.Extract(context.Background(), source)
	require.NoError(t, err)

	require.NotEmpty(t, steps)
	last := 0
	for _, s := range steps {
		assert.GreaterOrEqual(t, s.percent, last, "progress went backwards at %s", s.phase)
		last = s.percent
	}
	assert.Equal(t, 100, steps[len(steps)-1].percent)
	assert.Equal(t, PhaseClassify, steps[len(steps)-1].phase)

	phases := make(map[Phase]bool)
	for _, s := range steps {
		phases[s.phase] = true
	}
	assert.True(t, phases[PhaseOCR])
	assert.True(t, phases[PhaseParseFinal])
}

func TestExtract_AssistUpgradesReviewItems(t *testing.T) {
	gen := &staticGenerator{response: `{"results":[{"index":0,"category":"reimbursable","tag":"Outros","confidence":0.75}]}`}
	assist := classification.NewReviewAssist(gen, nil)

	layer := richStatement + "\n10/11/2024 PAG BOLETO COBRANCA 0001   150,00"
	source := &fakeSource{layerText: layer}
	svc := newTestService(t, WithAssist(assist))

	result, err := svc.Extract(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 3)

	boleto := result.Transactions[2]
	assert.Equal(t, statement.CategoryReimbursable, boleto.Category)
	assert.Equal(t, "Outros", boleto.Tag)
	assert.Equal(t, "197.90", result.ReimbursableTotal.StringFixed(2))
}

type staticGenerator struct {
	response string
}

func (g *staticGenerator) GenerateContent(context.Context, string) (string, error) {
	return g.response, nil
}
