package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPDFSource(t *testing.T) {
	t.Run("default languages", func(t *testing.T) {
		s := NewPDFSource("statement.pdf")
		assert.Equal(t, DefaultOCRLanguages, s.languages)
	})

	t.Run("language override", func(t *testing.T) {
		s := NewPDFSource("statement.pdf", WithOCRLanguages("por"))
		assert.Equal(t, "por", s.languages)
	})

	t.Run("empty override keeps default", func(t *testing.T) {
		s := NewPDFSource("statement.pdf", WithOCRLanguages(""))
		assert.Equal(t, DefaultOCRLanguages, s.languages)
	})
}

func TestPDFSource_LayerText(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		s := NewPDFSource(filepath.Join(t.TempDir(), "missing.pdf"))
		_, err := s.LayerText(ctx)
		assert.Error(t, err)
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.pdf")
		require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

		s := NewPDFSource(path)
		_, err := s.LayerText(ctx)
		assert.Error(t, err)
	})

	t.Run("truncated pdf does not panic", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "truncated.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\n<<"), 0o644))

		s := NewPDFSource(path)
		assert.NotPanics(t, func() {
			_, err := s.LayerText(ctx)
			assert.Error(t, err)
		})
	})
}

func TestPDFSource_OCRText(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s := NewPDFSource(filepath.Join(t.TempDir(), "missing.pdf"))
		_, err := s.OCRText(context.Background(), 5)
		assert.Error(t, err)
	})
}
