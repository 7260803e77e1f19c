package pdftext

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// stubBinary drops an executable shell script into dir under the given
// name so LookPath and CommandContext resolve it instead of the real
// tool.
func stubBinary(t *testing.T, dir, name, script string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+script+"\n"), 0o755))
}

func writeInputFile(t *testing.T) string {
	t.Helper()
	// Not a real PDF: the text-layer engine must fail on it, which is
	// exactly what the ladder tests need.
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain bytes"), 0o644))
	return path
}

func TestExtractor_ExtractFile(t *testing.T) {
	ctx := context.Background()

	t.Run("pdftotext wins when available", func(t *testing.T) {
		bin := t.TempDir()
		// pdftotext -layout <in> <out>
		stubBinary(t, bin, "pdftotext", `printf '0101 SMITH/JOHN\n' > "$3"`)
		t.Setenv("PATH", bin)

		ext, err := testExtractor().ExtractFile(ctx, writeInputFile(t))
		require.NoError(t, err)
		assert.Equal(t, EnginePDFToText, ext.Engine)
		assert.Equal(t, "0101 SMITH/JOHN\n", ext.Text)
	})

	t.Run("falls through to ocr and reports the engine", func(t *testing.T) {
		bin := t.TempDir()
		// No pdftotext; the input is not a PDF so the text layer fails
		// too, leaving tesseract as the last rung.
		stubBinary(t, bin, "tesseract", `printf '|. 0815 SMITH\n'`)
		t.Setenv("PATH", bin)

		ext, err := testExtractor().ExtractFile(ctx, writeInputFile(t))
		require.NoError(t, err)
		assert.Equal(t, EngineOCR, ext.Engine)
		assert.Equal(t, "|. 0815 SMITH\n", ext.Text)
	})

	t.Run("empty pdftotext output does not win the ladder", func(t *testing.T) {
		bin := t.TempDir()
		stubBinary(t, bin, "pdftotext", `: > "$3"`)
		stubBinary(t, bin, "tesseract", `printf 'scanned text\n'`)
		t.Setenv("PATH", bin)

		ext, err := testExtractor().ExtractFile(ctx, writeInputFile(t))
		require.NoError(t, err)
		assert.Equal(t, EngineOCR, ext.Engine)
		assert.Equal(t, "scanned text\n", ext.Text)
	})

	t.Run("error when every engine is unavailable", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())

		_, err := testExtractor().ExtractFile(ctx, writeInputFile(t))
		assert.Error(t, err)
	})

	t.Run("tool failure surfaces its stderr", func(t *testing.T) {
		bin := t.TempDir()
		stubBinary(t, bin, "tesseract", `echo 'cannot read image' >&2; exit 1`)
		t.Setenv("PATH", bin)

		_, err := testExtractor().ExtractFile(ctx, writeInputFile(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot read image")
	})
}
