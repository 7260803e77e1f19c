// Package pdftext extracts plain text from uploaded report PDFs. It is
// the black-box collaborator in front of the classification core: the
// core only ever sees lines of text and which engine produced them.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// Engine identifies which extraction path produced the text. OCR text
// is noisier and is scanned with more forgiving rules downstream.
type Engine string

const (
	EnginePDFToText Engine = "pdftotext"
	EngineTextLayer Engine = "text-layer"
	EngineOCR       Engine = "ocr"
)

// Extraction is one document's extracted text.
type Extraction struct {
	Text   string
	Engine Engine
}

// Extractor pulls text out of PDF files, preferring the layout-aware
// pdftotext binary, then the in-process text layer, then a tesseract
// OCR pass for scanned documents.
type Extractor struct {
	logger *slog.Logger

	// overridable in tests
	execTimeout time.Duration
}

// NewExtractor creates a PDF text extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger, execTimeout: 30 * time.Second}
}

// ExtractFile extracts text from a PDF on disk. The caller decides
// what a failure means; this package only reports it.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (Extraction, error) {
	if text, err := e.viaPDFToText(ctx, path); err == nil && strings.TrimSpace(text) != "" {
		return Extraction{Text: text, Engine: EnginePDFToText}, nil
	} else if err != nil {
		e.logger.Debug("pdftotext unavailable, trying text layer",
			slog.String("path", path), slog.Any("error", err))
	}

	if text, err := e.viaTextLayer(path); err == nil && strings.TrimSpace(text) != "" {
		return Extraction{Text: text, Engine: EngineTextLayer}, nil
	} else if err != nil {
		e.logger.Debug("text layer extraction failed, trying OCR",
			slog.String("path", path), slog.Any("error", err))
	}

	text, err := e.viaOCR(ctx, path)
	if err != nil {
		return Extraction{}, fmt.Errorf("extracting text from %s: %w", path, err)
	}
	return Extraction{Text: text, Engine: EngineOCR}, nil
}

// viaPDFToText shells out to pdftotext -layout, the most faithful
// renderer of the reports' column alignment.
func (e *Extractor) viaPDFToText(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not on PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	out, err := os.CreateTemp("", "roomboard-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating temp text file: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, out.Name())
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftotext: %w (%s)", err, strings.TrimSpace(string(output)))
	}

	data, err := os.ReadFile(out.Name())
	if err != nil {
		return "", fmt.Errorf("reading pdftotext output: %w", err)
	}
	return string(data), nil
}

// viaTextLayer reads the PDF's embedded text layer in-process.
func (e *Extractor) viaTextLayer(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("reading text buffer: %w", err)
	}
	return buf.String(), nil
}

// viaOCR runs tesseract against the file. Only useful for scanned
// reports; the output is markedly noisier than the text layer, which
// is why the engine is reported back to the caller.
func (e *Extractor) viaOCR(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not on PATH: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "tesseract", path, "stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
