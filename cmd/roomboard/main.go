package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hotelops/roomboard/internal/domain/classify"
	"github.com/hotelops/roomboard/internal/domain/report"
	"github.com/hotelops/roomboard/pkg/config"
	"github.com/hotelops/roomboard/pkg/pdftext"
)

// roomboard is the one-shot batch runner: three report PDFs in, the
// classification JSON on stdout, and optionally a filled spreadsheet
// next to it.
func main() {
	var (
		arrPath  = flag.String("arr", "", "path to the arrivals report PDF")
		depPath  = flag.String("dep", "", "path to the departures report PDF")
		gihPath  = flag.String("gih", "", "path to the guests-in-house report PDF")
		date     = flag.String("date", "", "schedule date in DD-MM-YY form")
		template = flag.String("template", "", "house-status template to fill (optional)")
		outDir   = flag.String("out", ".", "directory for the generated spreadsheet")
		verbose  = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *arrPath, *depPath, *gihPath, *date, *template, *outDir); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, arrPath, depPath, gihPath, date, template, outDir string) error {
	if _, err := classify.ParseScheduleDate(date); err != nil {
		return err
	}

	ctx := context.Background()
	extractor := pdftext.NewExtractor(logger)

	in := classify.Input{
		ScheduleDate: date,
		ARR:          loadDocument(ctx, logger, extractor, "ARR", arrPath),
		DEP:          loadDocument(ctx, logger, extractor, "DEP", depPath),
		GIH:          loadDocument(ctx, logger, extractor, "GIH", gihPath),
	}

	res, err := classify.NewService(logger).Classify(ctx, in)
	if err != nil {
		return err
	}

	if template != "" {
		tplCfg := config.DefaultTemplateConfig()
		tplCfg.Path = template
		projector := report.NewProjector(tplCfg, logger)

		outPath := filepath.Join(outDir, fmt.Sprintf("house_status_%s.xlsx", res.ScheduleDate))
		unmatched, err := projector.Project(res, outPath)
		if err != nil {
			// A broken template must not swallow the classification.
			res.Notes = append(res.Notes, fmt.Sprintf("Report generation failed: %v", err))
		} else {
			res.Notes = append(res.Notes, fmt.Sprintf("Sheet written to %s", outPath))
			if len(unmatched) > 0 {
				res.Notes = append(res.Notes, fmt.Sprintf("%d room(s) not on sheet", len(unmatched)))
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// loadDocument extracts one report's text. Missing or unreadable files
// degrade to an empty document so the other reports still run.
func loadDocument(ctx context.Context, logger *slog.Logger, extractor *pdftext.Extractor, name, path string) classify.Document {
	doc := classify.Document{Name: name}
	if path == "" {
		return doc
	}

	ext, err := extractor.ExtractFile(ctx, path)
	if err != nil {
		logger.Warn("text extraction failed", "document", name, "path", path, "error", err)
		return doc
	}

	doc.Text = ext.Text
	if ext.Engine == pdftext.EngineOCR {
		doc.Source = classify.SourceOCR
	}
	return doc
}
