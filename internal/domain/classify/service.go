package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoDocuments indicates that none of the three reports produced any
// text at all. Individually degraded documents are tolerated; a wholly
// empty run is not.
var ErrNoDocuments = errors.New("no usable text in any of the three documents")

// Source records which extraction engine produced a document's text.
// OCR output is noisier, so it gets the fallback token scan and is
// allowed to produce degenerate single-date stay records.
type Source int

const (
	SourcePDFText Source = iota
	SourceOCR
)

// Document is one report's extracted text as handed to the service.
// Text extraction itself (PDF text layer, OCR) happens upstream; an
// extraction failure shows up here as empty Text.
type Document struct {
	Name   string
	Text   string
	Source Source
}

func (d Document) scanMode() ScanMode {
	if d.Source == SourceOCR {
		return ModeAnchoredWithFallback
	}
	return ModeAnchored
}

// Input is one classification run: three named text blobs plus the
// schedule date string, validated before anything else runs.
type Input struct {
	ScheduleDate string
	ARR          Document
	DEP          Document
	GIH          Document
}

// Service runs the classification pipeline. It is stateless; a single
// instance is safe for concurrent use.
type Service struct {
	logger *slog.Logger
}

// NewService creates a classification service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Classify validates the schedule date, extracts rooms from the three
// documents (each degrading to empty on missing or unusable text),
// applies the business rule to the guests-in-house records, and merges
// everything into the final partition. Identical input always produces
// an identical result.
func (s *Service) Classify(ctx context.Context, in Input) (*Result, error) {
	date, err := ParseScheduleDate(in.ScheduleDate)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	arrLines := SplitLines(in.ARR.Text)
	depLines := SplitLines(in.DEP.Text)
	gihLines := SplitLines(in.GIH.Text)
	if len(arrLines) == 0 && len(depLines) == 0 && len(gihLines) == 0 {
		return nil, ErrNoDocuments
	}

	arrRooms := ExtractSimpleRooms(arrLines, in.ARR.scanMode())
	depRooms := ExtractSimpleRooms(depLines, in.DEP.scanMode())

	records := ExtractStayRecords(gihLines, in.GIH.scanMode(), in.GIH.Source != SourceOCR)
	gih := ClassifyStayRecords(records, date)

	result := Merge(date, arrRooms, depRooms, gih)
	result.Notes = s.buildNotes(in, arrRooms, depRooms, records, gih)

	s.logger.Info("classification complete",
		slog.String("schedule_date", string(date)),
		slog.Int("arr", len(result.ARR)),
		slog.Int("dep", len(result.DEP)),
		slog.Int("od", len(result.OD)),
	)
	return result, nil
}

func (s *Service) buildNotes(in Input, arrRooms, depRooms []RoomToken, records []StayRecord, gih GIHSplit) []string {
	notes := make([]string, 0, 3)

	if len(in.ARR.Text) == 0 {
		notes = append(notes, fmt.Sprintf("ARR: no text extracted from %s", docName(in.ARR, "arrivals report")))
	} else {
		notes = append(notes, fmt.Sprintf("ARR: %d rooms from %s", len(arrRooms), docName(in.ARR, "arrivals report")))
	}

	if len(in.DEP.Text) == 0 {
		notes = append(notes, fmt.Sprintf("DEP: no text extracted from %s", docName(in.DEP, "departures report")))
	} else {
		notes = append(notes, fmt.Sprintf("DEP: %d rooms from %s", len(depRooms), docName(in.DEP, "departures report")))
	}

	if len(in.GIH.Text) == 0 {
		notes = append(notes, fmt.Sprintf("GIH: no text extracted from %s", docName(in.GIH, "guests-in-house report")))
	} else {
		notes = append(notes, fmt.Sprintf("GIH: %d stay records, %d OD rooms, %d added to ARR from %s",
			len(records), len(gih.OD), len(gih.ARR), docName(in.GIH, "guests-in-house report")))
	}

	return notes
}

func docName(d Document, fallback string) string {
	if d.Name != "" {
		return d.Name
	}
	return fallback
}
