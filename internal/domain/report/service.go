package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hotelops/roomboard/internal/domain/classify"
	"github.com/hotelops/roomboard/pkg/storage"
)

// Service produces the downloadable artifacts for a classification
// result: the filled spreadsheet and, when rendering is enabled, a PNG
// snapshot of it.
type Service struct {
	projector *Projector
	renderer  *Renderer
	store     storage.Storage
	logger    *slog.Logger
}

// NewService wires the report pipeline. renderer may be nil, in which
// case only the spreadsheet is produced.
func NewService(projector *Projector, renderer *Renderer, store storage.Storage, logger *slog.Logger) *Service {
	return &Service{projector: projector, renderer: renderer, store: store, logger: logger}
}

// Output holds the stored artifacts for one generation pass.
type Output struct {
	Sheet *storage.FileInfo `json:"sheet"`
	Image *storage.FileInfo `json:"image,omitempty"`
	Notes []string          `json:"notes,omitempty"`
}

// Generate projects the result onto the template and stores the
// artifacts. A failed image render is reported in the notes instead of
// failing the whole request; the classification already succeeded and
// the sheet is still usable.
func (s *Service) Generate(ctx context.Context, res *classify.Result) (*Output, error) {
	tmpDir, err := os.MkdirTemp("", "roomboard-report-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	sheetName := fmt.Sprintf("house_status_%s.xlsx", res.ScheduleDate)
	sheetPath := filepath.Join(tmpDir, sheetName)

	unmatched, err := s.projector.Project(res, sheetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to project result: %w", err)
	}

	out := &Output{}
	if len(unmatched) > 0 {
		out.Notes = append(out.Notes, fmt.Sprintf("Rooms not on sheet: %s", joinRooms(unmatched)))
	}

	out.Sheet, err = s.storeFile(ctx, sheetPath, sheetName,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err != nil {
		return nil, err
	}

	if s.renderer != nil {
		imageName := fmt.Sprintf("house_status_%s.png", res.ScheduleDate)
		imagePath := filepath.Join(tmpDir, imageName)
		if err := s.renderer.Render(ctx, sheetPath, imagePath); err != nil {
			s.logger.Error("image render failed", "error", err)
			out.Notes = append(out.Notes, fmt.Sprintf("Image render failed: %v", err))
		} else {
			out.Image, err = s.storeFile(ctx, imagePath, imageName, "image/png")
			if err != nil {
				s.logger.Error("failed to store rendered image", "error", err)
				out.Notes = append(out.Notes, fmt.Sprintf("Image render failed: %v", err))
				out.Image = nil
			}
		}
	}

	return out, nil
}

func (s *Service) storeFile(ctx context.Context, path, name, contentType string) (*storage.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := s.store.Save(ctx, name, contentType, f)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", name, err)
	}
	return info, nil
}

func joinRooms(rooms []classify.RoomToken) string {
	parts := make([]string, len(rooms))
	for i, r := range rooms {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
