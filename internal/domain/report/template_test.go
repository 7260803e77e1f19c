package report

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hotelops/roomboard/internal/domain/classify"
	"github.com/hotelops/roomboard/pkg/config"
)

func testTemplateConfig(path string) config.TemplateConfig {
	return config.TemplateConfig{
		Path:         path,
		HeaderRow:    4,
		DataStartRow: 5,
		TotalsRow:    38,
		EATotalCol:   7,
		DOTotalCol:   9,
		ODTotalCol:   11,
	}
}

// buildTemplate writes a minimal house-status sheet with two
// Room/OD/DO/ARR column groups and a Date label.
func buildTemplate(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A2", "Date: 01/01/2024"))

	for cell, v := range map[string]string{
		"A4": "Room", "B4": "OD", "C4": "DO", "D4": "ARR",
		"F4": "Room", "G4": "OD", "H4": "DO", "I4": "ARR",
	} {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}

	for cell, v := range map[string]string{
		"A5": "0211", "A6": "101", "A7": "102",
		"F5": "310", "F6": "205",
	} {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}

	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func testProjector(t *testing.T) (*Projector, string) {
	t.Helper()
	path := buildTemplate(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProjector(testTemplateConfig(path), logger), path
}

func cellValue(t *testing.T, path, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(f.GetSheetName(0), cell)
	require.NoError(t, err)
	return v
}

func TestProjector_Project(t *testing.T) {
	t.Run("marks rooms in the right status columns", func(t *testing.T) {
		p, _ := testProjector(t)
		out := filepath.Join(t.TempDir(), "out.xlsx")

		res := &classify.Result{
			ScheduleDate: "15-08-25",
			ARR:          []classify.RoomToken{"211"},
			DEP:          []classify.RoomToken{"101"},
			OD:           []classify.RoomToken{"310"},
		}

		unmatched, err := p.Project(res, out)
		require.NoError(t, err)
		assert.Empty(t, unmatched)

		// Room 211 matches the "0211" cell in the first group.
		assert.Equal(t, "X", cellValue(t, out, "D5"))
		assert.Equal(t, "X", cellValue(t, out, "C6"))
		assert.Equal(t, "X", cellValue(t, out, "G5"))
	})

	t.Run("writes computed totals", func(t *testing.T) {
		p, _ := testProjector(t)
		out := filepath.Join(t.TempDir(), "out.xlsx")

		res := &classify.Result{
			ScheduleDate: "15-08-25",
			ARR:          []classify.RoomToken{"101", "102"},
			DEP:          []classify.RoomToken{"205"},
			OD:           []classify.RoomToken{"211", "310"},
		}

		_, err := p.Project(res, out)
		require.NoError(t, err)

		assert.Equal(t, "2", cellValue(t, out, "G38"))
		assert.Equal(t, "1", cellValue(t, out, "I38"))
		assert.Equal(t, "2", cellValue(t, out, "K38"))
	})

	t.Run("manual totals override computed counts", func(t *testing.T) {
		p, _ := testProjector(t)
		out := filepath.Join(t.TempDir(), "out.xlsx")

		ea := 12
		res := &classify.Result{
			ScheduleDate: "15-08-25",
			ARR:          []classify.RoomToken{"101"},
			Totals:       classify.ManualTotals{EA: &ea},
		}

		_, err := p.Project(res, out)
		require.NoError(t, err)

		assert.Equal(t, "12", cellValue(t, out, "G38"))
		assert.Equal(t, "0", cellValue(t, out, "I38"))
	})

	t.Run("updates the date label", func(t *testing.T) {
		p, _ := testProjector(t)
		out := filepath.Join(t.TempDir(), "out.xlsx")

		res := &classify.Result{ScheduleDate: "15-08-25"}
		_, err := p.Project(res, out)
		require.NoError(t, err)

		assert.Equal(t, "Date: 15/08/2025", cellValue(t, out, "A2"))
	})

	t.Run("rooms missing from the sheet are reported", func(t *testing.T) {
		p, _ := testProjector(t)
		out := filepath.Join(t.TempDir(), "out.xlsx")

		res := &classify.Result{
			ScheduleDate: "15-08-25",
			ARR:          []classify.RoomToken{"101", "999"},
		}

		unmatched, err := p.Project(res, out)
		require.NoError(t, err)
		assert.Equal(t, []classify.RoomToken{"999"}, unmatched)
		assert.Equal(t, "X", cellValue(t, out, "D6"))
	})

	t.Run("template without header groups fails", func(t *testing.T) {
		f := excelize.NewFile()
		path := filepath.Join(t.TempDir(), "bad.xlsx")
		require.NoError(t, f.SaveAs(path))
		require.NoError(t, f.Close())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		p := NewProjector(testTemplateConfig(path), logger)

		_, err := p.Project(&classify.Result{ScheduleDate: "15-08-25"}, filepath.Join(t.TempDir(), "out.xlsx"))
		assert.Error(t, err)
	})
}

func TestCropWhitespace(t *testing.T) {
	t.Run("trims margins around content", func(t *testing.T) {
		img := newTestPage(200, 200)
		// Single dark pixel in the middle.
		img.Set(100, 100, blackPixel())

		out := cropWhitespace(img, 20)
		assert.Equal(t, 41, out.Bounds().Dx())
		assert.Equal(t, 41, out.Bounds().Dy())
	})

	t.Run("blank page is returned unchanged", func(t *testing.T) {
		img := newTestPage(50, 50)
		out := cropWhitespace(img, 20)
		assert.Equal(t, img.Bounds(), out.Bounds())
	})
}
