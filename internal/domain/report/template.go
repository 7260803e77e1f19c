package report

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hotelops/roomboard/internal/domain/classify"
	"github.com/hotelops/roomboard/pkg/config"
)

// Projector writes a classification result onto the house-status
// worksheet. The sheet lays rooms out in repeating four-column groups
// (Room, OD, DO, ARR) detected from the header row, with totals in a
// fixed row below the room grid.
type Projector struct {
	cfg    config.TemplateConfig
	logger *slog.Logger
}

func NewProjector(cfg config.TemplateConfig, logger *slog.Logger) *Projector {
	return &Projector{cfg: cfg, logger: logger}
}

// columnGroup holds the 1-based column indexes of one Room/OD/DO/ARR
// block on the sheet.
type columnGroup struct {
	room int
	od   int
	do   int
	arr  int
}

// cellRef locates the row and column group a physical room lives in.
type cellRef struct {
	row   int
	group columnGroup
}

// Project fills the template with the given result and saves it to
// outPath. Rooms that do not appear on the sheet are returned so the
// caller can surface them in the processing notes.
func (p *Projector) Project(res *classify.Result, outPath string) ([]classify.RoomToken, error) {
	f, err := excelize.OpenFile(p.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", p.cfg.Path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("template %s has no worksheets", p.cfg.Path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	groups, err := p.detectGroups(rows)
	if err != nil {
		return nil, err
	}

	index := p.indexRooms(rows, groups)

	if err := p.updateDate(f, sheet, rows, res.ScheduleDate); err != nil {
		return nil, err
	}

	var unmatched []classify.RoomToken
	mark := func(rooms []classify.RoomToken, col func(columnGroup) int) error {
		for _, room := range rooms {
			n, ok := room.Normalize()
			if !ok {
				unmatched = append(unmatched, room)
				continue
			}
			ref, ok := index[n]
			if !ok {
				unmatched = append(unmatched, room)
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col(ref.group), ref.row)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, "X"); err != nil {
				return fmt.Errorf("failed to mark cell %s: %w", cell, err)
			}
		}
		return nil
	}

	if err := mark(res.ARR, func(g columnGroup) int { return g.arr }); err != nil {
		return nil, err
	}
	if err := mark(res.DEP, func(g columnGroup) int { return g.do }); err != nil {
		return nil, err
	}
	if err := mark(res.OD, func(g columnGroup) int { return g.od }); err != nil {
		return nil, err
	}

	if err := p.writeTotals(f, sheet, res); err != nil {
		return nil, err
	}

	if err := f.SaveAs(outPath); err != nil {
		return nil, fmt.Errorf("failed to save sheet to %s: %w", outPath, err)
	}

	p.logger.Info("projected result onto sheet",
		"out", outPath,
		"arr", len(res.ARR),
		"dep", len(res.DEP),
		"od", len(res.OD),
		"unmatched", len(unmatched))

	return unmatched, nil
}

// detectGroups scans the header row for every "Room" column and
// verifies the three status columns that follow it.
func (p *Projector) detectGroups(rows [][]string) ([]columnGroup, error) {
	if len(rows) < p.cfg.HeaderRow {
		return nil, fmt.Errorf("template has %d rows, header expected at row %d", len(rows), p.cfg.HeaderRow)
	}
	header := rows[p.cfg.HeaderRow-1]

	var groups []columnGroup
	for i := 0; i < len(header); i++ {
		if !strings.EqualFold(strings.TrimSpace(header[i]), "Room") {
			continue
		}
		if i+3 >= len(header) {
			break
		}
		g := columnGroup{room: i + 1, od: i + 2, do: i + 3, arr: i + 4}
		if !headerContains(header[i+1], "OD") || !headerContains(header[i+2], "DO") || !headerContains(header[i+3], "ARR") {
			continue
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no Room/OD/DO/ARR column groups found in header row %d", p.cfg.HeaderRow)
	}
	return groups, nil
}

func headerContains(cell, label string) bool {
	return strings.Contains(strings.ToUpper(strings.TrimSpace(cell)), label)
}

// indexRooms maps every room number printed on the sheet to its row
// and column group. Room cells are matched by normalized number so
// "0211" on the sheet matches a scanned "211" and vice versa.
func (p *Projector) indexRooms(rows [][]string, groups []columnGroup) map[int]cellRef {
	index := make(map[int]cellRef)
	for rowIdx := p.cfg.DataStartRow - 1; rowIdx < len(rows) && rowIdx < p.cfg.TotalsRow-1; rowIdx++ {
		row := rows[rowIdx]
		for _, g := range groups {
			if g.room-1 >= len(row) {
				continue
			}
			token := classify.RoomToken(strings.TrimSpace(row[g.room-1]))
			n, ok := token.Normalize()
			if !ok {
				continue
			}
			if _, exists := index[n]; !exists {
				index[n] = cellRef{row: rowIdx + 1, group: g}
			}
		}
	}
	return index
}

// updateDate rewrites the "Date:" label cell with the schedule date in
// the sheet's DD/MM/YYYY display format.
func (p *Projector) updateDate(f *excelize.File, sheet string, rows [][]string, date classify.ScheduleDate) error {
	display, err := formatDisplayDate(date)
	if err != nil {
		return err
	}
	for rowIdx := 0; rowIdx < p.cfg.HeaderRow-1 && rowIdx < len(rows); rowIdx++ {
		for colIdx, cell := range rows[rowIdx] {
			if !strings.Contains(cell, "Date") {
				continue
			}
			name, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return fmt.Errorf("failed to build cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, name, "Date: "+display); err != nil {
				return fmt.Errorf("failed to update date cell: %w", err)
			}
			return nil
		}
	}
	// Templates without a date label still produce a valid sheet.
	p.logger.Warn("no Date label found above header row", "template", p.cfg.Path)
	return nil
}

// formatDisplayDate converts DD-MM-YY to DD/MM/YYYY. Two-digit years
// are always this century on a forward-looking schedule.
func formatDisplayDate(date classify.ScheduleDate) (string, error) {
	parts := strings.Split(string(date), "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("unexpected schedule date %q", date)
	}
	return fmt.Sprintf("%s/%s/20%s", parts[0], parts[1], parts[2]), nil
}

// writeTotals fills the EA/DO/OD total cells. Manual totals take
// precedence over the computed list sizes.
func (p *Projector) writeTotals(f *excelize.File, sheet string, res *classify.Result) error {
	ea, do, od := len(res.ARR), len(res.DEP), len(res.OD)
	if res.Totals.EA != nil {
		ea = *res.Totals.EA
	}
	if res.Totals.DO != nil {
		do = *res.Totals.DO
	}
	if res.Totals.OD != nil {
		od = *res.Totals.OD
	}

	for _, t := range []struct {
		col   int
		value int
	}{
		{p.cfg.EATotalCol, ea},
		{p.cfg.DOTotalCol, do},
		{p.cfg.ODTotalCol, od},
	} {
		cell, err := excelize.CoordinatesToCellName(t.col, p.cfg.TotalsRow)
		if err != nil {
			return fmt.Errorf("failed to build totals cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, t.value); err != nil {
			return fmt.Errorf("failed to write total at %s: %w", cell, err)
		}
	}
	return nil
}
