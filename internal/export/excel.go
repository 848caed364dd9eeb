package export

import (
	"fmt"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names and the frame table header. The importer recognizes
// these headers when reading a workbook back.
const (
	FramesSheet = "Frames"
	TrialsSheet = "Trials"
)

var frameHeaders = []interface{}{"Index", "X", "Y", "Width", "Height", "Anchor X", "Anchor Y"}

// ExportExcel writes the metadata records to a workbook with a Frames sheet
// (one row per frame, ascending index) and a Trials sheet listing every
// height the search explored.
func ExportExcel(path string, sheet model.Sheet) error {
	if len(sheet.Placements) == 0 {
		return fmt.Errorf("no frames to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", FramesSheet); err != nil {
		return fmt.Errorf("failed to name frames sheet: %w", err)
	}
	if err := f.SetSheetRow(FramesSheet, "A1", &frameHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, r := range sheet.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Index, r.X, r.Y, r.Width, r.Height, r.AnchorX, r.AnchorY}
		if err := f.SetSheetRow(FramesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", r.Index, err)
		}
	}

	if _, err := f.NewSheet(TrialsSheet); err != nil {
		return fmt.Errorf("failed to create trials sheet: %w", err)
	}
	header := []interface{}{"Height", "Used Width", "Area", "Chosen"}
	if err := f.SetSheetRow(TrialsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write trials header: %w", err)
	}
	for i, t := range sheet.Trials {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{t.Height, t.Width, t.Area(), t.Height == sheet.Height}
		if err := f.SetSheetRow(TrialsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write trial %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
