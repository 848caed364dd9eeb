package export

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/spritepack/internal/model"
)

// buildTestSheet creates a small packed sheet for testing. Placements are in
// packing order (tallest first), not index order.
func buildTestSheet() model.Sheet {
	return model.Sheet{
		Width:  33,
		Height: 20,
		Placements: []model.Placement{
			{Frame: model.Frame{ID: "f0", Index: 0, Width: 10, Height: 20, Anchor: model.Anchor{X: 5, Y: 10}}, X: 0, Y: 0},
			{Frame: model.Frame{ID: "f2", Index: 2, Width: 15, Height: 15, Anchor: model.Anchor{X: 12.5, Y: 32}}, X: 10, Y: 0},
			{Frame: model.Frame{ID: "f1", Index: 1, Width: 8, Height: 8, Anchor: model.Anchor{X: -3, Y: 4}}, X: 25, Y: 0},
		},
		Trials: []model.Trial{
			{Height: 20, Width: 33},
			{Height: 30, Width: 25},
			{Height: 40, Width: 15},
		},
		Converged: true,
	}
}

func assertNonEmptyFile(t *testing.T, path string, minSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file was not created: %v", err)
	}
	if info.Size() < minSize {
		t.Errorf("file seems too small: %d bytes", info.Size())
	}
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")

	if err := ExportPDF(path, buildTestSheet(), model.DefaultSettings(), nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}

func TestExportPDF_WithPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.pdf")
	sheet := buildTestSheet()

	preview := image.NewNRGBA(image.Rect(0, 0, sheet.Width, sheet.Height))
	for _, p := range sheet.Placements {
		r := p.Rect()
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				preview.SetNRGBA(x, y, color.NRGBA{R: 120, G: 60, B: 200, A: 255})
			}
		}
	}

	if err := ExportPDF(path, sheet, model.DefaultSettings(), preview); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}

func TestExportPDF_NotConvergedManyTrials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.pdf")
	sheet := buildTestSheet()
	sheet.Converged = false
	for h := 50; h < 400; h += 10 {
		sheet.Trials = append(sheet.Trials, model.Trial{Height: h, Width: 15})
	}
	settings := model.DefaultSettings()
	settings.MaxHeight = 400

	if err := ExportPDF(path, sheet, settings, nil); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	assertNonEmptyFile(t, path, 500)
}

func TestExportPDF_EmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	if err := ExportPDF(path, model.Sheet{}, model.DefaultSettings(), nil); err == nil {
		t.Fatal("expected error for empty sheet, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty sheet")
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 50, 8},
		{30, 25, 7},
		{10, 60, 6},
	}
	for _, tt := range tests {
		if got := labelFontSize(tt.w, tt.h); got != tt.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestColorForIsStable(t *testing.T) {
	if colorFor(3) != colorFor(3+len(frameColors)) {
		t.Error("colors should cycle by frame index")
	}
	if colorFor(-1) != colorFor(1) {
		t.Error("negative indices should not panic and should map to a palette color")
	}
}
