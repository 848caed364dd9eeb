package export

import (
	"fmt"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layer names.
const (
	LayerSheet   = "SHEET"
	LayerFrames  = "FRAMES"
	LayerAnchors = "ANCHORS"
)

// anchorArm is the half length of an anchor cross in pixels.
const anchorArm = 2.0

// ExportDXF writes the sheet layout as a DXF drawing in pixel units: the
// sheet outline, one rectangle per frame and a cross at each anchor that
// lies inside its frame. DXF's Y axis points up, so rows are flipped.
func ExportDXF(path string, sheet model.Sheet) error {
	if len(sheet.Placements) == 0 {
		return fmt.Errorf("no frames to export")
	}

	d := dxf.NewDrawing()
	flip := func(y float64) float64 { return float64(sheet.Height) - y }

	if err := addLayer(d, LayerSheet, color.White); err != nil {
		return err
	}
	if err := rect(d, 0, 0, float64(sheet.Width), float64(sheet.Height), flip); err != nil {
		return err
	}

	if err := addLayer(d, LayerFrames, color.Cyan); err != nil {
		return err
	}
	for _, p := range sheet.ByIndex() {
		if err := rect(d, float64(p.X), float64(p.Y), float64(p.Frame.Width), float64(p.Frame.Height), flip); err != nil {
			return fmt.Errorf("frame %d: %w", p.Frame.Index, err)
		}
	}

	if err := addLayer(d, LayerAnchors, color.Red); err != nil {
		return err
	}
	for _, p := range sheet.ByIndex() {
		a := p.Frame.Anchor
		if a.X < 0 || a.Y < 0 || a.X > float64(p.Frame.Width) || a.Y > float64(p.Frame.Height) {
			continue
		}
		cx, cy := float64(p.X)+a.X, flip(float64(p.Y)+a.Y)
		if _, err := d.Line(cx-anchorArm, cy, 0, cx+anchorArm, cy, 0); err != nil {
			return fmt.Errorf("frame %d anchor: %w", p.Frame.Index, err)
		}
		if _, err := d.Line(cx, cy-anchorArm, 0, cx, cy+anchorArm, 0); err != nil {
			return fmt.Errorf("frame %d anchor: %w", p.Frame.Index, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

func addLayer(d *drawing.Drawing, name string, c color.ColorNumber) error {
	if _, err := d.AddLayer(name, c, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", name, err)
	}
	return nil
}

// rect draws an axis-aligned rectangle given in sheet coordinates.
func rect(d *drawing.Drawing, x, y, w, h float64, flip func(float64) float64) error {
	x0, y0 := x, flip(y)
	x1, y1 := x+w, flip(y+h)
	corners := [][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return err
		}
	}
	return nil
}
