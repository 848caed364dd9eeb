// Package export writes packing results to metadata and report formats.
package export

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/spritepack/internal/model"
)

// frameColor represents an RGB color for a placed frame.
type frameColor struct {
	R, G, B int
}

// frameColors is cycled by frame index so the same frame keeps its color
// across the layout page and the legend.
var frameColors = []frameColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(index int) frameColor {
	if index < 0 {
		index = -index
	}
	return frameColors[index%len(frameColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0

	// maxTrialRows caps the trial table on the summary page.
	maxTrialRows = 18
)

// ExportPDF generates a layout report: one page with the sheet outline and
// every placed frame, followed by a summary page with the search trials.
// When preview is non-nil the composed sheet is drawn beneath the outlines.
func ExportPDF(path string, sheet model.Sheet, settings model.PackSettings, preview image.Image) error {
	if len(sheet.Placements) == 0 {
		return fmt.Errorf("no frames to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	if err := renderLayoutPage(pdf, sheet, preview); err != nil {
		return err
	}

	pdf.AddPage()
	renderSummaryPage(pdf, sheet, settings)

	return pdf.OutputFileAndClose(path)
}

// renderLayoutPage draws the packed sheet on the current PDF page.
func renderLayoutPage(pdf *fpdf.Fpdf, sheet model.Sheet, preview image.Image) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Sprite sheet (%d x %d px)", sheet.Width, sheet.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Frames: %d | Used area: %d px | Sheet area: %d px | Efficiency: %.1f%%",
		len(sheet.Placements), sheet.UsedArea(), sheet.Area(), sheet.Efficiency())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/float64(sheet.Width), drawHeight/float64(sheet.Height))
	canvasW := float64(sheet.Width) * scale
	canvasH := float64(sheet.Height) * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Checkerboard-ish grey stands for transparency.
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	if preview != nil {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, preview, imaging.PNG); err != nil {
			return fmt.Errorf("failed to encode sheet preview: %w", err)
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("sheet-preview", opts, &buf)
		pdf.ImageOptions("sheet-preview", offsetX, offsetY, canvasW, canvasH, false, opts, 0, "")
	}

	for _, p := range sheet.Placements {
		pw := float64(p.Frame.Width) * scale
		ph := float64(p.Frame.Height) * scale
		px := offsetX + float64(p.X)*scale
		py := offsetY + float64(p.Y)*scale

		col := colorFor(p.Frame.Index)
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.3)
		if preview == nil {
			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.Rect(px, py, pw, ph, "FD")
		} else {
			pdf.Rect(px, py, pw, ph, "D")
		}

		drawAnchorMark(pdf, p, scale, offsetX, offsetY)

		if pw > 8 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := fmt.Sprintf("%d", p.Frame.Index)
			labelW := pdf.GetStringWidth(label)
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, sheet, offsetX, offsetY, canvasW, canvasH)
	drawFramesLegend(pdf, sheet, offsetY+canvasH+5)
	return nil
}

// drawAnchorMark draws a small cross at the frame's anchor when it lies
// inside the frame.
func drawAnchorMark(pdf *fpdf.Fpdf, p model.Placement, scale, offsetX, offsetY float64) {
	a := p.Frame.Anchor
	if a.X < 0 || a.Y < 0 || a.X > float64(p.Frame.Width) || a.Y > float64(p.Frame.Height) {
		return
	}
	cx := offsetX + (float64(p.X)+a.X)*scale
	cy := offsetY + (float64(p.Y)+a.Y)*scale
	const arm = 1.0

	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)
	pdf.Line(cx-arm, cy, cx+arm, cy)
	pdf.Line(cx, cy-arm, cx, cy+arm)
}

// drawDimensionAnnotations adds width and height labels outside the sheet rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, sheet model.Sheet, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d px", sheet.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d px", sheet.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawFramesLegend renders a compact legend of placed frames in index order.
func drawFramesLegend(pdf *fpdf.Fpdf, sheet model.Sheet, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Frames placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, p := range sheet.ByIndex() {
		if startY > pageHeight-marginBottom {
			break
		}
		col := colorFor(p.Frame.Index)
		label := fmt.Sprintf("#%d (%dx%d)", p.Frame.Index, p.Frame.Width, p.Frame.Height)
		if p.Frame.Degenerate {
			label += " empty"
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the statistics, search settings and trial table.
func renderSummaryPage(pdf *fpdf.Fpdf, sheet model.Sheet, settings model.PackSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	converged := "yes"
	if !sheet.Converged {
		converged = "no (height ceiling reached)"
	}
	maxHeight := "unbounded"
	if settings.MaxHeight > 0 {
		maxHeight = fmt.Sprintf("%d px", settings.MaxHeight)
	}

	y = renderKeyValues(pdf, "Overall Statistics", y, []keyValue{
		{"Sheet Size", fmt.Sprintf("%d x %d px", sheet.Width, sheet.Height)},
		{"Frames", fmt.Sprintf("%d", len(sheet.Placements))},
		{"Efficiency", fmt.Sprintf("%.1f%%", sheet.Efficiency())},
		{"Heights Tried", fmt.Sprintf("%d", len(sheet.Trials))},
		{"Converged", converged},
	})
	y += 5
	y = renderKeyValues(pdf, "Search Settings", y, []keyValue{
		{"Minimum Height", fmt.Sprintf("%d px", settings.MinHeight)},
		{"Maximum Height", maxHeight},
		{"Height Step", fmt.Sprintf("%d px", settings.Step())},
		{"Workers", fmt.Sprintf("%d", max(settings.Workers, 1))},
	})
	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Height Trials", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 40, 40, 50}
	headers := []string{"#", "Height", "Used Width", "Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, t := range sheet.Trials {
		if i == maxTrialRows {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(150, 6, fmt.Sprintf("... %d more", len(sheet.Trials)-maxTrialRows), "", 0, "L", false, 0, "")
			break
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", t.Height),
			fmt.Sprintf("%d", t.Width),
			fmt.Sprintf("%d", t.Area()),
		}

		// Highlight the chosen height.
		switch {
		case t.Height == sheet.Height:
			pdf.SetFillColor(200, 230, 201)
		case i%2 == 0:
			pdf.SetFillColor(245, 245, 245)
		default:
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by spritepack", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

type keyValue struct {
	label string
	value string
}

func renderKeyValues(pdf *fpdf.Fpdf, title string, y float64, items []keyValue) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	y += 9

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	return y
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
