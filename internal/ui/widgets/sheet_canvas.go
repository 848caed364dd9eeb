package widgets

import (
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/spritepack/internal/model"
)

// Frame outline colors, cycled by frame index.
var frameColors = []color.NRGBA{
	{R: 76, G: 175, B: 80, A: 255},
	{R: 33, G: 150, B: 243, A: 255},
	{R: 255, G: 152, B: 0, A: 255},
	{R: 156, G: 39, B: 176, A: 255},
	{R: 0, G: 188, B: 212, A: 255},
	{R: 244, G: 67, B: 54, A: 255},
	{R: 255, G: 235, B: 59, A: 255},
	{R: 121, G: 85, B: 72, A: 255},
}

// checker colors behind the transparent sheet pixels.
var (
	checkerLight = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	checkerDark  = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
)

// SheetCanvas draws a packed sheet scaled to fit a bounding box: the
// composed pixels when available, an outline per frame and its anchor.
type SheetCanvas struct {
	widget.BaseWidget
	sheet     model.Sheet
	pixels    image.Image
	maxWidth  float32
	maxHeight float32
}

// NewSheetCanvas creates a preview of sheet. pixels may be nil.
func NewSheetCanvas(sheet model.Sheet, pixels image.Image, maxW, maxH float32) *SheetCanvas {
	sc := &SheetCanvas{
		sheet:     sheet,
		pixels:    pixels,
		maxWidth:  maxW,
		maxHeight: maxH,
	}
	sc.ExtendBaseWidget(sc)
	return sc
}

func (sc *SheetCanvas) CreateRenderer() fyne.WidgetRenderer {
	return newSheetCanvasRenderer(sc)
}

// FitScale returns the factor that fits a w x h sheet inside maxW x maxH
// without enlarging it beyond 4x.
func FitScale(w, h int, maxW, maxH float32) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	scale := min(maxW/float32(w), maxH/float32(h))
	return min(scale, 4)
}

type sheetCanvasRenderer struct {
	sc      *SheetCanvas
	objects []fyne.CanvasObject
}

func newSheetCanvasRenderer(sc *SheetCanvas) *sheetCanvasRenderer {
	r := &sheetCanvasRenderer{sc: sc}
	r.rebuild()
	return r
}

func (r *sheetCanvasRenderer) rebuild() {
	r.objects = nil

	sheet := r.sc.sheet
	scale := FitScale(sheet.Width, sheet.Height, r.sc.maxWidth, r.sc.maxHeight)
	canvasW := float32(sheet.Width) * scale
	canvasH := float32(sheet.Height) * scale

	bg := canvas.NewRasterWithPixels(func(x, y, w, h int) color.Color {
		if (x/8+y/8)%2 == 0 {
			return checkerLight
		}
		return checkerDark
	})
	bg.Resize(fyne.NewSize(canvasW, canvasH))
	r.objects = append(r.objects, bg)

	if r.sc.pixels != nil {
		img := canvas.NewImageFromImage(r.sc.pixels)
		img.FillMode = canvas.ImageFillStretch
		img.ScaleMode = canvas.ImageScalePixels
		img.Resize(fyne.NewSize(canvasW, canvasH))
		r.objects = append(r.objects, img)
	}

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	border.StrokeWidth = 2
	border.Resize(fyne.NewSize(canvasW, canvasH))
	r.objects = append(r.objects, border)

	for _, p := range sheet.Placements {
		col := frameColors[p.Frame.Index%len(frameColors)]
		fw := float32(p.Frame.Width) * scale
		fh := float32(p.Frame.Height) * scale
		fx := float32(p.X) * scale
		fy := float32(p.Y) * scale

		outline := canvas.NewRectangle(color.Transparent)
		outline.StrokeColor = col
		outline.StrokeWidth = 1
		outline.Resize(fyne.NewSize(fw, fh))
		outline.Move(fyne.NewPos(fx, fy))
		r.objects = append(r.objects, outline)

		a := p.Frame.Anchor
		if a.X >= 0 && a.Y >= 0 && a.X <= float64(p.Frame.Width) && a.Y <= float64(p.Frame.Height) {
			ax := fx + float32(a.X)*scale
			ay := fy + float32(a.Y)*scale
			h := canvas.NewLine(col)
			h.Position1 = fyne.NewPos(ax-3, ay)
			h.Position2 = fyne.NewPos(ax+3, ay)
			v := canvas.NewLine(col)
			v.Position1 = fyne.NewPos(ax, ay-3)
			v.Position2 = fyne.NewPos(ax, ay+3)
			r.objects = append(r.objects, h, v)
		}

		if fw > 24 && fh > 14 {
			label := canvas.NewText(fmt.Sprintf("%d", p.Frame.Index), col)
			label.TextSize = 10
			label.Move(fyne.NewPos(fx+2, fy+1))
			r.objects = append(r.objects, label)
		}
	}
}

func (r *sheetCanvasRenderer) Layout(size fyne.Size)        {}
func (r *sheetCanvasRenderer) Refresh()                     { r.rebuild() }
func (r *sheetCanvasRenderer) Destroy()                     {}
func (r *sheetCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *sheetCanvasRenderer) MinSize() fyne.Size {
	sheet := r.sc.sheet
	scale := FitScale(sheet.Width, sheet.Height, r.sc.maxWidth, r.sc.maxHeight)
	return fyne.NewSize(float32(sheet.Width)*scale, float32(sheet.Height)*scale)
}

// RenderSheetResult creates a scrollable summary of a finished conversion.
func RenderSheetResult(sheet model.Sheet, pixels image.Image, files []string) fyne.CanvasObject {
	if len(sheet.Placements) == 0 {
		return widget.NewLabel("No sheet yet. Select a frame of a sequence, then click Convert.")
	}

	header := widget.NewLabel(fmt.Sprintf(
		"Sheet %d x %d: %d frames, %.1f%% used, %d heights tried",
		sheet.Width, sheet.Height, len(sheet.Placements), sheet.Efficiency(), len(sheet.Trials),
	))
	header.TextStyle = fyne.TextStyle{Bold: true}

	items := []fyne.CanvasObject{header, NewSheetCanvas(sheet, pixels, 640, 420)}

	if !sheet.Converged {
		warning := widget.NewLabel("The height ceiling was reached before the sheet narrowed to the widest frame.")
		warning.Importance = widget.WarningImportance
		items = append(items, warning)
	}

	if len(files) > 0 {
		items = append(items, widget.NewSeparator())
		filesHeader := widget.NewLabel("Written:")
		filesHeader.TextStyle = fyne.TextStyle{Bold: true}
		items = append(items, filesHeader)
		for _, f := range files {
			items = append(items, widget.NewLabel("  "+f))
		}
	}

	return container.NewVScroll(container.NewVBox(items...))
}
