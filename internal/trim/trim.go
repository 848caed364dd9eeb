package trim

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/spritepack/internal/model"
)

// Bounds returns the smallest rectangle, in img's coordinate space, that
// contains every pixel with a non-zero alpha. It returns false when img is
// fully transparent.
func Bounds(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	mark := func(x, y int) {
		minX = min(minX, x)
		maxX = max(maxX, x)
		minY = min(minY, y)
		maxY = max(maxY, y)
	}

	switch src := img.(type) {
	case *image.NRGBA:
		scanPix(src.Pix, src.Stride, b, mark)
	case *image.RGBA:
		scanPix(src.Pix, src.Stride, b, mark)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
					mark(x, y)
				}
			}
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// scanPix walks 4-byte-per-pixel buffers whose alpha is the last byte.
func scanPix(pix []uint8, stride int, b image.Rectangle, mark func(x, y int)) {
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := pix[(y-b.Min.Y)*stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[(x-b.Min.X)*4+3] != 0 {
				mark(x, y)
			}
		}
	}
}

// Trim crops the transparent border from img and returns the frame geometry
// with the trimmed pixels. The anchor is the original image center measured
// from the top-left corner of the trimmed box. A fully transparent image
// becomes a 1x1 transparent placeholder anchored as if cropped at the origin.
func Trim(img image.Image, index int) (model.Frame, *image.NRGBA) {
	b := img.Bounds()
	halfW := float64(b.Dx()) / 2
	halfH := float64(b.Dy()) / 2

	box, ok := Bounds(img)
	if !ok {
		f := model.NewFrame(index, 1, 1, model.Anchor{X: halfW, Y: halfH})
		f.Degenerate = true
		return f, imaging.New(1, 1, color.NRGBA{})
	}

	anchor := model.Anchor{
		X: halfW - float64(box.Min.X-b.Min.X),
		Y: halfH - float64(box.Min.Y-b.Min.Y),
	}
	return model.NewFrame(index, box.Dx(), box.Dy(), anchor), imaging.Crop(img, box)
}
