package trim

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opaqueRect(w, h int, r image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, r, &image.Uniform{C: color.NRGBA{R: 200, G: 40, B: 90, A: 255}}, image.Point{}, draw.Src)
	return img
}

func TestBounds_FullyTransparent(t *testing.T) {
	_, ok := Bounds(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	assert.False(t, ok)
}

func TestBounds_SinglePixel(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	img.SetNRGBA(7, 2, color.NRGBA{A: 1})

	box, ok := Bounds(img)
	require.True(t, ok)
	assert.Equal(t, image.Rect(7, 2, 8, 3), box)
}

func TestBounds_PixelFormats(t *testing.T) {
	want := image.Rect(3, 4, 9, 6)

	nrgba := opaqueRect(12, 10, want)
	rgba := image.NewRGBA(nrgba.Bounds())
	draw.Draw(rgba, rgba.Bounds(), nrgba, image.Point{}, draw.Src)
	gray := image.NewAlpha16(nrgba.Bounds())
	draw.Draw(gray, gray.Bounds(), nrgba, image.Point{}, draw.Src)

	for name, img := range map[string]image.Image{"nrgba": nrgba, "rgba": rgba, "alpha16": gray} {
		box, ok := Bounds(img)
		require.True(t, ok, name)
		assert.Equal(t, want, box, name)
	}
}

func TestBounds_OffsetOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(100, 50, 120, 70))
	img.SetNRGBA(105, 60, color.NRGBA{A: 255})
	img.SetNRGBA(110, 65, color.NRGBA{A: 255})

	box, ok := Bounds(img)
	require.True(t, ok)
	assert.Equal(t, image.Rect(105, 60, 111, 66), box)
}

func TestTrim_CenteredSquare(t *testing.T) {
	img := opaqueRect(100, 100, image.Rect(25, 25, 75, 75))

	f, px := Trim(img, 3)

	assert.Equal(t, 3, f.Index)
	assert.Equal(t, 50, f.Width)
	assert.Equal(t, 50, f.Height)
	assert.False(t, f.Degenerate)
	// The original center sits at the middle of the trimmed box.
	assert.InDelta(t, 25.0, f.Anchor.X, 1e-9)
	assert.InDelta(t, 25.0, f.Anchor.Y, 1e-9)
	assert.Equal(t, float64(f.Width)/2, f.Anchor.X)

	require.NotNil(t, px)
	assert.Equal(t, image.Rect(0, 0, 50, 50), px.Bounds())
	assert.Equal(t, uint8(255), px.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), px.NRGBAAt(49, 49).A)
}

func TestTrim_OffCenterFrame(t *testing.T) {
	img := opaqueRect(40, 30, image.Rect(30, 5, 38, 29))

	f, px := Trim(img, 0)

	assert.Equal(t, 8, f.Width)
	assert.Equal(t, 24, f.Height)
	assert.InDelta(t, -10.0, f.Anchor.X, 1e-9, "center lies left of the trimmed box")
	assert.InDelta(t, 10.0, f.Anchor.Y, 1e-9)
	assert.Equal(t, image.Rect(0, 0, 8, 24), px.Bounds())
}

func TestTrim_OddDimensionsGiveHalfPixelAnchor(t *testing.T) {
	img := opaqueRect(25, 13, image.Rect(0, 0, 25, 13))

	f, _ := Trim(img, 1)

	assert.Equal(t, 12.5, f.Anchor.X)
	assert.Equal(t, 6.5, f.Anchor.Y)
}

func TestTrim_FullyTransparentBecomesPlaceholder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))

	f, px := Trim(img, 9)

	assert.True(t, f.Degenerate)
	assert.Equal(t, 1, f.Width)
	assert.Equal(t, 1, f.Height)
	assert.Equal(t, 32.0, f.Anchor.X)
	assert.Equal(t, 32.0, f.Anchor.Y)
	require.NotNil(t, px)
	assert.Equal(t, image.Rect(0, 0, 1, 1), px.Bounds())
	assert.Equal(t, uint8(0), px.NRGBAAt(0, 0).A)
}

func TestTrim_NeverProducesEmptyFrames(t *testing.T) {
	sizes := []image.Rectangle{
		image.Rect(0, 0, 1, 1),
		image.Rect(0, 0, 3, 1),
		image.Rect(2, 2, 3, 9),
	}
	for _, r := range sizes {
		f, px := Trim(opaqueRect(10, 10, r), 0)
		assert.GreaterOrEqual(t, f.Width, 1)
		assert.GreaterOrEqual(t, f.Height, 1)
		assert.Equal(t, r.Dx(), px.Bounds().Dx())
		assert.Equal(t, r.Dy(), px.Bounds().Dy())
	}
}
