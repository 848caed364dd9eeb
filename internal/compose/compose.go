package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/piwi3910/spritepack/internal/model"
)

// ErrSizeMismatch is returned when staged pixels do not match the frame size
// recorded at trim time.
var ErrSizeMismatch = errors.New("staged frame size does not match placement")

// Source resolves a frame's staging handle to its trimmed pixels.
// staging.Store satisfies it.
type Source interface {
	Get(handle string) (image.Image, error)
}

// Compose draws every placed frame into a transparent sheet of the packed
// size. Pixels are copied as-is; no blending happens because frames never
// overlap.
func Compose(sheet model.Sheet, src Source) (*image.NRGBA, error) {
	if sheet.Width <= 0 || sheet.Height <= 0 {
		return nil, fmt.Errorf("invalid sheet size %dx%d", sheet.Width, sheet.Height)
	}
	dst := imaging.New(sheet.Width, sheet.Height, color.NRGBA{})

	for _, p := range sheet.Placements {
		img, err := src.Get(p.Frame.Source)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", p.Frame.Index, err)
		}
		b := img.Bounds()
		if b.Dx() != p.Frame.Width || b.Dy() != p.Frame.Height {
			return nil, fmt.Errorf("frame %d is %dx%d, placed as %dx%d: %w",
				p.Frame.Index, b.Dx(), b.Dy(), p.Frame.Width, p.Frame.Height, ErrSizeMismatch)
		}
		draw.Draw(dst, p.Rect(), img, b.Min, draw.Src)
	}
	return dst, nil
}

// Extract cuts one placed frame back out of a composed sheet.
func Extract(sheet image.Image, p model.Placement) *image.NRGBA {
	return imaging.Crop(sheet, p.Rect().Add(sheet.Bounds().Min))
}

// WriteSheet saves the composed sheet, creating missing parent directories.
// The format follows the file extension.
func WriteSheet(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create sheet directory: %w", err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to write sprite sheet: %w", err)
	}
	return nil
}

// EncodeSheet writes the composed sheet to w as PNG.
func EncodeSheet(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode sprite sheet: %w", err)
	}
	return nil
}
