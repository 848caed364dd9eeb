package engine

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/piwi3910/spritepack/internal/model"
)

var (
	// ErrInsufficientHeight is returned when a frame is taller than the
	// candidate sheet height. The height search never asks for such a height.
	ErrInsufficientHeight = errors.New("candidate height is smaller than the tallest frame")

	// ErrInvalidFrame is returned for frames without a positive width and height.
	ErrInvalidFrame = errors.New("frame width and height must be positive")

	// ErrNoFrames is returned when there is nothing to pack.
	ErrNoFrames = errors.New("no frames to pack")
)

// Layout is the result of one placer run at a fixed height.
// Positions[i] is the top-left corner of frames[i] as passed to Place.
type Layout struct {
	Height    int
	Width     int // Used width: max over frames of x + width
	Positions []image.Point
}

// Trial returns the layout's candidate record.
func (l Layout) Trial() model.Trial {
	return model.Trial{Height: l.Height, Width: l.Width}
}

// SortFrames returns a copy of frames ordered tallest first.
// Frames of equal height keep ascending sequence index order.
func SortFrames(frames []model.Frame) []model.Frame {
	sorted := slices.Clone(frames)
	slices.SortStableFunc(sorted, func(a, b model.Frame) int {
		if a.Height != b.Height {
			return b.Height - a.Height
		}
		return a.Index - b.Index
	})
	return sorted
}

// Place packs frames, in the given order, into a sheet of the given height
// using upper-left-first greedy placement on a fresh cell grid. Frames are
// expected tallest first (see SortFrames). Place does not modify frames, so
// concurrent calls on the same slice are safe.
func Place(frames []model.Frame, height int) (Layout, error) {
	if height <= 0 {
		return Layout{}, fmt.Errorf("sheet height %d: %w", height, ErrInsufficientHeight)
	}

	grid := newCellGrid(height)
	layout := Layout{
		Height:    height,
		Positions: make([]image.Point, len(frames)),
	}

	for i, f := range frames {
		if f.Width <= 0 || f.Height <= 0 {
			return Layout{}, fmt.Errorf("frame %d (%dx%d): %w", f.Index, f.Width, f.Height, ErrInvalidFrame)
		}
		if f.Height > height {
			return Layout{}, fmt.Errorf("frame %d is %dpx tall, sheet height %d: %w",
				f.Index, f.Height, height, ErrInsufficientHeight)
		}

		pos, ok := grid.insert(f.Width, f.Height)
		if !ok {
			// The unbounded column always has a free full-height cell, so this
			// only happens if the grid invariant is broken.
			return Layout{}, fmt.Errorf("frame %d could not be placed at height %d: %w",
				f.Index, height, ErrInsufficientHeight)
		}
		layout.Positions[i] = pos
		if right := pos.X + f.Width; right > layout.Width {
			layout.Width = right
		}
	}

	return layout, nil
}
