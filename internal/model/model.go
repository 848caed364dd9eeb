package model

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Anchor is the offset of a frame's original geometric center, measured in
// pixels from the top-left corner of the trimmed frame.
type Anchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Frame is one trimmed image of an animation sequence.
// Frames are immutable once trimmed; placement positions live in Placement.
type Frame struct {
	ID         string `json:"id"`
	Index      int    `json:"index"`  // Sequence index, usually parsed from the file name
	Width      int    `json:"width"`  // Trimmed width in pixels, always >= 1
	Height     int    `json:"height"` // Trimmed height in pixels, always >= 1
	Anchor     Anchor `json:"anchor"`
	Source     string `json:"source,omitempty"`     // Staging handle of the trimmed pixels
	Degenerate bool   `json:"degenerate,omitempty"` // Fully transparent source, replaced by a 1x1 placeholder
}

func NewFrame(index, w, h int, anchor Anchor) Frame {
	return Frame{
		ID:     uuid.New().String()[:8],
		Index:  index,
		Width:  w,
		Height: h,
		Anchor: anchor,
	}
}

// Area returns the trimmed pixel area of the frame.
func (f Frame) Area() int {
	return f.Width * f.Height
}

// PackSettings holds the height search configuration.
type PackSettings struct {
	MinHeight  int `json:"min_height" toml:"min_height"`   // Lowest candidate sheet height, 0 = tallest frame
	MaxHeight  int `json:"max_height" toml:"max_height"`   // Height ceiling, 0 = unbounded
	HeightStep int `json:"height_step" toml:"height_step"` // Increment between candidate heights
	Workers    int `json:"workers" toml:"workers"`         // Concurrent frame trims and height trials, <= 1 runs sequentially
}

// DefaultHeightStep is the increment between candidate sheet heights.
const DefaultHeightStep = 10

func DefaultSettings() PackSettings {
	return PackSettings{
		MinHeight:  0,
		MaxHeight:  0,
		HeightStep: DefaultHeightStep,
		Workers:    1,
	}
}

// Step returns the effective height step.
func (s PackSettings) Step() int {
	if s.HeightStep <= 0 {
		return DefaultHeightStep
	}
	return s.HeightStep
}

// Ceiling returns the effective height ceiling. An unset ceiling is unbounded.
func (s PackSettings) Ceiling() int {
	if s.MaxHeight <= 0 {
		return math.MaxInt
	}
	return s.MaxHeight
}

// ErrInvalidSettings is wrapped by every error Validate returns.
var ErrInvalidSettings = errors.New("invalid pack settings")

// Validate checks the search bounds. A zero step or worker count selects the
// default; negative values are rejected, as is a floor at or above a set
// ceiling.
func (s PackSettings) Validate() error {
	switch {
	case s.MinHeight < 0 || s.MaxHeight < 0:
		return fmt.Errorf("%w: height bounds must not be negative", ErrInvalidSettings)
	case s.HeightStep < 0:
		return fmt.Errorf("%w: height step must not be negative, got %d", ErrInvalidSettings, s.HeightStep)
	case s.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidSettings, s.Workers)
	case s.MaxHeight > 0 && s.MinHeight >= s.MaxHeight:
		return fmt.Errorf("%w: min height %d is not below max height %d", ErrInvalidSettings, s.MinHeight, s.MaxHeight)
	}
	return nil
}

// Placement is a frame assigned to a position on the sheet.
type Placement struct {
	Frame Frame `json:"frame"`
	X     int   `json:"x"` // Pixels from the left edge of the sheet
	Y     int   `json:"y"` // Pixels from the top edge of the sheet
}

// Rect returns the sheet rectangle covered by the placed frame.
func (p Placement) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Frame.Width, p.Y+p.Frame.Height)
}

// Overlaps reports whether two placements share any pixel.
func (p Placement) Overlaps(o Placement) bool {
	return p.Rect().Overlaps(o.Rect())
}

// Trial records one candidate height explored by the search.
type Trial struct {
	Height int `json:"height"`
	Width  int `json:"width"` // Used width at this height
}

// Area returns the sheet area of the trial.
func (t Trial) Area() int {
	return t.Width * t.Height
}

// Sheet is the committed packing: the chosen sheet size and every placement.
type Sheet struct {
	Width      int         `json:"width"`  // Used width
	Height     int         `json:"height"` // Chosen candidate height
	Placements []Placement `json:"placements"`
	Trials     []Trial     `json:"trials,omitempty"`
	// Converged is false when the height ceiling ended the search before the
	// used width shrank to the widest frame. The sheet is still usable.
	Converged bool `json:"converged"`
}

// Area returns the sheet area.
func (s Sheet) Area() int {
	return s.Width * s.Height
}

// UsedArea returns the total area covered by frames.
func (s Sheet) UsedArea() int {
	var total int
	for _, p := range s.Placements {
		total += p.Frame.Area()
	}
	return total
}

// Efficiency returns the covered percentage of the sheet.
func (s Sheet) Efficiency() float64 {
	a := s.Area()
	if a == 0 {
		return 0
	}
	return float64(s.UsedArea()) / float64(a) * 100.0
}

// ByIndex returns the placements ordered by ascending frame index.
func (s Sheet) ByIndex() []Placement {
	out := make([]Placement, len(s.Placements))
	copy(out, s.Placements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frame.Index < out[j].Frame.Index
	})
	return out
}

// Record is one metadata line: where a frame sits on the sheet and where its
// anchor lies within it.
type Record struct {
	Index   int     `json:"index"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	AnchorX float64 `json:"anchor_x"`
	AnchorY float64 `json:"anchor_y"`
}

// Rect returns the sheet rectangle the record describes.
func (r Record) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Record returns the metadata record of a placement.
func (p Placement) Record() Record {
	return Record{
		Index:   p.Frame.Index,
		X:       p.X,
		Y:       p.Y,
		Width:   p.Frame.Width,
		Height:  p.Frame.Height,
		AnchorX: p.Frame.Anchor.X,
		AnchorY: p.Frame.Anchor.Y,
	}
}

// Records returns the metadata records in ascending frame index order.
func (s Sheet) Records() []Record {
	placements := s.ByIndex()
	out := make([]Record, len(placements))
	for i, p := range placements {
		out[i] = p.Record()
	}
	return out
}
