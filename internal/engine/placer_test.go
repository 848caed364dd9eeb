package engine

import (
	"image"
	"math/rand"
	"testing"

	"github.com/piwi3910/spritepack/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(index, w, h int) model.Frame {
	return model.NewFrame(index, w, h, model.Anchor{X: float64(w) / 2, Y: float64(h) / 2})
}

// randomFrames builds a reproducible sequence of frames.
func randomFrames(seed int64, n, maxW, maxH int) []model.Frame {
	rng := rand.New(rand.NewSource(seed))
	frames := make([]model.Frame, n)
	for i := range frames {
		frames[i] = frame(i, 1+rng.Intn(maxW), 1+rng.Intn(maxH))
	}
	return frames
}

func assertValidLayout(t *testing.T, frames []model.Frame, l Layout) {
	t.Helper()
	require.Len(t, l.Positions, len(frames))
	usedWidth := 0
	rects := make([]image.Rectangle, len(frames))
	for i, f := range frames {
		p := l.Positions[i]
		rects[i] = image.Rect(p.X, p.Y, p.X+f.Width, p.Y+f.Height)
		assert.GreaterOrEqual(t, p.X, 0)
		assert.GreaterOrEqual(t, p.Y, 0)
		assert.LessOrEqual(t, rects[i].Max.Y, l.Height, "frame %d exceeds the sheet height", f.Index)
		usedWidth = max(usedWidth, rects[i].Max.X)
	}
	assert.Equal(t, usedWidth, l.Width, "used width must equal max(x + width)")
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			assert.False(t, rects[i].Overlaps(rects[j]),
				"frames %d and %d overlap: %v %v", frames[i].Index, frames[j].Index, rects[i], rects[j])
		}
	}
}

func TestSortFrames_TallestFirstThenIndex(t *testing.T) {
	frames := []model.Frame{
		frame(3, 5, 10),
		frame(1, 8, 20),
		frame(0, 2, 10),
		frame(2, 9, 20),
	}

	sorted := SortFrames(frames)

	got := make([]int, len(sorted))
	for i, f := range sorted {
		got[i] = f.Index
	}
	assert.Equal(t, []int{1, 2, 0, 3}, got)
	assert.Equal(t, 3, frames[0].Index, "input slice must not be reordered")
}

func TestPlace_ThreeFrameScenario(t *testing.T) {
	frames := SortFrames([]model.Frame{
		frame(2, 8, 8),
		frame(0, 10, 20),
		frame(1, 15, 15),
	})

	l, err := Place(frames, 20)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(0, 0), l.Positions[0], "10x20 frame")
	assert.Equal(t, image.Pt(10, 0), l.Positions[1], "15x15 frame fits beside the first")
	assert.Equal(t, image.Pt(25, 0), l.Positions[2], "8x8 frame cannot nest in the 5px gap below the second")
	assert.Equal(t, 33, l.Width)
	assert.Equal(t, 20, l.Height)
	assertValidLayout(t, frames, l)
}

func TestPlace_NestsBelowWhenItFits(t *testing.T) {
	frames := SortFrames([]model.Frame{
		frame(0, 10, 20),
		frame(1, 15, 12),
		frame(2, 8, 8),
	})

	l, err := Place(frames, 20)
	require.NoError(t, err)

	assert.Equal(t, image.Pt(10, 12), l.Positions[2], "8x8 frame fits in the 8px gap below the second frame")
	assert.Equal(t, 25, l.Width)
	assertValidLayout(t, frames, l)
}

func TestPlace_InsufficientHeight(t *testing.T) {
	frames := []model.Frame{frame(0, 10, 30)}

	_, err := Place(frames, 20)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientHeight)

	_, err = Place(frames, 0)
	assert.ErrorIs(t, err, ErrInsufficientHeight)
}

func TestPlace_InvalidFrame(t *testing.T) {
	_, err := Place([]model.Frame{{Index: 4, Width: 0, Height: 3}}, 10)
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestPlace_Empty(t *testing.T) {
	l, err := Place(nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, l.Width)
	assert.Empty(t, l.Positions)
}

func TestPlace_NoOverlapAcrossHeights(t *testing.T) {
	frames := SortFrames(randomFrames(42, 40, 50, 50))
	tallest := frames[0].Height

	for h := tallest; h <= tallest+200; h += 17 {
		l, err := Place(frames, h)
		require.NoError(t, err, "height %d", h)
		assert.Equal(t, h, l.Height, "used height equals the candidate height")
		assertValidLayout(t, frames, l)
	}
}

func TestPlace_Idempotent(t *testing.T) {
	frames := SortFrames(randomFrames(99, 30, 40, 40))
	copyA := append([]model.Frame(nil), frames...)
	copyB := append([]model.Frame(nil), frames...)

	a, err := Place(copyA, 60)
	require.NoError(t, err)
	b, err := Place(copyB, 60)
	require.NoError(t, err)

	assert.Equal(t, a.Positions, b.Positions)
	assert.Equal(t, a.Width, b.Width)
	assert.Equal(t, frames, copyA, "Place must not modify frames")
}

func TestPlace_StacksWhenSheetIsTallEnough(t *testing.T) {
	frames := SortFrames([]model.Frame{
		frame(0, 12, 10),
		frame(1, 7, 10),
		frame(2, 9, 10),
	})

	l, err := Place(frames, 30)
	require.NoError(t, err)

	assert.Equal(t, 12, l.Width, "everything stacks in the first column")
	for i, p := range l.Positions {
		assert.Equal(t, 0, p.X, "frame %d", i)
	}
}
