package engine

import (
	"github.com/piwi3910/spritepack/internal/model"
)

// Optimizer searches candidate sheet heights for the smallest sheet area.
type Optimizer struct {
	Settings model.PackSettings

	// OnTrial, when set, is called once per explored height in ascending
	// height order. It must not block.
	OnTrial func(model.Trial)
}

func New(settings model.PackSettings) *Optimizer {
	return &Optimizer{Settings: settings}
}

// searchState carries the bounds of one height search.
type searchState struct {
	frames  []model.Frame // tallest first
	start   int           // first candidate height
	step    int
	ceiling int
	widest  int // the used width can never drop below this
}

// nextHeight returns the candidate after h and whether it may be tried.
func (s searchState) nextHeight(h int) (int, bool) {
	next := h + s.step
	if next < h { // overflow
		return 0, false
	}
	return next, next < s.ceiling
}

// searchOutcome is the result of exploring candidate heights.
type searchOutcome struct {
	trials    []model.Trial
	best      int // index into trials
	converged bool
}

// record appends a trial and updates the best candidate. It reports whether
// the search should stop because the used width has reached the widest frame.
func (o *searchOutcome) record(t model.Trial, widest int) bool {
	o.trials = append(o.trials, t)
	last := len(o.trials) - 1
	if last == 0 || t.Area() < o.trials[o.best].Area() {
		o.best = last
	}
	if t.Width <= widest {
		o.converged = true
		return true
	}
	return false
}

// Optimize sorts the frames tallest first, explores candidate heights from
// max(tallest frame, MinHeight) upward in HeightStep increments and returns
// the sheet with the smallest area found. The search stops at the first
// height whose used width is no greater than the widest frame, or when the
// next height would reach MaxHeight; in the latter case the returned sheet
// has Converged set to false. The winning height is packed once more to
// produce the committed placements.
//
// A frame taller than MaxHeight cannot fit under the ceiling. The sheet is
// then packed at that frame's height, above the ceiling, after a single
// trial and Converged is false.
func (o *Optimizer) Optimize(frames []model.Frame) (model.Sheet, error) {
	if err := o.Settings.Validate(); err != nil {
		return model.Sheet{}, err
	}
	if len(frames) == 0 {
		return model.Sheet{}, ErrNoFrames
	}

	sorted := SortFrames(frames)
	state := searchState{
		frames:  sorted,
		start:   max(sorted[0].Height, o.Settings.MinHeight),
		step:    o.Settings.Step(),
		ceiling: o.Settings.Ceiling(),
	}
	for _, f := range sorted {
		state.widest = max(state.widest, f.Width)
	}

	var (
		outcome searchOutcome
		err     error
	)
	if o.Settings.Workers > 1 {
		outcome, err = o.searchParallel(state, o.Settings.Workers)
	} else {
		outcome, err = o.search(state)
	}
	if err != nil {
		return model.Sheet{}, err
	}

	bestHeight := outcome.trials[outcome.best].Height
	final, err := Place(sorted, bestHeight)
	if err != nil {
		return model.Sheet{}, err
	}

	sheet := model.Sheet{
		Width:      final.Width,
		Height:     bestHeight,
		Placements: make([]model.Placement, len(sorted)),
		Trials:     outcome.trials,
		Converged:  outcome.converged && bestHeight <= o.Settings.Ceiling(),
	}
	for i, f := range sorted {
		sheet.Placements[i] = model.Placement{
			Frame: f,
			X:     final.Positions[i].X,
			Y:     final.Positions[i].Y,
		}
	}
	return sheet, nil
}

// search explores candidate heights one at a time.
func (o *Optimizer) search(s searchState) (searchOutcome, error) {
	var outcome searchOutcome
	h := s.start
	for {
		layout, err := Place(s.frames, h)
		if err != nil {
			return searchOutcome{}, err
		}
		t := layout.Trial()
		done := outcome.record(t, s.widest)
		o.notify(t)
		if done {
			return outcome, nil
		}
		var ok bool
		if h, ok = s.nextHeight(h); !ok {
			return outcome, nil
		}
	}
}

func (o *Optimizer) notify(t model.Trial) {
	if o.OnTrial != nil {
		o.OnTrial(t)
	}
}

// Pack runs a search with default settings.
func Pack(frames []model.Frame) (model.Sheet, error) {
	return New(model.DefaultSettings()).Optimize(frames)
}
