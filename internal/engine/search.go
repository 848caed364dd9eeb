package engine

import (
	"golang.org/x/sync/errgroup"
)

// searchParallel explores candidate heights in batches of the given size.
// Each trial packs into its own grid and position slice, and results are
// committed in ascending height order with the same stop rule as search, so
// the outcome is identical to the sequential search.
func (o *Optimizer) searchParallel(s searchState, workers int) (searchOutcome, error) {
	var outcome searchOutcome
	h, more := s.start, true

	for more {
		heights := make([]int, 0, workers)
		for more && len(heights) < workers {
			heights = append(heights, h)
			h, more = s.nextHeight(h)
		}

		layouts := make([]Layout, len(heights))
		var g errgroup.Group
		for i, height := range heights {
			g.Go(func() error {
				l, err := Place(s.frames, height)
				if err != nil {
					return err
				}
				layouts[i] = l
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return searchOutcome{}, err
		}

		for _, l := range layouts {
			t := l.Trial()
			done := outcome.record(t, s.widest)
			o.notify(t)
			if done {
				return outcome, nil
			}
		}
	}
	return outcome, nil
}
