package pipeline

// Stage names one step of a conversion.
type Stage string

const (
	StageCrop     Stage = "Cropping out transparent pixels..."
	StagePack     Stage = "Finding a good packing arrangement..."
	StageSheet    Stage = "Writing sprite sheet..."
	StageMetadata Stage = "Writing metadata file..."
	StageExtras   Stage = "Writing reports..."
	StageCleanup  Stage = "Deleting temporary files..."
)

// Event reports progress within a stage. Fraction is in [0, 1].
type Event struct {
	Stage    Stage
	Fraction float64
}

// ProgressFunc receives progress events on a dedicated goroutine, in order.
type ProgressFunc func(Event)

// notifier decouples progress delivery from the work being reported.
type notifier struct {
	ch   chan Event
	done chan struct{}
}

func newNotifier(fn ProgressFunc) *notifier {
	n := &notifier{
		ch:   make(chan Event, 64),
		done: make(chan struct{}),
	}
	go func() {
		defer close(n.done)
		for e := range n.ch {
			if fn != nil {
				fn(e)
			}
		}
	}()
	return n
}

// send delivers e unless the buffer is full, in which case e is dropped.
func (n *notifier) send(e Event) {
	select {
	case n.ch <- e:
	default:
	}
}

// mark delivers a stage boundary. Boundaries are never dropped.
func (n *notifier) mark(stage Stage, fraction float64) {
	n.ch <- Event{Stage: stage, Fraction: fraction}
}

// close flushes pending events and waits for the consumer.
func (n *notifier) close() {
	close(n.ch)
	<-n.done
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
