package pipeline

import (
	"errors"
	"fmt"
)

// Collaborator failures. They are reported distinctly from packing errors
// so callers can tell a bad input file from a failed write.
var (
	ErrDecode   = errors.New("cannot decode frame")
	ErrEncode   = errors.New("cannot write output")
	ErrStaging  = errors.New("staging failed")
	ErrNoFrames = errors.New("no frame of the sequence could be decoded")
)

// FrameError describes a failure tied to one source file. It matches both
// its Kind and the underlying error with errors.Is.
type FrameError struct {
	Path  string
	Index int
	Kind  error
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d (%s): %v: %v", e.Index, e.Path, e.Kind, e.Err)
}

func (e *FrameError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
