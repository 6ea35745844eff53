package humgrid

import (
	"errors"
	"fmt"
)

var (
	ErrPartIndex         = errors.New("part index out of range")
	ErrStaffIndex        = errors.New("negative staff index")
	ErrVoiceIndex        = errors.New("negative voice index")
	ErrTokenConflict     = errors.New("cell already holds a different token")
	ErrOverlap           = errors.New("event overlaps a following event in the same voice")
	ErrGraceNumber       = errors.New("grace note ordinal must be at least 1")
	ErrAnchorNotFound    = errors.New("associated slice is not in the measure")
	ErrEmptyGrid         = errors.New("grid has no slices")
	ErrTopologyMismatch  = errors.New("adjacent slices have different part or staff counts")
	ErrUnsupportedGap    = errors.New("gap in the first track does not end on a slice boundary")
	ErrManipulatorLoop   = errors.New("manipulator cleanup did not converge")
	ErrMatchedVoiceCount = errors.New("target staff already has voices")
	ErrSideCount         = errors.New("side token has no spine in the score")
)

// Error locates a failure inside the grid. Measure and Slice are -1 when
// unknown.
type Error struct {
	Op      string
	Measure int
	Slice   int
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Measure >= 0 && e.Slice >= 0:
		return fmt.Sprintf("%s: measure %d, slice %d: %v", e.Op, e.Measure, e.Slice, e.Err)
	case e.Measure >= 0:
		return fmt.Sprintf("%s: measure %d: %v", e.Op, e.Measure, e.Err)
	case e.Slice >= 0:
		return fmt.Sprintf("%s: slice %d: %v", e.Op, e.Slice, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func sliceError(op string, slice int, err error) error {
	return &Error{Op: op, Measure: -1, Slice: slice, Err: err}
}

func measureError(op string, measure int, err error) error {
	return &Error{Op: op, Measure: measure, Slice: -1, Err: err}
}
