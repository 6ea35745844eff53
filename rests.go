package humgrid

import (
	"fmt"

	"github.com/vsariola/humgrid/humdrum"
)

type staffAddress struct{ part, staff int }

// addInvisibleRestsInFirstTrack closes the gaps between an event in the
// first voice of a staff and the next event there, or the end of the score,
// with an invisible rest. The rest goes on the note slice where the earlier
// event ends; a gap that does not end on such a slice is an
// ErrUnsupportedGap, or a diagnostic when TolerateGaps is set.
func (g *Grid) addInvisibleRestsInFirstTrack() error {
	end := g.endOfScore()
	next := map[staffAddress]humdrum.Rat{}
	for i := len(g.allSlices) - 1; i >= 0; i-- {
		s := g.allSlices[i]
		if !s.IsNoteSlice() {
			continue
		}
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				if staff.Voice(0).IsNull() {
					continue
				}
				addr := staffAddress{p, st}
				ending, ok := next[addr]
				if !ok {
					ending = end
				}
				if err := g.addInvisibleRest(ending, i, p, st); err != nil {
					return err
				}
				next[addr] = s.Timestamp
			}
		}
	}
	return nil
}

// addInvisibleRest fills the time between the end of the first voice event
// on slice i and ending. Running past the last note slice leaves nothing to
// fill.
func (g *Grid) addInvisibleRest(ending humdrum.Rat, i, p, st int) error {
	start := g.allSlices[i]
	dur := humdrum.RecipToDuration(start.Staff(p, st).Voice(0).Text())
	if dur.Sign() <= 0 {
		return nil
	}
	gap := ending.Sub(start.Timestamp).Sub(dur)
	if gap.Sign() <= 0 {
		return nil
	}
	target := start.Timestamp.Add(dur)
	for k := i + 1; k < len(g.allSlices); k++ {
		s := g.allSlices[k]
		if !s.IsNoteSlice() {
			continue
		}
		c := s.Timestamp.Cmp(target)
		if c < 0 {
			continue
		}
		staff := s.Staff(p, st)
		if c > 0 || staff == nil {
			return g.unsupportedGap(i, p, st, gap, target)
		}
		if v := staff.Voice(0); v != nil && !v.IsNull() {
			return nil
		}
		if _, err := staff.SetTokenLayer(0, humdrum.NewToken(humdrum.DurationToRecip(gap)+"ryy"), gap); err != nil {
			return sliceError("invisible rest", k, err)
		}
		return nil
	}
	return nil
}

func (g *Grid) unsupportedGap(i, p, st int, gap, target humdrum.Rat) error {
	err := sliceError("invisible rest", i, fmt.Errorf("part %d staff %d: %v long gap at %v: %w", p, st, gap, target, ErrUnsupportedGap))
	if g.TolerateGaps {
		g.Diagnostics = append(g.Diagnostics, err)
		return nil
	}
	return err
}
