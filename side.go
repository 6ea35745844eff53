package humgrid

import (
	"fmt"

	"github.com/vsariola/humgrid/humdrum"
)

// Side holds the companion spines attached to a staff (xml ids, verses) or
// to a part (dynamics, figured bass, harmony). Verses are sparse: a verse
// may be set without setting the ones before it.
type Side struct {
	Verses      []*humdrum.Token
	XMLID       *humdrum.Token
	Dynamics    *humdrum.Token
	FiguredBass *humdrum.Token
	Harmony     *humdrum.Token
}

// SetVerse sets verse i, growing the verse list with nils as needed.
func (s *Side) SetVerse(i int, tok *humdrum.Token) {
	if i < 0 {
		return
	}
	s.Verses = grow(s.Verses, i+1, nilOf[*humdrum.Token])
	s.Verses[i] = tok
}

// Verse returns verse i or nil.
func (s *Side) Verse(i int) *humdrum.Token {
	if i < 0 || i >= len(s.Verses) {
		return nil
	}
	return s.Verses[i]
}

// VerseCount is the number of verse cells, set or not, up to the last one
// set.
func (s *Side) VerseCount() int { return len(s.Verses) }

func (s *Side) XMLIDCount() int       { return present(s.XMLID) }
func (s *Side) DynamicsCount() int    { return present(s.Dynamics) }
func (s *Side) FiguredBassCount() int { return present(s.FiguredBass) }
func (s *Side) HarmonyCount() int     { return present(s.Harmony) }

func present(t *humdrum.Token) int {
	if t == nil {
		return 0
	}
	return 1
}

// checkSideCounts makes sure every side token set on a slice has a column
// to go into: a staff may not have more verses than the verse count known
// to the grid, and a part side token needs its spine to be present.
func (g *Grid) checkSideCounts() error {
	for i, s := range g.allSlices {
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				if n, known := staff.Side.VerseCount(), g.VerseCount(p, st); n > known {
					return sliceError("side spines", i, fmt.Errorf("part %d staff %d has %d verses, %d reported: %w", p, st, n, known, ErrSideCount))
				}
				if staff.Side.XMLIDCount() > g.XMLIDCount(p) {
					return sliceError("side spines", i, fmt.Errorf("part %d staff %d xml id: %w", p, st, ErrSideCount))
				}
			}
			for _, c := range []struct {
				name      string
				have, known int
			}{
				{"dynamics", part.Side.DynamicsCount(), g.DynamicsCount(p)},
				{"figured bass", part.Side.FiguredBassCount(), g.FiguredBassCount(p)},
				{"harmony", part.Side.HarmonyCount(), g.HarmonyCount(p)},
			} {
				if c.have > c.known {
					return sliceError("side spines", i, fmt.Errorf("part %d %s: %w", p, c.name, ErrSideCount))
				}
			}
		}
	}
	return nil
}
