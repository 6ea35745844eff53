package humgrid

import (
	"strings"

	"github.com/vsariola/humgrid/humdrum"
)

// RemoveRedundantClefChanges nulls clef tokens that repeat the clef already
// in effect on their staff, and drops clef slices left with nothing but
// nulls. Only the first voice of a staff carries its clef.
func (g *Grid) RemoveRedundantClefChanges() {
	current := map[staffAddress]string{}
	for _, m := range g.Measures {
		for _, s := range m.Slices {
			if !s.IsClefSlice() {
				continue
			}
			duplicate := false
			empty := true
			for p, part := range s.Parts {
				for st, staff := range part.Staves {
					v := staff.Voice(0)
					if v == nil || v.Token == nil || v.Token.Text == "*" {
						continue
					}
					text := v.Token.Text
					if !strings.HasPrefix(text, "*clef") {
						empty = false
						continue
					}
					addr := staffAddress{p, st}
					if clef, ok := current[addr]; ok && clef == text {
						duplicate = true
						v.Token = humdrum.NewToken("*")
						continue
					}
					current[addr] = text
					empty = false
				}
			}
			if duplicate && empty && onlyNulls(s) {
				s.Invalidate()
			}
		}
	}
}

func onlyNulls(s *Slice) bool {
	for _, part := range s.Parts {
		for _, staff := range part.Staves {
			for _, v := range staff.Voices {
				if !v.IsNull() {
					return false
				}
			}
		}
	}
	return true
}
