package humgrid

import (
	"fmt"

	"github.com/vsariola/humgrid/humdrum"
)

// expandLocalCommentLayers gives every layout slice at least as many voices
// per staff as the next data, barline or manipulator slice, so that layout
// records stay on their voice once the spines split.
func (g *Grid) expandLocalCommentLayers() {
	var next *Slice
	for i := len(g.allSlices) - 1; i >= 0; i-- {
		s := g.allSlices[i]
		switch {
		case s.IsDataSlice(), s.IsMeasureSlice(), s.IsManipulator():
			next = s
		case s.IsLayoutSlice() && next != nil:
			matchLayoutVoices(s, next)
		}
	}
}

func matchLayoutVoices(layout, target *Slice) {
	if len(layout.Parts) != len(target.Parts) {
		return
	}
	for p, part := range layout.Parts {
		if len(part.Staves) != len(target.Parts[p].Staves) {
			continue
		}
		for st, staff := range part.Staves {
			for len(staff.Voices) < target.VoiceCount(p, st) {
				staff.appendToken("!")
			}
		}
	}
}

// addNullTokens makes every cell of the grid hold a token: durations are
// continued with null tokens, grace, clef and layout slices are widened to
// the voice count around them and the remaining holes in the data become
// invisible rests.
func (g *Grid) addNullTokens() error {
	for i, s := range g.allSlices {
		if !s.IsNoteSlice() {
			continue
		}
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				for v := range staff.Voices {
					if err := g.extendDurationToken(i, p, st, v); err != nil {
						return err
					}
				}
			}
		}
	}
	if g.MoveLeadingClefs {
		g.AdjustClefChanges()
	}
	g.fillNullTokensForType(GraceNotes)
	g.fillNullTokensForType(Clefs)
	g.fillNullTokensForType(LocalComments)
	g.fillNullTokensForType(Layouts)
	g.fillDataHoles()
	return nil
}

// extendDurationToken writes null tokens at (p, st, v) into the slices that
// the token on slice i is still sounding in.
func (g *Grid) extendDurationToken(i, p, st, v int) error {
	if i < 0 || i >= len(g.allSlices)-1 {
		return nil
	}
	this := g.allSlices[i]
	voice := this.Staff(p, st).Voice(v)
	if voice == nil || voice.Token == nil || voice.Token.Text == "." {
		return nil
	}
	tokenDur := humdrum.RecipToDuration(voice.Token.Text)
	if tokenDur.Sign() <= 0 {
		return nil
	}
	nextTs := g.allSlices[i+1].Timestamp
	timeLeft := tokenDur.Sub(nextTs.Sub(this.Timestamp))
	for s := i + 1; s < len(g.allSlices) && timeLeft.Sign() > 0; s++ {
		slice := g.allSlices[s]
		if !slice.HasSpines() {
			continue
		}
		currTs := nextTs
		if following := g.nextSpined(s); following != nil {
			nextTs = following.Timestamp
		} else {
			nextTs = currTs.Add(slice.Duration)
		}
		sliceDur := nextTs.Sub(currTs)
		staff := slice.Staff(p, st)
		if staff == nil {
			return sliceError("extend duration", s, fmt.Errorf("part %d staff %d: %w", p, st, ErrTopologyMismatch))
		}
		switch {
		case slice.IsGraceSlice():
			slice.Duration = humdrum.Rat{}
		case slice.IsNoteSlice():
			if w := staff.Voice(v); w != nil && w.Token != nil && w.Token.Text != "." {
				return sliceError("extend duration", s, fmt.Errorf("%q at %v runs into %q at %v: %w",
					voice.Token.Text, this.Timestamp, w.Token.Text, slice.Timestamp, ErrOverlap))
			}
			if err := staff.SetNullTokenLayer(v, slice.Type, sliceDur); err != nil {
				return sliceError("extend duration", s, err)
			}
			timeLeft = timeLeft.Sub(sliceDur)
		default:
			if staff.Voice(v) == nil {
				if err := staff.SetNullTokenLayer(v, slice.Type, sliceDur); err != nil {
					return sliceError("extend duration", s, err)
				}
			}
		}
		if s+1 == len(g.allSlices)-1 && timeLeft.Sign() > 0 {
			g.allSlices[s+1].Duration = timeLeft
		}
	}
	return nil
}

func (g *Grid) nextSpined(i int) *Slice {
	for k := i + 1; k < len(g.allSlices); k++ {
		if g.allSlices[k].HasSpines() {
			return g.allSlices[k]
		}
	}
	return nil
}

// AdjustClefChanges moves a clef change that opens a measure to the end of
// the previous measure, so it is written before the barline.
func (g *Grid) AdjustClefChanges() {
	for i := 1; i < len(g.Measures); i++ {
		m := g.Measures[i]
		if len(m.Slices) == 0 || m.Duration.IsZero() || !m.Slices[0].IsClefSlice() {
			continue
		}
		prev := g.Measures[i-1]
		prev.Slices = append(prev.Slices, m.Slices[0])
		m.Slices = m.Slices[1:]
	}
}

// fillNullTokensForType widens the slices of typ to the voice counts of the
// note slices around them when those agree.
func (g *Grid) fillNullTokensForType(typ SliceType) {
	for i, s := range g.allSlices {
		if s.Type != typ {
			continue
		}
		var last, next *Slice
		for k := i - 1; k >= 0; k-- {
			if g.allSlices[k].IsNoteSlice() {
				last = g.allSlices[k]
				break
			}
		}
		for k := i + 1; k < len(g.allSlices); k++ {
			if g.allSlices[k].IsNoteSlice() {
				next = g.allSlices[k]
				break
			}
		}
		if last == nil || next == nil {
			continue
		}
		fillInNullTokens(s, last, next)
	}
}

func fillInNullTokens(s, last, next *Slice) {
	null := s.Type.NullToken()
	for p, part := range s.Parts {
		for st, staff := range part.Staves {
			lastCount := max(last.VoiceCount(p, st), 1)
			nextCount := max(next.VoiceCount(p, st), 1)
			if lastCount == nextCount {
				staff.Voices = grow(staff.Voices, lastCount, nilOf[*Voice])
			}
			for k, v := range staff.Voices {
				switch {
				case v == nil:
					staff.Voices[k] = NewVoice(null, humdrum.Rat{})
				case v.Token == nil:
					v.Token = humdrum.NewToken(null)
				}
			}
		}
	}
}

// fillDataHoles replaces the nil voices of note slices with invisible rests
// lasting until the next event at the same address, or the end of the
// score.
func (g *Grid) fillDataHoles() {
	for i, s := range g.allSlices {
		if !s.IsNoteSlice() {
			continue
		}
		for p, part := range s.Parts {
			for st, staff := range part.Staves {
				for k, v := range staff.Voices {
					if v != nil {
						continue
					}
					dur := g.holeEnd(i, p, st, k).Sub(s.Timestamp)
					text := "."
					if dur.Sign() > 0 {
						text = humdrum.DurationToRecip(dur) + "ryy"
					}
					staff.Voices[k] = NewVoice(text, dur)
				}
			}
		}
	}
}

func (g *Grid) holeEnd(i, p, st, v int) humdrum.Rat {
	for k := i + 1; k < len(g.allSlices); k++ {
		s := g.allSlices[k]
		if !s.IsNoteSlice() {
			continue
		}
		if v < s.VoiceCount(p, st) {
			return s.Timestamp
		}
	}
	return g.endOfScore()
}
