package humgrid

import (
	"fmt"

	"github.com/vsariola/humgrid/humdrum"
)

type (
	// Slice is one future output record: every part, staff and voice at one
	// timestamp for one kind of record.
	Slice struct {
		Timestamp humdrum.Rat
		Duration  humdrum.Rat
		Type      SliceType
		Parts     []*Part
	}

	// SideCounts gives the score wide number of side spines of each kind, so
	// that every record gets the same number of columns. Grid implements it.
	SideCounts interface {
		XMLIDCount(part int) int
		VerseCount(part, staff int) int
		HarmonyCount(part int) int
		DynamicsCount(part int) int
		FiguredBassCount(part int) int
	}
)

// NewSlice allocates staffCounts[p] staves for each part p, with one empty
// voice preallocated in every staff.
func NewSlice(ts humdrum.Rat, typ SliceType, staffCounts []int) *Slice {
	s := &Slice{Timestamp: ts, Type: typ}
	for _, n := range staffCounts {
		part := &Part{}
		for i := 0; i < n; i++ {
			part.Staves = append(part.Staves, &Staff{Voices: []*Voice{{}}})
		}
		s.Parts = append(s.Parts, part)
	}
	return s
}

// NewSliceShapedLike copies the part and staff counts of from, with no
// voices in the staves.
func NewSliceShapedLike(ts humdrum.Rat, typ SliceType, from *Slice) *Slice {
	s := &Slice{Timestamp: ts, Type: typ}
	for _, fp := range from.Parts {
		part := &Part{}
		for range fp.Staves {
			part.Staves = append(part.Staves, &Staff{})
		}
		s.Parts = append(s.Parts, part)
	}
	return s
}

// NewSliceVoicedLike copies the part, staff and voice counts of from, with
// empty voices.
func NewSliceVoicedLike(ts humdrum.Rat, typ SliceType, from *Slice) *Slice {
	s := NewSliceShapedLike(ts, typ, from)
	for p, fp := range from.Parts {
		for st, fs := range fp.Staves {
			for range fs.Voices {
				s.Parts[p].Staves[st].Voices = append(s.Parts[p].Staves[st].Voices, &Voice{})
			}
		}
	}
	return s
}

// Staff returns the staff at part p, staff index st, or nil.
func (s *Slice) Staff(p, st int) *Staff {
	if p < 0 || p >= len(s.Parts) {
		return nil
	}
	return s.Parts[p].Staff(st)
}

// VoiceCount is the number of voices of a staff, 0 for a missing one.
func (s *Slice) VoiceCount(p, st int) int {
	if staff := s.Staff(p, st); staff != nil {
		return len(staff.Voices)
	}
	return 0
}

// AddToken puts text at (p, st, v). The part must exist; staves and voices
// are added as needed, new voices being empty.
func (s *Slice) AddToken(text string, p, st, v int) (*Voice, error) {
	if p < 0 || p >= len(s.Parts) {
		return nil, fmt.Errorf("part %d of %d: %w", p, len(s.Parts), ErrPartIndex)
	}
	if st < 0 {
		return nil, fmt.Errorf("staff %d: %w", st, ErrStaffIndex)
	}
	if v < 0 {
		return nil, fmt.Errorf("voice %d: %w", v, ErrVoiceIndex)
	}
	part := s.Parts[p]
	part.Staves = grow(part.Staves, st+1, newStaff)
	staff := part.Staves[st]
	staff.Voices = grow(staff.Voices, v+1, func() *Voice { return &Voice{} })
	if staff.Voices[v] == nil {
		staff.Voices[v] = &Voice{}
	}
	staff.Voices[v].Token = humdrum.NewToken(text)
	return staff.Voices[v], nil
}

func (s *Slice) HasSpines() bool      { return s.Type.HasSpines() }
func (s *Slice) IsNoteSlice() bool    { return s.Type == Notes }
func (s *Slice) IsGraceSlice() bool   { return s.Type == GraceNotes }
func (s *Slice) IsDataSlice() bool    { return s.Type.IsData() }
func (s *Slice) IsMeasureSlice() bool { return s.Type == Measures }
func (s *Slice) IsClefSlice() bool    { return s.Type == Clefs }
func (s *Slice) IsManipulator() bool  { return s.Type == Manipulators }
func (s *Slice) IsLayoutSlice() bool  { return s.Type.IsLocalComment() }
func (s *Slice) IsInvalid() bool      { return s.Type == Invalid }

// Invalidate tombstones the slice: it is skipped when the grid is written.
func (s *Slice) Invalidate() {
	s.Type = Invalid
	s.Duration = humdrum.Rat{}
}

// barlineText is voice 0 of the first staff on a barline slice.
func (s *Slice) barlineText() string {
	if v := s.Staff(0, 0).Voice(0); v != nil && v.Token != nil {
		return v.Token.Text
	}
	return "="
}

func (s *Slice) nullFor() string {
	if s.IsMeasureSlice() {
		return s.barlineText()
	}
	return s.Type.NullToken()
}

func (s *Slice) recipToken() string {
	switch {
	case s.IsNoteSlice():
		if s.Duration.IsZero() {
			return "g"
		}
		return humdrum.DurationToRecip(s.Duration)
	case s.IsMeasureSlice():
		return s.barlineText()
	case s.Type.IsInterpretation():
		return "*"
	case s.IsGraceSlice():
		return "q"
	}
	return "!"
}

// TransferTokens appends the slice as one line to out. Parts and staves are
// written from the highest index down, voices in order. Staves without
// voices, and voices without tokens, are written as null tokens. Side spines
// are padded to the counts in sides; tokens beyond those counts are not
// written. Records without spines have exactly
// one column.
func (s *Slice) TransferTokens(out *humdrum.File, sides SideCounts, recip bool) {
	null := s.nullFor()
	var line humdrum.Line
	if !s.HasSpines() {
		v := s.Staff(0, 0).Voice(0)
		if v != nil && v.Token != nil {
			line = append(line, v.Token)
			v.Transferred = true
		} else {
			line = append(line, humdrum.NewToken(null))
		}
		out.AppendLine(line)
		return
	}
	if recip {
		line = append(line, humdrum.NewToken(s.recipToken()))
	}
	for p := len(s.Parts) - 1; p >= 0; p-- {
		part := s.Parts[p]
		for st := len(part.Staves) - 1; st >= 0; st-- {
			staff := part.Staves[st]
			if len(staff.Voices) == 0 {
				line = append(line, humdrum.NewToken(null))
			}
			for _, v := range staff.Voices {
				if v == nil || v.Token == nil {
					line = append(line, humdrum.NewToken(null))
					continue
				}
				line = append(line, v.Token)
				v.Transferred = true
			}
			line = appendStaffSides(line, &staff.Side, null, sides.XMLIDCount(p), sides.VerseCount(p, st))
		}
		line = appendPartSides(line, &part.Side, null, sides.DynamicsCount(p), sides.FiguredBassCount(p), sides.HarmonyCount(p))
	}
	out.AppendLine(line)
}

func appendStaffSides(line humdrum.Line, side *Side, null string, xmlIDs, verses int) humdrum.Line {
	if xmlIDs > 0 {
		line = append(line, orNull(side.XMLID, null))
	}
	for i := 0; i < verses; i++ {
		line = append(line, orNull(side.Verse(i), null))
	}
	return line
}

func appendPartSides(line humdrum.Line, side *Side, null string, dynamics, figuredBass, harmony int) humdrum.Line {
	if dynamics > 0 {
		line = append(line, orNull(side.Dynamics, null))
	}
	if figuredBass > 0 {
		line = append(line, orNull(side.FiguredBass, null))
	}
	for i := 0; i < harmony; i++ {
		if i < side.HarmonyCount() {
			line = append(line, orNull(side.Harmony, null))
			continue
		}
		line = append(line, humdrum.NewToken(null))
	}
	return line
}

func orNull(t *humdrum.Token, null string) *humdrum.Token {
	if t == nil {
		return humdrum.NewToken(null)
	}
	return t
}
