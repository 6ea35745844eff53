package humgrid

import (
	"fmt"

	"github.com/vsariola/humgrid/humdrum"
)

// Measure is a time ordered list of slices between two barlines. Barline
// styles and fermatas describe the barlines around the measure; Fermatas
// and RightFermatas are indexed by the staff number counted across all
// parts.
type Measure struct {
	Slices     []*Slice
	Timestamp  humdrum.Rat
	Duration   humdrum.Rat
	TimeSigDur humdrum.Rat // nominal duration; zero means same as Duration

	Number        string // measure number used with explicit bar numbering
	LeftBarline   BarlineStyle
	RightBarline  BarlineStyle
	Fermatas      []FermataStyle // on the barline opening this measure
	RightFermatas []FermataStyle // on the barline closing the last measure
}

func (m *Measure) insertSlice(index int, s *Slice) {
	m.Slices = append(m.Slices, nil)
	copy(m.Slices[index+1:], m.Slices[index:])
	m.Slices[index] = s
}

func (m *Measure) indexOf(s *Slice) int {
	for i := len(m.Slices) - 1; i >= 0; i-- {
		if m.Slices[i] == s {
			return i
		}
	}
	return -1
}

func (m *Measure) endTime() humdrum.Rat {
	return m.Timestamp.Add(m.Duration)
}

// Fermata is the fermata on the barline opening the measure for a staff.
func (m *Measure) Fermata(staff int) FermataStyle {
	if staff < 0 || staff >= len(m.Fermatas) {
		return NoFermata
	}
	return m.Fermatas[staff]
}

// RightFermata is the fermata on the closing barline for a staff.
func (m *Measure) RightFermata(staff int) FermataStyle {
	if staff < 0 || staff >= len(m.RightFermatas) {
		return NoFermata
	}
	return m.RightFermatas[staff]
}

// FirstSpinedSlice returns the first slice with spines, or nil.
func (m *Measure) FirstSpinedSlice() *Slice {
	for _, s := range m.Slices {
		if s.HasSpines() {
			return s
		}
	}
	return nil
}

// LastSpinedSlice returns the last slice with spines, or nil.
func (m *Measure) LastSpinedSlice() *Slice {
	for i := len(m.Slices) - 1; i >= 0; i-- {
		if m.Slices[i].HasSpines() {
			return m.Slices[i]
		}
	}
	return nil
}

// AddDataToken adds a note or rest token with duration dur at timestamp ts.
// Tokens at the same timestamp share one Notes slice.
func (m *Measure) AddDataToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int, dur humdrum.Rat) (*Slice, error) {
	s, voice, err := m.addTokenOfType(text, ts, Notes, p, st, v, staffCounts)
	if err != nil {
		return nil, err
	}
	voice.Duration = dur
	return s, nil
}

// AddTokenOfType adds a token on a slice of type typ at ts, merging into an
// existing slice of the same type and timestamp. Slices sharing a timestamp
// are kept ordered by type.
func (m *Measure) AddTokenOfType(typ SliceType, text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	s, _, err := m.addTokenOfType(text, ts, typ, p, st, v, staffCounts)
	return s, err
}

func (m *Measure) AddClefToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Clefs, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddKeySigToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(KeySigs, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddKeyDesignationToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(KeyDesignations, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddTimeSigToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(TimeSigs, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddMeterSigToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(MeterSigs, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddTempoToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Tempos, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddTransposeToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Transpositions, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddOttavaToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Ottavas, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddStriaToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Stria, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddBarlineToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Measures, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddLabelToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(Labels, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddLabelAbbrToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(LabelAbbrs, text, ts, p, st, v, staffCounts)
}

func (m *Measure) AddSectionNameToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int) (*Slice, error) {
	return m.AddTokenOfType(SectionNames, text, ts, p, st, v, staffCounts)
}

func (m *Measure) addTokenOfType(text string, ts humdrum.Rat, typ SliceType, p, st, v int, staffCounts []int) (*Slice, *Voice, error) {
	index := len(m.Slices)
	if index > 0 && !m.Slices[index-1].Timestamp.Less(ts) {
		for _, s := range m.Slices {
			if s.Timestamp == ts && s.Type == typ {
				voice, err := s.AddToken(text, p, st, v)
				return s, voice, err
			}
		}
		index = m.placement(ts, typ)
	}
	s := NewSlice(ts, typ, staffCounts)
	voice, err := s.AddToken(text, p, st, v)
	if err != nil {
		return nil, nil, err
	}
	m.insertSlice(index, s)
	return s, voice, nil
}

// placement is the index where a new slice of typ at ts goes: before the
// first later slice, or before the first slice at ts ranked above typ.
func (m *Measure) placement(ts humdrum.Rat, typ SliceType) int {
	for i, s := range m.Slices {
		if c := s.Timestamp.Cmp(ts); c > 0 || c == 0 && s.Type > typ {
			return i
		}
	}
	return len(m.Slices)
}

// AddGraceToken adds a grace note at ts. graceNumber counts backwards from
// the note the grace notes lead into: 1 is the grace slice immediately
// before it, 2 the one before that, and so on. An existing grace slice with
// that ordinal is reused.
func (m *Measure) AddGraceToken(text string, ts humdrum.Rat, p, st, v int, staffCounts []int, graceNumber int) (*Slice, error) {
	if graceNumber < 1 {
		return nil, fmt.Errorf("grace number %d: %w", graceNumber, ErrGraceNumber)
	}
	anchor := len(m.Slices)
	for i, s := range m.Slices {
		if s.IsNoteSlice() && s.Timestamp == ts || ts.Less(s.Timestamp) {
			anchor = i
			break
		}
	}
	insertAt := 0
	counter := 0
	for i := anchor - 1; i >= 0; i-- {
		s := m.Slices[i]
		if s.IsLayoutSlice() {
			continue
		}
		if s.IsGraceSlice() && s.Timestamp == ts {
			counter++
			if counter == graceNumber {
				_, err := s.AddToken(text, p, st, v)
				return s, err
			}
			continue
		}
		// a note, an earlier slice, or an interpretation at the same time:
		// the new grace slice goes right after it
		insertAt = i + 1
		break
	}
	s := NewSlice(ts, GraceNotes, staffCounts)
	if _, err := s.AddToken(text, p, st, v); err != nil {
		return nil, err
	}
	m.insertSlice(insertAt, s)
	return s, nil
}

// AddGlobalComment adds a "!!" record at ts. The same comment at the same
// timestamp is only added once.
func (m *Measure) AddGlobalComment(text string, ts humdrum.Rat) *Slice {
	return m.addGlobal(GlobalComments, text, ts)
}

// AddGlobalReference adds a "!!!" reference record at ts.
func (m *Measure) AddGlobalReference(text string, ts humdrum.Rat) *Slice {
	return m.addGlobal(ReferenceRecords, text, ts)
}

// AddGlobalLayout adds a "!!LO:" global layout record at ts.
func (m *Measure) AddGlobalLayout(text string, ts humdrum.Rat) *Slice {
	return m.addGlobal(GlobalLayouts, text, ts)
}

func (m *Measure) addGlobal(typ SliceType, text string, ts humdrum.Rat) *Slice {
	s := NewSlice(ts, typ, []int{1})
	s.Parts[0].Staves[0].Voices[0].Token = humdrum.NewToken(text)
	if len(m.Slices) == 0 || m.Slices[len(m.Slices)-1].Timestamp.Less(ts) {
		m.Slices = append(m.Slices, s)
		return s
	}
	// same kind comments at one time keep the order they were added in
	insertAt := -1
	for i, old := range m.Slices {
		if old.Timestamp.Less(ts) {
			continue
		}
		if old.Timestamp != ts {
			if insertAt < 0 {
				insertAt = i
			}
			break
		}
		if insertAt < 0 {
			insertAt = i
		}
		if old.Type == typ {
			if old.Staff(0, 0).Voice(0).Text() == text {
				return old
			}
			insertAt = i + 1
		}
	}
	m.insertSlice(insertAt, s)
	return s
}

// AddLayoutParameter adds a "!LO:" local layout for (p, st, v) on the
// Layouts slice placed immediately before anchor, creating that slice if
// needed. A nil anchor means the end of the measure.
func (m *Measure) AddLayoutParameter(anchor *Slice, p, st, v int, text string) error {
	s, err := m.sliceBefore(anchor, Layouts, func(prev *Slice) bool {
		voice := prev.Staff(p, st).Voice(v)
		return prev.Staff(p, st) != nil && (voice == nil || voice.Token == nil || voice.Token.Text == "!")
	})
	if err != nil {
		return err
	}
	staff := s.Staff(p, st)
	if staff == nil {
		return fmt.Errorf("layout at part %d staff %d: %w", p, st, ErrPartIndex)
	}
	if v < 0 {
		return fmt.Errorf("layout voice %d: %w", v, ErrVoiceIndex)
	}
	staff.Voices = grow(staff.Voices, v+1, func() *Voice { return &Voice{} })
	if staff.Voices[v] == nil {
		staff.Voices[v] = &Voice{}
	}
	staff.Voices[v].Token = humdrum.NewToken(text)
	return nil
}

// AddDynamicsLayoutParameters puts a layout for the dynamics spine of part
// p on the Layouts slice before anchor.
func (m *Measure) AddDynamicsLayoutParameters(anchor *Slice, p int, text string) error {
	s, err := m.sliceBefore(anchor, Layouts, func(prev *Slice) bool {
		return p >= 0 && p < len(prev.Parts) && prev.Parts[p].Side.Dynamics == nil
	})
	if err != nil {
		return err
	}
	if p < 0 || p >= len(s.Parts) {
		return fmt.Errorf("dynamics layout at part %d: %w", p, ErrPartIndex)
	}
	s.Parts[p].Side.Dynamics = humdrum.NewToken(text)
	return nil
}

// AddVerseLabels puts verse labels ("*v1" style interpretations) for a
// staff on the VerseLabels slice before anchor. Nil labels are skipped.
func (m *Measure) AddVerseLabels(anchor *Slice, p, st int, labels []*humdrum.Token) error {
	s, err := m.sliceBefore(anchor, VerseLabels, func(prev *Slice) bool {
		staff := prev.Staff(p, st)
		return staff != nil && staff.Side.VerseCount() == 0
	})
	if err != nil {
		return err
	}
	staff := s.Staff(p, st)
	if staff == nil {
		return fmt.Errorf("verse labels at part %d staff %d: %w", p, st, ErrPartIndex)
	}
	for i, l := range labels {
		if l != nil {
			staff.Side.SetVerse(i, l)
		}
	}
	return nil
}

// sliceBefore returns the slice of typ right before anchor when reusable
// accepts it; otherwise a new slice with the anchor's voice layout is
// inserted before the anchor.
func (m *Measure) sliceBefore(anchor *Slice, typ SliceType, reusable func(prev *Slice) bool) (*Slice, error) {
	index := len(m.Slices)
	if anchor != nil {
		index = m.indexOf(anchor)
	}
	if index < 0 || len(m.Slices) == 0 {
		return nil, ErrAnchorNotFound
	}
	if index > 0 {
		if prev := m.Slices[index-1]; prev.Type == typ && reusable(prev) {
			return prev, nil
		}
	}
	model, ts := anchor, m.endTime()
	if anchor != nil {
		ts = anchor.Timestamp
	} else if model = m.LastSpinedSlice(); model == nil {
		return nil, ErrAnchorNotFound
	}
	s := NewSliceVoicedLike(ts, typ, model)
	m.insertSlice(index, s)
	return s, nil
}

// TransferTokens writes the measure's slices to out. In the first measure
// of a score the opening barline is held back until the clefs, signatures
// and other header-like interpretations have been written.
func (m *Measure) TransferTokens(out *humdrum.File, sides SideCounts, recip, first bool) {
	m.patchLastDuration()
	if m.Duration.IsZero() {
		first = false
	}
	var barline *Slice
	flushed := false
	for _, s := range m.Slices {
		if s.IsInvalid() {
			continue
		}
		if !first || flushed {
			s.TransferTokens(out, sides, recip)
			continue
		}
		switch {
		case s.IsDataSlice(), s.IsLayoutSlice(), s.IsManipulator(), s.Type == VerseLabels:
			if barline != nil {
				barline.TransferTokens(out, sides, recip)
			}
			flushed = true
			s.TransferTokens(out, sides, recip)
		case s.IsMeasureSlice() && barline == nil:
			barline = s
		default:
			s.TransferTokens(out, sides, recip)
		}
	}
	if first && !flushed && barline != nil {
		barline.TransferTokens(out, sides, recip)
	}
}

// patchLastDuration gives the last data slice before a closing barline the
// rest of the measure when its duration is still zero.
func (m *Measure) patchLastDuration() {
	n := len(m.Slices)
	if n < 2 || !m.Slices[n-1].IsMeasureSlice() {
		return
	}
	for i := n - 2; i >= 0; i-- {
		s := m.Slices[i]
		if !s.IsNoteSlice() {
			continue
		}
		if s.Duration.IsZero() {
			s.Duration = m.endTime().Sub(s.Timestamp)
		}
		return
	}
}
