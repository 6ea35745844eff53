package humgrid

import (
	"fmt"

	"github.com/vsariola/humgrid/humdrum"
)

// Staff is the list of voices (layers) of one staff on one slice, plus the
// staff's side spines. A nil entry in Voices is a hole.
type Staff struct {
	Voices []*Voice
	Side   Side
}

// Voice returns voice i, or nil when i is out of range.
func (s *Staff) Voice(i int) *Voice {
	if s == nil || i < 0 || i >= len(s.Voices) {
		return nil
	}
	return s.Voices[i]
}

// SetTokenLayer puts tok into layer with duration dur, growing Voices with
// holes as needed. An existing voice there is replaced.
func (s *Staff) SetTokenLayer(layer int, tok *humdrum.Token, dur humdrum.Rat) (*Voice, error) {
	if layer < 0 {
		return nil, fmt.Errorf("layer %d: %w", layer, ErrVoiceIndex)
	}
	s.Voices = grow(s.Voices, layer+1, nilOf[*Voice])
	v := &Voice{Token: tok, Duration: dur}
	s.Voices[layer] = v
	return v, nil
}

// SetNullTokenLayer puts the null token of typ into layer. Nothing happens
// for records without spines, or when that null token is already there; any
// other token already in the cell is a conflict.
func (s *Staff) SetNullTokenLayer(layer int, typ SliceType, dur humdrum.Rat) error {
	if !typ.HasSpines() {
		return nil
	}
	null := typ.NullToken()
	if v := s.Voice(layer); v != nil && v.Token != nil {
		if v.Token.Text == null {
			return nil
		}
		return fmt.Errorf("layer %d holds %q: %w", layer, v.Token.Text, ErrTokenConflict)
	}
	_, err := s.SetTokenLayer(layer, humdrum.NewToken(null), dur)
	return err
}

// appendToken adds a voice holding text at the end of the staff.
func (s *Staff) appendToken(text string) {
	s.Voices = append(s.Voices, NewVoice(text, humdrum.Rat{}))
}

// createMatchedVoiceCount fills a staff that has no voices yet with n voices
// holding text.
func (s *Staff) createMatchedVoiceCount(n int, text string) error {
	if len(s.Voices) > 0 {
		return fmt.Errorf("staff has %d voices: %w", len(s.Voices), ErrMatchedVoiceCount)
	}
	for k := 0; k < n; k++ {
		s.appendToken(text)
	}
	return nil
}
