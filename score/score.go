// Package score is a flat, file friendly description of a notated score:
// parts with their staves, and measures holding time stamped events. Build
// feeds such a description into a humgrid.Grid.
package score

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/vsariola/humgrid/humdrum"
)

type (
	// Score is the top level of a score file. StartBarNumber is the number
	// of the first complete measure; 0 means 1.
	Score struct {
		Title          string `yaml:",omitempty" json:",omitempty"`
		StartBarNumber int    `yaml:",omitempty" json:",omitempty"`
		Parts          []Part
		Measures       []Measure
	}

	// Part is one instrument. Staves defaults to 1. Harmonies reserves that
	// many **mxhm columns even if fewer harmony events are present.
	Part struct {
		Name      string `yaml:",omitempty" json:",omitempty"`
		Staves    int    `yaml:",omitempty" json:",omitempty"`
		Harmonies int    `yaml:",omitempty" json:",omitempty"`
	}

	// Measure is the content between two barlines. Duration is in quarter
	// notes and may be zero; TimeSig is the nominal duration given by the
	// time signature, zero when the same as Duration. Number is only used
	// with explicit bar numbering.
	Measure struct {
		Duration      humdrum.Rat
		TimeSig       humdrum.Rat `yaml:",omitempty" json:",omitempty"`
		Number        string      `yaml:",omitempty" json:",omitempty"`
		Left          Barline     `yaml:",omitempty" json:",omitempty"`
		Right         Barline     `yaml:",omitempty" json:",omitempty"`
		Fermatas      []string    `yaml:",omitempty,flow" json:",omitempty"`
		RightFermatas []string    `yaml:",omitempty,flow" json:",omitempty"`
		Events        []Event
	}

	// Barline names a barline shape ("final", "heavy-light", ...) and
	// repeat dots ("backward", "forward", "both").
	Barline struct {
		Style  string `yaml:",omitempty" json:",omitempty"`
		Repeat string `yaml:",omitempty" json:",omitempty"`
	}

	// Event is anything placed at a point in a measure. Time is the offset
	// from the start of the measure. Token is the Humdrum text of the event;
	// for most interpretation kinds the leading "*clef", "*M" and so on can
	// be left out. Duration of a note defaults to the duration of its recip.
	Event struct {
		Kind     string
		Time     humdrum.Rat `yaml:",omitempty" json:",omitempty"`
		Part     int         `yaml:",omitempty" json:",omitempty"`
		Staff    int         `yaml:",omitempty" json:",omitempty"`
		Voice    int         `yaml:",omitempty" json:",omitempty"`
		Token    string      `yaml:",omitempty" json:",omitempty"`
		Duration humdrum.Rat `yaml:",omitempty" json:",omitempty"`
		Grace    int         `yaml:",omitempty" json:",omitempty"`
		Verses   []string    `yaml:",omitempty,flow" json:",omitempty"`
	}
)

// IsZero lets omitempty drop plain barlines.
func (b Barline) IsZero() bool { return b == Barline{} }

var ErrNoParts = errors.New("score has no parts")

// Unmarshal parses a score from JSON or YAML, trying JSON first, and
// normalizes its text.
func Unmarshal(data []byte) (*Score, error) {
	var s Score
	if errJSON := json.Unmarshal(data, &s); errJSON != nil {
		s = Score{}
		if errYaml := yaml.Unmarshal(data, &s); errYaml != nil {
			return nil, fmt.Errorf("score could not be unmarshaled as a .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	s.Normalize()
	return &s, nil
}

// Normalize converts all the text of the score to Unicode NFC.
func (s *Score) Normalize() {
	s.Title = norm.NFC.String(s.Title)
	for i := range s.Parts {
		s.Parts[i].Name = norm.NFC.String(s.Parts[i].Name)
	}
	for i := range s.Measures {
		m := &s.Measures[i]
		for j := range m.Events {
			e := &m.Events[j]
			e.Token = norm.NFC.String(e.Token)
			for k, v := range e.Verses {
				e.Verses[k] = norm.NFC.String(v)
			}
		}
	}
}

// StaffCounts is the number of staves of every part.
func (s *Score) StaffCounts() []int {
	ret := make([]int, len(s.Parts))
	for i, p := range s.Parts {
		ret[i] = max(p.Staves, 1)
	}
	return ret
}

// Duration is the total length of the score in quarter notes.
func (s *Score) Duration() humdrum.Rat {
	var ret humdrum.Rat
	for _, m := range s.Measures {
		ret = ret.Add(m.Duration)
	}
	return ret
}
