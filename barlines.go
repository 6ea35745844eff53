package humgrid

import (
	"strconv"

	"github.com/vsariola/humgrid/humdrum"
)

// addMeasureLines puts a barline slice at the start of every measure that
// has spined slices and a duration. The barline of the first measure is
// invisible unless the measure asks for another style; the style between two
// measures is the merge of the right barline of the earlier one and the
// left barline of the later one.
func (g *Grid) addMeasureLines() {
	var numbers []int
	if !g.ExplicitBarNumbers {
		numbers = g.metricBarNumbers()
	}
	var prev *Slice
	for i, m := range g.Measures {
		first := m.FirstSpinedSlice()
		if first == nil {
			continue
		}
		last := m.LastSpinedSlice()
		if !m.Duration.IsZero() {
			style := m.LeftBarline
			if i == 0 {
				if style == (BarlineStyle{}) {
					style.Visual = Invisible
				}
			} else {
				style = g.Measures[i-1].RightBarline.Merge(m.LeftBarline)
			}
			if style.Visual != NoBarline {
				m.insertSlice(0, g.barlineSlice(m, first, prev, g.barLabel(i, numbers), style))
			}
		}
		prev = last
	}
}

// barlineSlice builds the barline opening m, shaped like first. Each staff
// gets as many voices as both neighbouring slices have, at least one.
func (g *Grid) barlineSlice(m *Measure, first, prev *Slice, label string, style BarlineStyle) *Slice {
	ts := first.Timestamp
	if s0 := m.Slices[0].Timestamp; s0.Less(ts) {
		ts = s0
	}
	bar := NewSliceShapedLike(ts, Measures, first)
	staffIndex := 0
	for p, part := range bar.Parts {
		for st, staff := range part.Staves {
			n := first.VoiceCount(p, st)
			if prev != nil {
				n = min(n, prev.VoiceCount(p, st))
			} else {
				n = min(n, 1)
			}
			text := barToken(label, style, m.Fermata(staffIndex))
			if err := staff.createMatchedVoiceCount(max(n, 1), text); err != nil {
				panic(err)
			}
			staffIndex++
		}
	}
	return bar
}

func (g *Grid) barLabel(i int, numbers []int) string {
	if g.ExplicitBarNumbers {
		return g.Measures[i].Number
	}
	if i < len(numbers) && numbers[i] > 0 {
		return strconv.Itoa(numbers[i])
	}
	return ""
}

// metricBarNumbers counts complete measures. A pickup measure, one shorter
// than its time signature at the start, gets number 0 and zero length
// measures get -1. A measure split in two by a repeat barline is numbered
// once, on its second half.
func (g *Grid) metricBarNumbers() []int {
	n := len(g.Measures)
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	if n == 0 {
		return out
	}
	mdur := make([]humdrum.Rat, n)
	tsdur := make([]humdrum.Rat, n)
	for i, m := range g.Measures {
		mdur[i] = m.Duration
		tsdur[i] = m.TimeSigDur
		if tsdur[i].IsZero() {
			tsdur[i] = m.Duration
		}
	}
	start := 0
	if mdur[0].IsZero() {
		start = 1
	}
	if start >= n {
		return out
	}
	counter := g.StartBarNumber
	if counter == 0 {
		counter = 1
	}
	g.pickup = mdur[start] != tsdur[start]
	if g.pickup {
		counter--
	}
	for m := start; m < n; m++ {
		switch {
		case mdur[m].IsZero():
			continue
		case m < n-1 && tsdur[m] == tsdur[m+1] && mdur[m] != tsdur[m] && mdur[m].Add(mdur[m+1]) == tsdur[m]:
			continue
		}
		out[m] = counter
		counter++
	}
	return out
}

// addLastBarline closes the last measure with its right barline style at
// the end of the measure.
func (g *Grid) addLastBarline() {
	if len(g.Measures) == 0 {
		return
	}
	m := g.Measures[len(g.Measures)-1]
	model := m.LastSpinedSlice()
	if model == nil || m.RightBarline.Visual == NoBarline {
		return
	}
	ts := model.Timestamp
	if end := m.endTime(); ts.Less(end) {
		ts = end
	}
	bar := NewSliceShapedLike(ts, Measures, model)
	staffIndex := 0
	for _, part := range bar.Parts {
		for _, staff := range part.Staves {
			if err := staff.createMatchedVoiceCount(1, barToken("", m.RightBarline, m.RightFermata(staffIndex))); err != nil {
				panic(err)
			}
			staffIndex++
		}
	}
	m.Slices = append(m.Slices, bar)
}

// cleanTempos copies the first tempo on a tempo slice into its empty
// voices.
func (g *Grid) cleanTempos() {
	for _, s := range g.allSlices {
		if s.Type != Tempos {
			continue
		}
		var tempo *humdrum.Token
	find:
		for _, part := range s.Parts {
			for _, staff := range part.Staves {
				for _, v := range staff.Voices {
					if v != nil && v.Token != nil {
						tempo = v.Token
						break find
					}
				}
			}
		}
		if tempo == nil {
			continue
		}
		for _, part := range s.Parts {
			for _, staff := range part.Staves {
				for _, v := range staff.Voices {
					if v != nil && v.Token == nil {
						v.Token = humdrum.NewToken(tempo.Text)
					}
				}
			}
		}
	}
}
