package humgrid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vsariola/humgrid/humdrum"
)

// manipulatorCheck inserts a manipulator slice between every two adjacent
// spined slices whose voice counts differ on some staff. The score is
// treated as if it opened and closed with a single voice barline, so the
// spines split after the header and merge back before the terminator.
func (g *Grid) manipulatorCheck() (bool, error) {
	firstMeasure, lastMeasure := -1, -1
	for i, m := range g.Measures {
		if len(m.Slices) > 0 {
			if firstMeasure < 0 {
				firstMeasure = i
			}
			lastMeasure = i
		}
	}
	model := g.firstSpined()
	if firstMeasure < 0 || model == nil {
		return false, nil
	}

	changed := false
	skipFirst := false
	if m := g.Measures[firstMeasure]; !m.Slices[0].IsMeasureSlice() {
		first := g.nextSpinedLine(firstMeasure, -1)
		manip, err := manipulatorBetween(fakeBarline(m.Slices[0].Timestamp, model), first)
		if err != nil {
			return changed, measureError("manipulator check", firstMeasure, err)
		}
		if manip != nil {
			manip.Timestamp = m.Slices[0].Timestamp
			m.insertSlice(0, manip)
			changed = true
			skipFirst = true
		}
	}

	var lastSpined *Slice
	for mi, m := range g.Measures {
		if len(m.Slices) == 0 {
			continue
		}
		i := 0
		if skipFirst {
			i = 1
			skipFirst = false
		}
		for i < len(m.Slices) {
			s1 := m.Slices[i]
			if !s1.HasSpines() {
				i++
				continue
			}
			lastSpined = s1
			s2 := g.nextSpinedLine(mi, i)
			if s2 != nil {
				lastSpined = s2
			}
			manip, err := manipulatorBetween(s1, s2)
			if err != nil {
				return changed, measureError("manipulator check", mi, err)
			}
			if manip == nil {
				i++
				continue
			}
			m.insertSlice(i+1, manip)
			changed = true
			i += 2
		}
	}

	m := g.Measures[lastMeasure]
	if lastSpined != nil && !m.Slices[len(m.Slices)-1].IsMeasureSlice() {
		manip, err := manipulatorBetween(lastSpined, fakeBarline(lastSpined.Timestamp, model))
		if err != nil {
			return changed, measureError("manipulator check", lastMeasure, err)
		}
		if manip != nil {
			m.Slices = append(m.Slices, manip)
			changed = true
		}
	}
	return changed, nil
}

// fakeBarline is a single voice barline shaped like model. It is only
// compared against, never inserted.
func fakeBarline(ts humdrum.Rat, model *Slice) *Slice {
	bar := NewSliceShapedLike(ts, Measures, model)
	for _, part := range bar.Parts {
		for _, staff := range part.Staves {
			staff.appendToken("=")
		}
	}
	return bar
}

// nextSpinedLine returns the first spined slice after slice i of measure
// mi, looking into the following measure when needed.
func (g *Grid) nextSpinedLine(mi, i int) *Slice {
	m := g.Measures[mi]
	for k := i + 1; k < len(m.Slices); k++ {
		if m.Slices[k].HasSpines() {
			return m.Slices[k]
		}
	}
	if mi+1 >= len(g.Measures) {
		return nil
	}
	return g.Measures[mi+1].FirstSpinedSlice()
}

// manipulatorBetween returns the manipulator slice taking the voices of s1
// to those of s2, or nil when they already agree. A staff without voices
// counts as one voice.
func manipulatorBetween(s1, s2 *Slice) (*Slice, error) {
	if s1 == nil || s2 == nil || !s1.HasSpines() || !s2.HasSpines() {
		return nil, nil
	}
	if len(s1.Parts) != len(s2.Parts) {
		return nil, fmt.Errorf("%d parts then %d: %w", len(s1.Parts), len(s2.Parts), ErrTopologyMismatch)
	}
	need := false
	for p, part := range s1.Parts {
		if len(part.Staves) != len(s2.Parts[p].Staves) {
			return nil, fmt.Errorf("part %d: %d staves then %d: %w", p, len(part.Staves), len(s2.Parts[p].Staves), ErrTopologyMismatch)
		}
		for st := range part.Staves {
			if max(s1.VoiceCount(p, st), 1) != max(s2.VoiceCount(p, st), 1) {
				need = true
			}
		}
	}
	if !need {
		return nil, nil
	}
	manip := NewSliceShapedLike(s2.Timestamp, Manipulators, s1)
	for p, part := range manip.Parts {
		for st, staff := range part.Staves {
			for _, text := range manipulatorTokens(max(s1.VoiceCount(p, st), 1), max(s2.VoiceCount(p, st), 1)) {
				staff.appendToken(text)
			}
		}
	}
	return manip, nil
}

// manipulatorTokens takes v1 spines to v2 spines in one line. Splits into
// more than two are written as *^N and separated later by
// cleanupManipulators.
func manipulatorTokens(v1, v2 int) []string {
	var ret []string
	repeat := func(text string, n int) {
		for i := 0; i < n; i++ {
			ret = append(ret, text)
		}
	}
	switch grow := v2 - v1; {
	case grow == 0:
		repeat("*", v1)
	case v2 == 2*v1:
		repeat("*^", v1)
	case grow > 2*v1:
		repeat("*^", v1-1)
		repeat(splitToken(v2-2*(v1-1)), 1)
	case grow > 0:
		repeat("*", v1-1)
		repeat(splitToken(grow+1), 1)
	default:
		k := v1 - v2 + 1
		repeat("*", v1-k)
		repeat("*v", k)
	}
	return ret
}

func splitToken(n int) string {
	if n <= 2 {
		return "*^"
	}
	return "*^" + strconv.Itoa(n)
}

// splitCount is the number of spines a split token produces.
func splitCount(text string) (int, bool) {
	if text == "*^" {
		return 2, true
	}
	if !strings.HasPrefix(text, "*^") {
		return 0, false
	}
	n, err := strconv.Atoi(text[2:])
	if err != nil || n < 2 {
		return 0, false
	}
	return n, true
}

// voicesAfter counts the spines left once a staff's manipulators run.
func voicesAfter(voices []*Voice) int {
	n := 0
	merging := false
	for _, v := range voices {
		text := v.Text()
		if text == "*v" {
			if !merging {
				n++
			}
			merging = true
			continue
		}
		merging = false
		if c, ok := splitCount(text); ok {
			n += c
			continue
		}
		n++
	}
	return n
}

// cleanupManipulators pads slices to the voice count of the slice before
// them and breaks manipulator slices that cannot be written as one line
// into several: *^N splits, and merges on two adjacent staves.
func (g *Grid) cleanupManipulators() error {
	var last *Slice
	for _, m := range g.Measures {
		for _, s := range m.Slices {
			if last != nil && !last.IsManipulator() {
				padVoices(s, last)
			}
			last = s
		}
	}

	return g.splitManipulators(MaxManipulatorPasses + g.largestSplit())
}

// largestSplit is the largest N of the *^N tokens in the grid.
func (g *Grid) largestSplit() int {
	n := 0
	for _, m := range g.Measures {
		for _, s := range m.Slices {
			if !s.IsManipulator() {
				continue
			}
			for _, part := range s.Parts {
				for _, staff := range part.Staves {
					for _, v := range staff.Voices {
						if c, ok := splitCount(v.Text()); ok {
							n = max(n, c)
						}
					}
				}
			}
		}
	}
	return n
}

// splitManipulators rewrites the manipulator slices until each can be
// written as one line, failing after passes rounds.
func (g *Grid) splitManipulators(passes int) error {
	for pass := 0; ; pass++ {
		changed := false
		for _, m := range g.Measures {
			for i := 0; i < len(m.Slices); i++ {
				s := m.Slices[i]
				if !s.IsManipulator() {
					continue
				}
				n := peelSplits(s)
				if n == nil {
					n = separateMerges(s)
				}
				if n == nil {
					continue
				}
				m.insertSlice(i, n)
				i++
				changed = true
			}
		}
		if !changed {
			return nil
		}
		if pass+1 >= passes {
			return &Error{Op: "manipulator cleanup", Measure: -1, Slice: -1, Err: ErrManipulatorLoop}
		}
	}
}

// padVoices appends null tokens to the staves of cur that have fewer voices
// than on last.
func padVoices(cur, last *Slice) {
	if !cur.HasSpines() || !last.HasSpines() || len(cur.Parts) != len(last.Parts) {
		return
	}
	null := cur.nullFor()
	for p, part := range cur.Parts {
		if len(part.Staves) != len(last.Parts[p].Staves) {
			continue
		}
		for st, staff := range part.Staves {
			for len(staff.Voices) < last.VoiceCount(p, st) {
				staff.appendToken(null)
			}
		}
	}
}

// peelSplits returns a line doing the first two way split of every split
// token in cur and rewrites cur to do the rest, or returns nil when cur has
// no *^N token.
func peelSplits(cur *Slice) *Slice {
	found := false
	for _, part := range cur.Parts {
		for _, staff := range part.Staves {
			for _, v := range staff.Voices {
				if n, ok := splitCount(v.Text()); ok && n > 2 {
					found = true
				}
			}
		}
	}
	if !found {
		return nil
	}
	ret := NewSliceShapedLike(cur.Timestamp, Manipulators, cur)
	for p, part := range cur.Parts {
		for st, staff := range part.Staves {
			next := ret.Parts[p].Staves[st]
			var kept []*Voice
			for _, v := range staff.Voices {
				n, ok := splitCount(v.Text())
				switch {
				case ok && n > 2:
					next.appendToken("*^")
					kept = append(kept, NewVoice("*", humdrum.Rat{}), NewVoice(splitToken(n-1), humdrum.Rat{}))
				case ok:
					next.appendToken("*^")
					kept = append(kept, NewVoice("*", humdrum.Rat{}), NewVoice("*", humdrum.Rat{}))
				default:
					next.appendToken("*")
					kept = append(kept, v)
				}
			}
			staff.Voices = kept
		}
	}
	return ret
}

type columnAddress struct{ part, staff int }

// separateMerges moves the merge of the first staff, in output order, whose
// merge would run into the merge of the staff after it onto a new line
// written before cur. Parts after the split point do their manipulations on
// the new line too. Returns nil when no two neighbouring staves end in *v.
func separateMerges(cur *Slice) *Slice {
	var upper, lower columnAddress
	var prev *Staff
	found := false
search:
	for p := len(cur.Parts) - 1; p >= 0; p-- {
		part := cur.Parts[p]
		for st := len(part.Staves) - 1; st >= 0; st-- {
			staff := part.Staves[st]
			if len(staff.Voices) == 0 {
				continue
			}
			if prev != nil && endsInMerge(prev) && endsInMerge(staff) {
				lower = columnAddress{p, st}
				found = true
				break search
			}
			prev = staff
			upper = columnAddress{p, st}
		}
	}
	if !found {
		return nil
	}

	ret := NewSliceShapedLike(cur.Timestamp, Manipulators, cur)
	for range cur.Staff(lower.part, lower.staff).Voices {
		ret.Staff(lower.part, lower.staff).appendToken("*")
	}
	old := cur.Staff(upper.part, upper.staff)
	next := ret.Staff(upper.part, upper.staff)
	var kept []*Voice
	merged := false
	for _, v := range old.Voices {
		if v.Text() != "*v" {
			next.appendToken("*")
			kept = append(kept, v)
			continue
		}
		next.appendToken("*v")
		if !merged {
			kept = append(kept, NewVoice("*", humdrum.Rat{}))
			merged = true
		}
	}
	old.Voices = kept

	for q := 0; q < lower.part; q++ {
		cur.Parts[q], ret.Parts[q] = ret.Parts[q], cur.Parts[q]
		for st, staff := range ret.Parts[q].Staves {
			for k := voicesAfter(staff.Voices); k > 0; k-- {
				cur.Parts[q].Staves[st].appendToken("*")
			}
		}
	}

	for p, part := range ret.Parts {
		for st, staff := range part.Staves {
			o := cur.Parts[p].Staves[st]
			switch {
			case len(staff.Voices) == 0:
				for range o.Voices {
					staff.appendToken("*")
				}
			case len(o.Voices) == 0:
				for k := voicesAfter(staff.Voices); k > 0; k-- {
					o.appendToken("*")
				}
			}
		}
	}
	return ret
}

func endsInMerge(s *Staff) bool {
	return len(s.Voices) > 0 && s.Voices[len(s.Voices)-1].Text() == "*v"
}
