// Package humgrid turns time stamped notation events into Humdrum **kern
// records. Producers fill a Grid measure by measure through the Measure Add*
// methods; Transfer then reconciles the sparse grid (null tokens, invisible
// rests, barlines, spine manipulators) and writes it into a humdrum.File.
package humgrid

import (
	"github.com/vsariola/humgrid/humdrum"
)

// MaxParts is the capacity of the per-part side spine tables.
const MaxParts = 100

// MaxManipulatorPasses bounds the splitting of manipulator lines into
// simpler ones. Each pass peels one spine off every *^N split, so the largest
// N in the grid is added to it.
const MaxManipulatorPasses = 64

// Grid is a score under construction: measures of time ordered slices,
// plus the score wide side spine counts and part names.
type Grid struct {
	Measures []*Measure

	// Recip adds a leading **recip spine giving the duration of each line.
	Recip bool
	// Interpretation is the exclusive interpretation of the staff spines,
	// "**kern" when empty.
	Interpretation string
	// ExplicitBarNumbers numbers barlines with Measure.Number instead of
	// counting measures.
	ExplicitBarNumbers bool
	// StartBarNumber is the number of the first complete measure when
	// counting; 0 means 1.
	StartBarNumber int
	// MoveLeadingClefs puts a clef change that opens a measure before that
	// measure's barline.
	MoveLeadingClefs bool
	// RemoveRedundantClefs drops clef changes to the clef already in effect.
	RemoveRedundantClefs bool
	// TolerateGaps records unfillable first track gaps in Diagnostics
	// instead of failing.
	TolerateGaps bool

	// Diagnostics collects the problems tolerated during Transfer.
	Diagnostics []error

	allSlices    []*Slice
	verseCount   [][]int // [part][staff+1]
	harmonyCount []int
	xmlIDs       []bool
	figuredBass  []bool
	harmony      []bool
	dynamics     []bool
	partNames    []string
	pickup       bool
}

// New returns an empty grid.
func New() *Grid {
	g := &Grid{}
	g.ensureTables()
	return g
}

func (g *Grid) ensureTables() {
	if g.verseCount != nil {
		return
	}
	g.verseCount = make([][]int, MaxParts)
	g.harmonyCount = make([]int, MaxParts)
	g.xmlIDs = make([]bool, MaxParts)
	g.figuredBass = make([]bool, MaxParts)
	g.harmony = make([]bool, MaxParts)
	g.dynamics = make([]bool, MaxParts)
}

// AppendMeasure adds an empty measure at the end of the grid. Its timestamp
// is the end of the previous measure.
func (g *Grid) AppendMeasure() *Measure {
	m := &Measure{}
	if n := len(g.Measures); n > 0 {
		m.Timestamp = g.Measures[n-1].endTime()
	}
	g.Measures = append(g.Measures, m)
	return m
}

// DeleteMeasure removes the measure at index; out of range does nothing.
func (g *Grid) DeleteMeasure(index int) {
	if index < 0 || index >= len(g.Measures) {
		return
	}
	g.Measures = append(g.Measures[:index], g.Measures[index+1:]...)
}

// Slices returns every slice of the grid, in order, as of the last
// Transfer.
func (g *Grid) Slices() []*Slice { return g.allSlices }

// HasPickup reports whether bar numbering found an incomplete first
// measure.
func (g *Grid) HasPickup() bool { return g.pickup }

// PartCount is the part count of the first spined slice.
func (g *Grid) PartCount() int {
	if s := g.firstSpined(); s != nil {
		return len(s.Parts)
	}
	return 0
}

// StaffCount is the staff count of part p on the first spined slice.
func (g *Grid) StaffCount(p int) int {
	if s := g.firstSpined(); s != nil && p >= 0 && p < len(s.Parts) {
		return len(s.Parts[p].Staves)
	}
	return 0
}

func (g *Grid) firstSpined() *Slice {
	for _, m := range g.Measures {
		if s := m.FirstSpinedSlice(); s != nil {
			return s
		}
	}
	return nil
}

func inRange(p int) bool { return p >= 0 && p < MaxParts }

func boolCount(b []bool, p int) int {
	if p >= 0 && p < len(b) && b[p] {
		return 1
	}
	return 0
}

func (g *Grid) XMLIDCount(p int) int       { return boolCount(g.xmlIDs, p) }
func (g *Grid) DynamicsCount(p int) int    { return boolCount(g.dynamics, p) }
func (g *Grid) FiguredBassCount(p int) int { return boolCount(g.figuredBass, p) }

func (g *Grid) HasHarmony(p int) bool { return boolCount(g.harmony, p) == 1 }

// HarmonyCount is the number of harmony spines of part p, at least one
// once harmony is present.
func (g *Grid) HarmonyCount(p int) int {
	if p < 0 || p >= len(g.harmonyCount) {
		return 0
	}
	return max(g.harmonyCount[p], boolCount(g.harmony, p))
}

// VerseCount is the number of verse spines of staff st of part p.
func (g *Grid) VerseCount(p, st int) int {
	if p < 0 || p >= len(g.verseCount) || st < 0 || st+1 >= len(g.verseCount[p]) {
		return 0
	}
	return g.verseCount[p][st+1]
}

func (g *Grid) SetXMLIDsPresent(p int) {
	g.ensureTables()
	if inRange(p) {
		g.xmlIDs[p] = true
	}
}

func (g *Grid) SetDynamicsPresent(p int) {
	g.ensureTables()
	if inRange(p) {
		g.dynamics[p] = true
	}
}

func (g *Grid) SetFiguredBassPresent(p int) {
	g.ensureTables()
	if inRange(p) {
		g.figuredBass[p] = true
	}
}

func (g *Grid) SetHarmonyPresent(p int) {
	g.ensureTables()
	if inRange(p) {
		g.harmony[p] = true
	}
}

func (g *Grid) SetHarmonyCount(p, n int) {
	g.ensureTables()
	if inRange(p) {
		g.harmonyCount[p] = n
	}
}

// ReportVerseCount raises the verse count of a staff to n if it is larger.
func (g *Grid) ReportVerseCount(p, st, n int) {
	if n <= 0 || !inRange(p) || st < 0 {
		return
	}
	g.ensureTables()
	g.verseCount[p] = grow(g.verseCount[p], st+2, nilOf[int])
	g.verseCount[p][st+1] = max(g.verseCount[p][st+1], n)
}

// SetVerseCount overwrites the verse count of a staff.
func (g *Grid) SetVerseCount(p, st, n int) {
	if !inRange(p) || st < 0 {
		return
	}
	g.ensureTables()
	g.verseCount[p] = grow(g.verseCount[p], st+2, nilOf[int])
	g.verseCount[p][st+1] = n
}

// SetPartName names part p; the name is written as an *I" interpretation.
func (g *Grid) SetPartName(p int, name string) {
	if !inRange(p) {
		return
	}
	g.partNames = grow(g.partNames, p+1, nilOf[string])
	g.partNames[p] = name
}

func (g *Grid) PartName(p int) string {
	if p < 0 || p >= len(g.partNames) {
		return ""
	}
	return g.partNames[p]
}

// Transfer reconciles the grid and appends it to out: header
// interpretations, all measures and the spine terminators. The passes run
// in a fixed order, each relying on the ones before it. On error out holds a
// partial result and should be discarded.
func (g *Grid) Transfer(out *humdrum.File) error {
	if !g.buildSingleList() {
		return &Error{Op: "transfer", Measure: -1, Slice: -1, Err: ErrEmptyGrid}
	}
	if err := g.checkSideCounts(); err != nil {
		return err
	}
	g.calculateGridDurations()
	g.expandLocalCommentLayers()
	if err := g.addNullTokens(); err != nil {
		return err
	}
	if err := g.addInvisibleRestsInFirstTrack(); err != nil {
		return err
	}
	g.addMeasureLines()
	g.addLastBarline()
	g.buildSingleList()
	g.cleanTempos()
	changed, err := g.manipulatorCheck()
	if err != nil {
		return err
	}
	if changed {
		if err := g.cleanupManipulators(); err != nil {
			return err
		}
	}
	if g.RemoveRedundantClefs {
		g.RemoveRedundantClefChanges()
	}
	g.flatten()

	var head humdrum.File
	g.writeHeader(&head)
	out.Lines = append(head.Lines, out.Lines...)
	for i, m := range g.Measures {
		m.TransferTokens(out, g, g.Recip, i == 0)
	}
	g.writeTerminator(out)
	return nil
}

// buildSingleList flattens the measures and sets each slice's duration to
// the distance to the next slice.
func (g *Grid) buildSingleList() bool {
	g.flatten()
	for i := 0; i < len(g.allSlices)-1; i++ {
		g.allSlices[i].Duration = g.allSlices[i+1].Timestamp.Sub(g.allSlices[i].Timestamp)
	}
	return len(g.allSlices) > 0
}

func (g *Grid) flatten() {
	g.allSlices = g.allSlices[:0]
	for _, m := range g.Measures {
		g.allSlices = append(g.allSlices, m.Slices...)
	}
}

// calculateGridDurations sets the duration of the last slice from the
// first voice on it with a duration.
func (g *Grid) calculateGridDurations() {
	last := g.allSlices[len(g.allSlices)-1]
	last.Duration = humdrum.Rat{}
	if !last.IsNoteSlice() {
		return
	}
	for _, part := range last.Parts {
		for _, staff := range part.Staves {
			for _, v := range staff.Voices {
				if v != nil && v.Duration.Sign() > 0 {
					last.Duration = v.Duration
					return
				}
			}
		}
	}
}

// endOfScore is the time where the last slice ends.
func (g *Grid) endOfScore() humdrum.Rat {
	last := g.allSlices[len(g.allSlices)-1]
	return last.Timestamp.Add(last.Duration)
}
