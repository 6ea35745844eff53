package score

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vsariola/humgrid"
	"github.com/vsariola/humgrid/humdrum"
)

// Event kinds.
const (
	Note           = "note"
	Grace          = "grace"
	Clef           = "clef"
	Key            = "key"
	KeyDesignation = "keydesig"
	Time           = "time"
	Meter          = "meter"
	Tempo          = "tempo"
	Transpose      = "transpose"
	Ottava         = "ottava"
	Stria          = "stria"
	Label          = "label"
	LabelAbbr      = "label-abbr"
	Section        = "section"
	BarlineEvent   = "barline"
	Comment        = "comment"
	LocalComment   = "local-comment"
	Reference      = "reference"
	GlobalLayout   = "global-layout"
	Layout         = "layout"
	DynamicsLayout = "dynamics-layout"
	VerseLabels    = "verse-labels"
	Dynamics       = "dynamics"
	Verses         = "verses"
	Harmony        = "harmony"
	FiguredBass    = "fb"
	XMLID          = "xmlid"
)

var (
	ErrUnknownKind = errors.New("unknown event kind")
	ErrNoNote      = errors.New("no note at the time of the event")
	ErrStyle       = errors.New("unknown barline or fermata style")
)

var tokenTypes = map[string]humgrid.SliceType{
	Clef:           humgrid.Clefs,
	Key:            humgrid.KeySigs,
	KeyDesignation: humgrid.KeyDesignations,
	Time:           humgrid.TimeSigs,
	Meter:          humgrid.MeterSigs,
	Tempo:          humgrid.Tempos,
	Transpose:      humgrid.Transpositions,
	Ottava:         humgrid.Ottavas,
	Stria:          humgrid.Stria,
	Label:          humgrid.Labels,
	LabelAbbr:      humgrid.LabelAbbrs,
	Section:        humgrid.SectionNames,
	BarlineEvent:   humgrid.Measures,
	LocalComment:   humgrid.LocalComments,
}

// prefixes completes short tokens, so that "G2" on a clef event becomes
// "*clefG2".
var prefixes = map[string]string{
	Clef:           "*clef",
	Key:            "*k",
	KeyDesignation: "*",
	Time:           "*M",
	Meter:          "*met",
	Tempo:          "*MM",
	Transpose:      "*ITr",
	Ottava:         "*",
	Stria:          "*stria",
	Label:          "*>",
	LabelAbbr:      "*>",
	Section:        "*>",
	BarlineEvent:   "=",
	LocalComment:   "!",
	Comment:        "!!",
	Reference:      "!!!",
	GlobalLayout:   "!!LO:",
	Layout:         "!LO:",
	DynamicsLayout: "!LO:",
	VerseLabels:    "*v",
}

// attached kinds need the note slice at their time and are added once all
// the notes are in place.
var attached = map[string]bool{
	Layout: true, DynamicsLayout: true, VerseLabels: true, Dynamics: true,
	Verses: true, Harmony: true, FiguredBass: true, XMLID: true,
}

func completeToken(kind, text string) string {
	prefix, ok := prefixes[kind]
	if !ok || strings.HasPrefix(text, prefix[:1]) {
		return text
	}
	return prefix + text
}

// Build fills a new grid with the score. The grid still has to be
// reconciled and written with Transfer.
func Build(s *Score) (*humgrid.Grid, error) {
	if len(s.Parts) == 0 {
		return nil, ErrNoParts
	}
	g := humgrid.New()
	g.StartBarNumber = s.StartBarNumber
	counts := s.StaffCounts()
	for p, part := range s.Parts {
		if part.Name != "" {
			g.SetPartName(p, part.Name)
		}
		if part.Harmonies > 0 {
			g.SetHarmonyCount(p, part.Harmonies)
		}
	}
	for mi, sm := range s.Measures {
		m := g.AppendMeasure()
		if err := setMeasure(m, sm); err != nil {
			return nil, fmt.Errorf("measure %d: %w", mi, err)
		}
		if mi == 0 && s.Title != "" {
			m.AddGlobalReference("!!!OTL: "+s.Title, m.Timestamp)
		}
		for ei, e := range sm.Events {
			if attached[e.Kind] {
				continue
			}
			if err := addEvent(m, e, counts); err != nil {
				return nil, fmt.Errorf("measure %d event %d (%s): %w", mi, ei, e.Kind, err)
			}
		}
		for ei, e := range sm.Events {
			if !attached[e.Kind] {
				continue
			}
			if err := attachEvent(g, m, e); err != nil {
				return nil, fmt.Errorf("measure %d event %d (%s): %w", mi, ei, e.Kind, err)
			}
		}
	}
	return g, nil
}

func setMeasure(m *humgrid.Measure, sm Measure) error {
	m.Duration = sm.Duration
	m.TimeSigDur = sm.TimeSig
	m.Number = sm.Number
	var err error
	if m.LeftBarline, err = parseBarline(sm.Left); err != nil {
		return err
	}
	if m.RightBarline, err = parseBarline(sm.Right); err != nil {
		return err
	}
	if m.Fermatas, err = parseFermatas(sm.Fermatas); err != nil {
		return err
	}
	m.RightFermatas, err = parseFermatas(sm.RightFermatas)
	return err
}

func parseBarline(b Barline) (humgrid.BarlineStyle, error) {
	var ret humgrid.BarlineStyle
	var ok bool
	if b.Style != "" {
		if ret.Visual, ok = humgrid.ParseBarlineVisual(b.Style); !ok {
			return ret, fmt.Errorf("barline %q: %w", b.Style, ErrStyle)
		}
	}
	if ret.Repeat, ok = humgrid.ParseBarlineRepeat(b.Repeat); !ok {
		return ret, fmt.Errorf("repeat %q: %w", b.Repeat, ErrStyle)
	}
	return ret, nil
}

func parseFermatas(names []string) ([]humgrid.FermataStyle, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ret := make([]humgrid.FermataStyle, len(names))
	for i, n := range names {
		f, ok := humgrid.ParseFermataStyle(n)
		if !ok {
			return nil, fmt.Errorf("fermata %q: %w", n, ErrStyle)
		}
		ret[i] = f
	}
	return ret, nil
}

func addEvent(m *humgrid.Measure, e Event, counts []int) error {
	ts := m.Timestamp.Add(e.Time)
	text := completeToken(e.Kind, e.Token)
	var err error
	switch e.Kind {
	case Note:
		dur := e.Duration
		if dur.IsZero() {
			dur = humdrum.RecipToDuration(text)
		}
		_, err = m.AddDataToken(text, ts, e.Part, e.Staff, e.Voice, counts, dur)
	case Grace:
		_, err = m.AddGraceToken(text, ts, e.Part, e.Staff, e.Voice, counts, max(e.Grace, 1))
	case Comment:
		m.AddGlobalComment(text, ts)
	case Reference:
		m.AddGlobalReference(text, ts)
	case GlobalLayout:
		m.AddGlobalLayout(text, ts)
	default:
		typ, ok := tokenTypes[e.Kind]
		if !ok {
			return ErrUnknownKind
		}
		_, err = m.AddTokenOfType(typ, text, ts, e.Part, e.Staff, e.Voice, counts)
	}
	return err
}

// noteAt returns the notes slice of m at ts.
func noteAt(m *humgrid.Measure, ts humdrum.Rat) *humgrid.Slice {
	for _, s := range m.Slices {
		if s.IsNoteSlice() && s.Timestamp == ts {
			return s
		}
	}
	return nil
}

func attachEvent(g *humgrid.Grid, m *humgrid.Measure, e Event) error {
	anchor := noteAt(m, m.Timestamp.Add(e.Time))
	if anchor == nil {
		return ErrNoNote
	}
	text := completeToken(e.Kind, e.Token)
	switch e.Kind {
	case Layout:
		return m.AddLayoutParameter(anchor, e.Part, e.Staff, e.Voice, text)
	case DynamicsLayout:
		g.SetDynamicsPresent(e.Part)
		return m.AddDynamicsLayoutParameters(anchor, e.Part, text)
	case VerseLabels:
		labels := make([]*humdrum.Token, len(e.Verses))
		for i, v := range e.Verses {
			if v != "" {
				labels[i] = humdrum.NewToken(completeToken(VerseLabels, v))
			}
		}
		g.ReportVerseCount(e.Part, e.Staff, len(labels))
		return m.AddVerseLabels(anchor, e.Part, e.Staff, labels)
	}
	if e.Part < 0 || e.Part >= len(anchor.Parts) {
		return fmt.Errorf("part %d: %w", e.Part, humgrid.ErrPartIndex)
	}
	part := anchor.Parts[e.Part]
	switch e.Kind {
	case Dynamics:
		g.SetDynamicsPresent(e.Part)
		part.Side.Dynamics = humdrum.NewToken(text)
	case Harmony:
		g.SetHarmonyPresent(e.Part)
		part.Side.Harmony = humdrum.NewToken(text)
	case FiguredBass:
		g.SetFiguredBassPresent(e.Part)
		part.Side.FiguredBass = humdrum.NewToken(text)
	case XMLID, Verses:
		staff := part.Staff(e.Staff)
		if staff == nil {
			return fmt.Errorf("staff %d: %w", e.Staff, humgrid.ErrStaffIndex)
		}
		if e.Kind == XMLID {
			g.SetXMLIDsPresent(e.Part)
			staff.Side.XMLID = humdrum.NewToken(text)
			return nil
		}
		for i, v := range e.Verses {
			if v != "" {
				staff.Side.SetVerse(i, humdrum.NewToken(v))
			}
		}
		g.ReportVerseCount(e.Part, e.Staff, len(e.Verses))
	}
	return nil
}
