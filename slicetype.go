package humgrid

// SliceType says what kind of record a Slice becomes. The declaration order
// is the rank used by Measure insertion: slices sharing a timestamp are kept
// in ascending rank, so global records come first, then spined
// interpretations, then barlines, local layouts and finally data.
type SliceType int

const (
	GlobalComments SliceType = iota
	GlobalLayouts
	ReferenceRecords

	Exclusives
	SectionNames
	Labels
	LabelAbbrs
	Stria
	Clefs
	Transpositions
	KeySigs
	KeyDesignations
	TimeSigs
	MeterSigs
	Tempos
	Ottavas
	VerseLabels
	Terminators
	Manipulators

	Measures

	LocalComments
	Layouts

	GraceNotes
	Notes

	Invalid
)

var sliceTypeNames = [...]string{
	"GlobalComments", "GlobalLayouts", "ReferenceRecords", "Exclusives",
	"SectionNames", "Labels", "LabelAbbrs", "Stria", "Clefs", "Transpositions",
	"KeySigs", "KeyDesignations", "TimeSigs", "MeterSigs", "Tempos", "Ottavas",
	"VerseLabels", "Terminators", "Manipulators", "Measures", "LocalComments",
	"Layouts", "GraceNotes", "Notes", "Invalid",
}

func (t SliceType) String() string {
	if t < 0 || int(t) >= len(sliceTypeNames) {
		return "Invalid"
	}
	return sliceTypeNames[t]
}

// HasSpines is false for records that span the whole line (global comments,
// global layouts, reference records) and for tombstoned slices.
func (t SliceType) HasSpines() bool { return t >= Exclusives && t < Invalid }

func (t SliceType) IsData() bool { return t == GraceNotes || t == Notes }

func (t SliceType) IsInterpretation() bool { return t >= Exclusives && t <= Manipulators }

func (t SliceType) IsLocalComment() bool { return t == LocalComments || t == Layouts }

func (t SliceType) IsGlobal() bool { return t < Exclusives }

// NullToken is the placeholder written into a spine that carries nothing
// on a record of this type.
func (t SliceType) NullToken() string {
	switch {
	case t == Invalid:
		return ""
	case t.IsGlobal():
		return "!!"
	case t.IsData():
		return "."
	case t == Measures:
		return "="
	case t.IsLocalComment():
		return "!"
	}
	return "*"
}
